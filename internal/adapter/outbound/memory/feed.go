package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/agora/server/internal/model"
	"github.com/agora/server/internal/port/outbound"
	"github.com/agora/server/internal/utils/cursor"
	"github.com/agora/server/internal/utils/pagination"
)

// PostRepository is an in-process outbound.PostDatabasePort.
type PostRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]model.Post
}

var _ outbound.PostDatabasePort = (*PostRepository)(nil)

// NewPostRepository creates an empty repository.
func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[uuid.UUID]model.Post)}
}

func clonePost(p model.Post) *model.Post {
	if p.Tags != nil {
		p.Tags = append(p.Tags[:0:0], p.Tags...)
	}
	return &p
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = *clonePost(*post)
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(p), nil
}

func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

// sorted returns the posts accepted by keep, newest first.
func (r *PostRepository) sorted(keep func(*model.Post) bool) []*model.Post {
	r.mu.RLock()
	out := make([]*model.Post, 0, len(r.posts))
	for _, p := range r.posts {
		cp := clonePost(p)
		if keep(cp) {
			out = append(out, cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return pagination.Descending.Less(out[i].Cursor(), out[j].Cursor())
	})
	return out
}

func (r *PostRepository) ListAfter(ctx context.Context, filter model.PostFilter, after *cursor.Cursor, limit int) ([]*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	posts := r.sorted(func(p *model.Post) bool {
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			return false
		}
		return after == nil || pagination.Descending.Follows(p.Cursor(), *after)
	})
	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *PostRepository) List(ctx context.Context, offset, limit int) ([]*model.Post, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	posts := r.sorted(func(*model.Post) bool { return true })
	total := int64(len(posts))

	if offset < 0 {
		offset = 0
	}
	if offset >= len(posts) {
		return []*model.Post{}, total, nil
	}
	posts = posts[offset:]
	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, total, nil
}

func (r *PostRepository) IncrementCommentCount(ctx context.Context, id uuid.UUID, delta int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		p.CommentCount += delta
		r.posts[id] = p
	}
	return nil
}

// CommentRepository is an in-process outbound.CommentDatabasePort.
type CommentRepository struct {
	mu       sync.RWMutex
	comments map[uuid.UUID][]model.Comment
}

var _ outbound.CommentDatabasePort = (*CommentRepository)(nil)

// NewCommentRepository creates an empty repository.
func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[uuid.UUID][]model.Comment)}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[comment.PostID] = append(r.comments[comment.PostID], *comment)
	return nil
}

func (r *CommentRepository) ListAfter(ctx context.Context, postID uuid.UUID, after *cursor.Cursor, limit int) ([]*model.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]*model.Comment, 0, len(r.comments[postID]))
	for _, c := range r.comments[postID] {
		c := c
		if after == nil || pagination.Ascending.Follows(c.Cursor(), *after) {
			out = append(out, &c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return pagination.Ascending.Less(out[i].Cursor(), out[j].Cursor())
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, postID)
	return nil
}
