package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/agora/server/internal/model"
	"github.com/agora/server/internal/port/outbound"
)

type txContextKey struct{}

// Transactor implements outbound.FeedTransactionPort over in-process
// repositories. Transactions run one at a time; when fn fails both
// repositories are restored to their state before it ran.
type Transactor struct {
	mu       sync.Mutex
	posts    *PostRepository
	comments *CommentRepository
}

var _ outbound.FeedTransactionPort = (*Transactor)(nil)

// NewTransactor creates a transactor for the given repositories.
func NewTransactor(posts *PostRepository, comments *CommentRepository) *Transactor {
	return &Transactor{posts: posts, comments: comments}
}

func (t *Transactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txContextKey{}) != nil {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	posts := t.posts.snapshot()
	comments := t.comments.snapshot()
	if err := fn(context.WithValue(ctx, txContextKey{}, t)); err != nil {
		t.posts.restore(posts)
		t.comments.restore(comments)
		return err
	}
	return nil
}

func (r *PostRepository) snapshot() map[uuid.UUID]model.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uuid.UUID]model.Post, len(r.posts))
	for id, p := range r.posts {
		out[id] = *clonePost(p)
	}
	return out
}

func (r *PostRepository) restore(posts map[uuid.UUID]model.Post) {
	r.mu.Lock()
	r.posts = posts
	r.mu.Unlock()
}

func (r *CommentRepository) snapshot() map[uuid.UUID][]model.Comment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uuid.UUID][]model.Comment, len(r.comments))
	for id, cs := range r.comments {
		out[id] = append([]model.Comment(nil), cs...)
	}
	return out
}

func (r *CommentRepository) restore(comments map[uuid.UUID][]model.Comment) {
	r.mu.Lock()
	r.comments = comments
	r.mu.Unlock()
}
