package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agora/server/internal/infra/cache"
	"github.com/agora/server/internal/model"
	"github.com/agora/server/internal/port/outbound"
	"github.com/agora/server/internal/utils/cursor"
	"github.com/agora/server/internal/utils/logger"
	"github.com/agora/server/internal/utils/pagination"
	"github.com/agora/server/internal/utils/requestctx"
)

const firstPageKey = "feed:posts:first"

func postKey(id uuid.UUID) string {
	return "post:" + id.String()
}

// ListPostsInput selects a page of posts.
type ListPostsInput struct {
	Cursor   string
	Limit    int
	AuthorID *uuid.UUID
}

// PageInput selects a page of a keyset listing.
type PageInput struct {
	Cursor string
	Limit  int
}

// CreatePostInput holds the fields of a new post.
type CreatePostInput struct {
	AuthorID uuid.UUID
	Body     string
	Tags     []string
}

// AddCommentInput holds the fields of a new comment.
type AddCommentInput struct {
	AuthorID uuid.UUID
	Body     string
}

// PageRecorder observes served pages.
type PageRecorder interface {
	RecordPage(listing string, items int, hasMore bool)
}

type nopPageRecorder struct{}

func (nopPageRecorder) RecordPage(string, int, bool) {}

type noTransaction struct{}

func (noTransaction) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// FeedDomain defines the interface for feed business logic.
type FeedDomain interface {
	// Post operations
	ListPosts(ctx context.Context, in ListPostsInput) (*pagination.CursorPage[*model.Post], error)
	GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error)
	CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error

	// Comment operations
	ListComments(ctx context.Context, postID uuid.UUID, in PageInput) (*pagination.CursorPage[*model.Comment], error)
	AddComment(ctx context.Context, postID uuid.UUID, in AddCommentInput) (*model.Comment, error)

	// Admin
	ListPostsOffset(ctx context.Context, p *pagination.Pagination) ([]*model.Post, int64, error)
}

// feedDomain implements FeedDomain.
type feedDomain struct {
	postDB    outbound.PostDatabasePort
	commentDB outbound.CommentDatabasePort
	tx        outbound.FeedTransactionPort
	cache     *cache.Service
	posts     *cache.Typed[*model.Post]
	firstPage *cache.Typed[*pagination.CursorPage[*model.Post]]
	cfg       *Config
	recorder  PageRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewFeedDomain creates a new feed domain service. tx and recorder may be nil;
// without tx multi-row writes are not atomic.
func NewFeedDomain(
	postDB outbound.PostDatabasePort,
	commentDB outbound.CommentDatabasePort,
	tx outbound.FeedTransactionPort,
	cacheSvc *cache.Service,
	cfg *Config,
	recorder PageRecorder,
	logger *zap.Logger,
) FeedDomain {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if recorder == nil {
		recorder = nopPageRecorder{}
	}
	if tx == nil {
		tx = noTransaction{}
	}
	return &feedDomain{
		postDB:    postDB,
		commentDB: commentDB,
		tx:        tx,
		cache:     cacheSvc,
		posts:     cache.NewTyped(cacheSvc, "post", cache.JSON[*model.Post]()),
		firstPage: cache.NewTyped(cacheSvc, "feed", cache.JSON[*pagination.CursorPage[*model.Post]]()),
		cfg:       cfg,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// --- Posts ---

func (d *feedDomain) ListPosts(ctx context.Context, in ListPostsInput) (*pagination.CursorPage[*model.Post], error) {
	size := d.pageSize(in.Limit)
	after := d.resolveCursor(in.Cursor)
	filter := model.PostFilter{AuthorID: in.AuthorID}

	load := func(ctx context.Context) (*pagination.CursorPage[*model.Post], error) {
		fetch := func(ctx context.Context, after *cursor.Cursor, limit int) ([]*model.Post, error) {
			return d.postDB.ListAfter(ctx, filter, after, limit)
		}
		return pagination.Paginate[*model.Post](ctx, after, size, fetch, (*model.Post).Cursor)
	}

	var page *pagination.CursorPage[*model.Post]
	var err error
	if after == nil && filter.IsZero() && size == d.cfg.DefaultPageSize && d.cfg.FirstPageTTL > 0 {
		page, err = d.firstPage.GetOrLoad(ctx, firstPageKey, load, d.cfg.FirstPageTTL)
	} else {
		page, err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	d.recorder.RecordPage("posts", len(page.Items), page.HasMore)
	return page, nil
}

func (d *feedDomain) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, err := d.posts.GetOrLoad(ctx, postKey(id), func(ctx context.Context) (*model.Post, error) {
		p, err := d.postDB.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrPostNotFound
		}
		return p, nil
	})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

func (d *feedDomain) CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	if in.AuthorID == uuid.Nil {
		return nil, ErrInvalidAuthor
	}
	body, err := d.validateBody(in.Body)
	if err != nil {
		return nil, err
	}
	tags := normalizeTags(in.Tags)
	if len(tags) > d.cfg.MaxTags {
		return nil, ErrTooManyTags
	}

	// Postgres keeps microseconds; truncating keeps cursors built from this
	// value identical to ones built from stored rows.
	now := d.now().UTC().Truncate(time.Microsecond)
	post := &model.Post{
		ID:        uuid.New(),
		AuthorID:  in.AuthorID,
		Body:      body,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := d.postDB.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := d.posts.Set(ctx, postKey(post.ID), post); err != nil {
		d.logger.Warn("cache post failed", requestctx.Field(ctx), zap.String("post_id", post.ID.String()), zap.Error(err))
	}
	d.invalidate(ctx, firstPageKey)

	d.logger.Info("post created",
		requestctx.Field(ctx),
		zap.String("post_id", post.ID.String()),
		zap.String("author_id", post.AuthorID.String()),
	)
	return post, nil
}

func (d *feedDomain) DeletePost(ctx context.Context, id uuid.UUID) error {
	post, err := d.postDB.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find post: %w", err)
	}
	if post == nil {
		return ErrPostNotFound
	}

	err = d.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := d.commentDB.DeleteByPost(ctx, id); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := d.postDB.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.invalidate(ctx, postKey(id), firstPageKey)

	d.logger.Info("post deleted", requestctx.Field(ctx), zap.String("post_id", id.String()))
	return nil
}

// --- Comments ---

func (d *feedDomain) ListComments(ctx context.Context, postID uuid.UUID, in PageInput) (*pagination.CursorPage[*model.Comment], error) {
	if _, err := d.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, after *cursor.Cursor, limit int) ([]*model.Comment, error) {
		return d.commentDB.ListAfter(ctx, postID, after, limit)
	}
	page, err := pagination.Paginate[*model.Comment](ctx, d.resolveCursor(in.Cursor), d.pageSize(in.Limit), fetch, (*model.Comment).Cursor)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	d.recorder.RecordPage("comments", len(page.Items), page.HasMore)
	return page, nil
}

func (d *feedDomain) AddComment(ctx context.Context, postID uuid.UUID, in AddCommentInput) (*model.Comment, error) {
	if in.AuthorID == uuid.Nil {
		return nil, ErrInvalidAuthor
	}
	body, err := d.validateBody(in.Body)
	if err != nil {
		return nil, err
	}

	post, err := d.postDB.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comment := &model.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  in.AuthorID,
		Body:      body,
		CreatedAt: d.now().UTC().Truncate(time.Microsecond),
	}
	err = d.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := d.commentDB.Create(ctx, comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		if err := d.postDB.IncrementCommentCount(ctx, postID, 1); err != nil {
			return fmt.Errorf("increment comment count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.invalidate(ctx, postKey(postID))
	return comment, nil
}

// --- Admin ---

func (d *feedDomain) ListPostsOffset(ctx context.Context, p *pagination.Pagination) ([]*model.Post, int64, error) {
	posts, total, err := d.postDB.List(ctx, p.Offset(), p.Limit())
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// --- Helpers ---

func (d *feedDomain) pageSize(limit int) int {
	return pagination.Bound(limit, d.cfg.DefaultPageSize, d.cfg.MaxPageSize)
}

// resolveCursor decodes a client token. Unusable tokens restart from the
// first page.
func (d *feedDomain) resolveCursor(token string) *cursor.Cursor {
	if token == "" {
		return nil
	}
	after := pagination.Resolve(token)
	if after == nil {
		d.logger.Debug("ignoring malformed cursor", logger.CursorField(token))
		return nil
	}
	if _, err := uuid.Parse(after.ID); err != nil {
		d.logger.Debug("ignoring cursor with invalid id", logger.CursorField(token))
		return nil
	}
	return after
}

func (d *feedDomain) validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > d.cfg.MaxBodyLength {
		return "", ErrBodyTooLong
	}
	return body, nil
}

// invalidate removes keys. Failures leave stale entries until they expire.
func (d *feedDomain) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := d.cache.Remove(ctx, key); err != nil {
			d.logger.Warn("cache invalidation failed", requestctx.Field(ctx), zap.String("key", key), zap.Error(err))
		}
	}
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
