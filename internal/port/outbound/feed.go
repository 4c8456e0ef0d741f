package outbound

import (
	"context"

	"github.com/google/uuid"

	"github.com/agora/server/internal/model"
	"github.com/agora/server/internal/utils/cursor"
)

// PostDatabasePort defines post persistence operations.
type PostDatabasePort interface {
	// Create inserts a post.
	Create(ctx context.Context, post *model.Post) error

	// FindByID returns the post, or nil if it does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)

	// Delete removes a post. Deleting an absent post is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListAfter returns up to limit posts matching filter, newest first,
	// strictly after the given position (nil for the start).
	ListAfter(ctx context.Context, filter model.PostFilter, after *cursor.Cursor, limit int) ([]*model.Post, error)

	// List returns one offset page of posts, newest first, and the total count.
	List(ctx context.Context, offset, limit int) ([]*model.Post, int64, error)

	// IncrementCommentCount adds delta to a post's comment count.
	IncrementCommentCount(ctx context.Context, id uuid.UUID, delta int) error
}

// CommentDatabasePort defines comment persistence operations.
type CommentDatabasePort interface {
	// Create inserts a comment.
	Create(ctx context.Context, comment *model.Comment) error

	// ListAfter returns up to limit comments of a post, oldest first,
	// strictly after the given position (nil for the start).
	ListAfter(ctx context.Context, postID uuid.UUID, after *cursor.Cursor, limit int) ([]*model.Comment, error)

	// DeleteByPost removes every comment of a post.
	DeleteByPost(ctx context.Context, postID uuid.UUID) error
}

// FeedTransactionPort runs a group of feed writes atomically. Repositories
// called with the context passed to fn take part in the transaction.
type FeedTransactionPort interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
