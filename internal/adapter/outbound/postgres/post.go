package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agora/server/internal/model"
	"github.com/agora/server/internal/port/outbound"
	"github.com/agora/server/internal/utils/cursor"
	"github.com/agora/server/internal/utils/pagination"
)

// postAdapter implements outbound.PostDatabasePort.
type postAdapter struct {
	db *gorm.DB
}

// NewPostAdapter creates a new post database adapter.
func NewPostAdapter(db *gorm.DB) outbound.PostDatabasePort {
	return &postAdapter{db: db}
}

func (a *postAdapter) Create(ctx context.Context, post *model.Post) error {
	return conn(ctx, a.db).Create(post).Error
}

func (a *postAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	err := conn(ctx, a.db).First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (a *postAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, a.db).Delete(&model.Post{}, "id = ?", id).Error
}

func (a *postAdapter) ListAfter(ctx context.Context, filter model.PostFilter, after *cursor.Cursor, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	if err := a.listAfterQuery(ctx, filter, after, limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (a *postAdapter) listAfterQuery(ctx context.Context, filter model.PostFilter, after *cursor.Cursor, limit int) *gorm.DB {
	query := conn(ctx, a.db).Model(&model.Post{})
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	return query.
		Scopes(pagination.KeysetScope(after, pagination.Descending, pagination.DefaultColumns)).
		Limit(limit)
}

func (a *postAdapter) List(ctx context.Context, offset, limit int) ([]*model.Post, int64, error) {
	var posts []*model.Post
	var total int64

	query := conn(ctx, a.db).Model(&model.Post{})

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (a *postAdapter) IncrementCommentCount(ctx context.Context, id uuid.UUID, delta int) error {
	return conn(ctx, a.db).
		Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", delta)).Error
}
