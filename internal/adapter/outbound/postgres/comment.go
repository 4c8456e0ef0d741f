package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agora/server/internal/model"
	"github.com/agora/server/internal/port/outbound"
	"github.com/agora/server/internal/utils/cursor"
	"github.com/agora/server/internal/utils/pagination"
)

// commentAdapter implements outbound.CommentDatabasePort.
type commentAdapter struct {
	db *gorm.DB
}

// NewCommentAdapter creates a new comment database adapter.
func NewCommentAdapter(db *gorm.DB) outbound.CommentDatabasePort {
	return &commentAdapter{db: db}
}

func (a *commentAdapter) Create(ctx context.Context, comment *model.Comment) error {
	return conn(ctx, a.db).Create(comment).Error
}

func (a *commentAdapter) ListAfter(ctx context.Context, postID uuid.UUID, after *cursor.Cursor, limit int) ([]*model.Comment, error) {
	var comments []*model.Comment
	if err := a.listAfterQuery(ctx, postID, after, limit).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (a *commentAdapter) listAfterQuery(ctx context.Context, postID uuid.UUID, after *cursor.Cursor, limit int) *gorm.DB {
	return conn(ctx, a.db).
		Model(&model.Comment{}).
		Where("post_id = ?", postID).
		Scopes(pagination.KeysetScope(after, pagination.Ascending, pagination.DefaultColumns)).
		Limit(limit)
}

func (a *commentAdapter) DeleteByPost(ctx context.Context, postID uuid.UUID) error {
	return conn(ctx, a.db).Where("post_id = ?", postID).Delete(&model.Comment{}).Error
}
