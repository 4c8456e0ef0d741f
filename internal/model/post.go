package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/agora/server/internal/utils/cursor"
)

// Post is a feed entry. Listings are ordered by (created_at, id).
type Post struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;index:idx_posts_keyset,priority:2,sort:desc"`
	AuthorID     uuid.UUID      `json:"author_id" gorm:"type:uuid;not null;index:idx_posts_author_keyset,priority:1"`
	Body         string         `json:"body" gorm:"type:text;not null"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	CommentCount int            `json:"comment_count" gorm:"not null;default:0"`
	CreatedAt    time.Time      `json:"created_at" gorm:"not null;index:idx_posts_keyset,priority:1,sort:desc;index:idx_posts_author_keyset,priority:2,sort:desc"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName returns the table name for Post.
func (Post) TableName() string {
	return "posts"
}

// Cursor returns the keyset position of the post.
func (p *Post) Cursor() cursor.Cursor {
	return cursor.New(p.CreatedAt, p.ID.String())
}

// Comment is a reply to a post, listed oldest first.
type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index:idx_comments_keyset,priority:1"`
	AuthorID  uuid.UUID `json:"author_id" gorm:"type:uuid;not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_comments_keyset,priority:2"`
}

// TableName returns the table name for Comment.
func (Comment) TableName() string {
	return "comments"
}

// Cursor returns the keyset position of the comment.
func (c *Comment) Cursor() cursor.Cursor {
	return cursor.New(c.CreatedAt, c.ID.String())
}

// PostFilter narrows a post listing. A filter is part of the query a cursor
// belongs to.
type PostFilter struct {
	AuthorID *uuid.UUID
}

// IsZero reports whether the filter matches every post.
func (f PostFilter) IsZero() bool {
	return f.AuthorID == nil
}
