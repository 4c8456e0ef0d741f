package model

import "github.com/google/uuid"

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	AuthorID uuid.UUID `json:"author_id" binding:"required"`
	Body     string    `json:"body" binding:"required"`
	Tags     []string  `json:"tags"`
}

// AddCommentRequest is the body of POST /posts/:id/comments.
type AddCommentRequest struct {
	AuthorID uuid.UUID `json:"author_id" binding:"required"`
	Body     string    `json:"body" binding:"required"`
}

// ListPostsQuery holds the query parameters of GET /posts.
type ListPostsQuery struct {
	Cursor   string `form:"cursor"`
	Limit    int    `form:"limit"`
	AuthorID string `form:"author_id"`
}
