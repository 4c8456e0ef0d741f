package inbound

import "github.com/gin-gonic/gin"

// FeedHttpPort defines HTTP handler interface for feed operations.
type FeedHttpPort interface {
	// ListPosts handles GET /posts
	ListPosts(c *gin.Context)

	// GetPost handles GET /posts/:id
	GetPost(c *gin.Context)

	// CreatePost handles POST /posts
	CreatePost(c *gin.Context)

	// DeletePost handles DELETE /posts/:id
	DeletePost(c *gin.Context)

	// ListComments handles GET /posts/:id/comments
	ListComments(c *gin.Context)

	// AddComment handles POST /posts/:id/comments
	AddComment(c *gin.Context)
}

// FeedAdminHttpPort defines HTTP handler interface for feed administration.
type FeedAdminHttpPort interface {
	// ListPosts handles GET /admin/posts
	ListPosts(c *gin.Context)
}
