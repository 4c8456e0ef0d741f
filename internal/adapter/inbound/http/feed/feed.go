package feedhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agora/server/internal/domain/feed"
	"github.com/agora/server/internal/model"
	"github.com/agora/server/internal/port/inbound"
	apperrors "github.com/agora/server/internal/utils/errors"
	"github.com/agora/server/internal/utils/middleware"
	"github.com/agora/server/internal/utils/pagination"
)

// FeedHandler handles post and comment HTTP requests.
type FeedHandler struct {
	feedDomain feed.FeedDomain
}

var _ inbound.FeedHttpPort = (*FeedHandler)(nil)

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(feedDomain feed.FeedDomain) *FeedHandler {
	return &FeedHandler{feedDomain: feedDomain}
}

// RegisterRoutes registers feed routes.
func (h *FeedHandler) RegisterRoutes(r *gin.RouterGroup) {
	posts := r.Group("/posts")
	{
		posts.GET("", h.ListPosts)
		posts.POST("", h.CreatePost)
		posts.GET("/:id", h.GetPost)
		posts.DELETE("/:id", h.DeletePost)
		posts.GET("/:id/comments", h.ListComments)
		posts.POST("/:id/comments", h.AddComment)
	}
}

// ListPosts handles GET /posts.
//
//	@Summary		List posts
//	@Description	Keyset paginated feed, newest first. Pass nextCursor back as cursor for the following page.
//	@Tags			Feed
//	@Produce		json
//	@Param			cursor		query		string	false	"Opaque cursor from a previous page"
//	@Param			limit		query		int		false	"Page size"
//	@Param			author_id	query		string	false	"Only posts by this author"
//	@Success		200			{object}	pagination.CursorPage[model.Post]
//	@Failure		400			{object}	apperrors.ErrorResponse
//	@Router			/posts [get]
func (h *FeedHandler) ListPosts(c *gin.Context) {
	var q model.ListPostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, apperrors.BadRequest("invalid query parameters"))
		return
	}

	in := feed.ListPostsInput{Cursor: q.Cursor, Limit: q.Limit}
	if q.AuthorID != "" {
		authorID, err := uuid.Parse(q.AuthorID)
		if err != nil {
			abort(c, apperrors.BadRequest("invalid author ID"))
			return
		}
		in.AuthorID = &authorID
	}

	page, err := h.feedDomain.ListPosts(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}

	middleware.SetListing(c, len(page.Items), page.HasMore)
	c.JSON(http.StatusOK, page)
}

// GetPost handles GET /posts/:id.
//
//	@Summary		Get post
//	@Tags			Feed
//	@Produce		json
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	model.Post
//	@Failure		400	{object}	apperrors.ErrorResponse
//	@Failure		404	{object}	apperrors.ErrorResponse
//	@Router			/posts/{id} [get]
func (h *FeedHandler) GetPost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	post, err := h.feedDomain.GetPost(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost handles POST /posts.
//
//	@Summary		Create post
//	@Tags			Feed
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string					false	"Replays the stored response for a repeated key"
//	@Param			request			body		model.CreatePostRequest	true	"Post"
//	@Success		201				{object}	model.Post
//	@Failure		400				{object}	apperrors.ErrorResponse
//	@Failure		422				{object}	apperrors.ErrorResponse
//	@Router			/posts [post]
func (h *FeedHandler) CreatePost(c *gin.Context) {
	var req model.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperrors.BadRequest(err.Error()))
		return
	}

	post, err := h.feedDomain.CreatePost(c.Request.Context(), feed.CreatePostInput{
		AuthorID: req.AuthorID,
		Body:     req.Body,
		Tags:     req.Tags,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// DeletePost handles DELETE /posts/:id.
//
//	@Summary		Delete post
//	@Description	Deletes the post and its comments.
//	@Tags			Feed
//	@Param			id	path	string	true	"Post ID"
//	@Success		204
//	@Failure		404	{object}	apperrors.ErrorResponse
//	@Router			/posts/{id} [delete]
func (h *FeedHandler) DeletePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.feedDomain.DeletePost(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListComments handles GET /posts/:id/comments.
//
//	@Summary		List comments
//	@Description	Keyset paginated comments of a post, oldest first.
//	@Tags			Feed
//	@Produce		json
//	@Param			id		path		string	true	"Post ID"
//	@Param			cursor	query		string	false	"Opaque cursor from a previous page"
//	@Param			limit	query		int		false	"Page size"
//	@Success		200		{object}	pagination.CursorPage[model.Comment]
//	@Failure		404		{object}	apperrors.ErrorResponse
//	@Router			/posts/{id}/comments [get]
func (h *FeedHandler) ListComments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var q pagination.CursorRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, apperrors.BadRequest("invalid query parameters"))
		return
	}

	page, err := h.feedDomain.ListComments(c.Request.Context(), id, feed.PageInput{Cursor: q.Cursor, Limit: q.Limit})
	if err != nil {
		handleError(c, err)
		return
	}

	middleware.SetListing(c, len(page.Items), page.HasMore)
	c.JSON(http.StatusOK, page)
}

// AddComment handles POST /posts/:id/comments.
//
//	@Summary		Add comment
//	@Tags			Feed
//	@Accept			json
//	@Produce		json
//	@Param			id				path		string					true	"Post ID"
//	@Param			Idempotency-Key	header		string					false	"Replays the stored response for a repeated key"
//	@Param			request			body		model.AddCommentRequest	true	"Comment"
//	@Success		201				{object}	model.Comment
//	@Failure		404				{object}	apperrors.ErrorResponse
//	@Failure		422				{object}	apperrors.ErrorResponse
//	@Router			/posts/{id}/comments [post]
func (h *FeedHandler) AddComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, apperrors.BadRequest(err.Error()))
		return
	}

	comment, err := h.feedDomain.AddComment(c.Request.Context(), id, feed.AddCommentInput{
		AuthorID: req.AuthorID,
		Body:     req.Body,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}
