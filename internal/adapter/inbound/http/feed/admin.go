package feedhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agora/server/internal/domain/feed"
	"github.com/agora/server/internal/model"
	"github.com/agora/server/internal/port/inbound"
	apperrors "github.com/agora/server/internal/utils/errors"
	"github.com/agora/server/internal/utils/middleware"
	"github.com/agora/server/internal/utils/pagination"
)

// AdminHandler serves offset listings for moderation tools.
type AdminHandler struct {
	feedDomain feed.FeedDomain
}

var _ inbound.FeedAdminHttpPort = (*AdminHandler)(nil)

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(feedDomain feed.FeedDomain) *AdminHandler {
	return &AdminHandler{feedDomain: feedDomain}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.GET("/posts", h.ListPosts)
	}
}

// ListPosts handles GET /admin/posts.
//
//	@Summary		List posts by page
//	@Description	Offset paginated listing with totals for moderation.
//	@Tags			Admin
//	@Produce		json
//	@Param			page		query		int	false	"Page number"
//	@Param			page_size	query		int	false	"Page size"
//	@Success		200			{object}	model.PaginatedResponse[model.Post]
//	@Failure		400			{object}	apperrors.ErrorResponse
//	@Router			/admin/posts [get]
func (h *AdminHandler) ListPosts(c *gin.Context) {
	p := pagination.New()
	if err := c.ShouldBindQuery(p); err != nil {
		abort(c, apperrors.BadRequest("invalid query parameters"))
		return
	}
	if err := p.Validate(); err != nil {
		abort(c, apperrors.BadRequest("page out of range"))
		return
	}

	posts, total, err := h.feedDomain.ListPostsOffset(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := model.NewPaginatedResponse(posts, total, p.Page, p.Limit())
	middleware.SetListing(c, len(resp.Data), resp.Page < resp.TotalPages)
	c.JSON(http.StatusOK, resp)
}
