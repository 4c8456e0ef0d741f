package feedhttp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agora/server/internal/domain/feed"
	apperrors "github.com/agora/server/internal/utils/errors"
)

// parseID parses the :id path parameter, writing a 400 on failure.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, apperrors.BadRequest("invalid post ID"))
		return uuid.Nil, false
	}
	return id, true
}

func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, err.ToResponse())
}

// handleError maps feed domain errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, feed.ErrPostNotFound):
		appErr = apperrors.NotFound("post")

	case errors.Is(err, feed.ErrEmptyBody):
		appErr = apperrors.ValidationError("Body must not be empty")

	case errors.Is(err, feed.ErrBodyTooLong):
		appErr = apperrors.ValidationError("Body is too long")

	case errors.Is(err, feed.ErrTooManyTags):
		appErr = apperrors.ValidationError("Too many tags")

	case errors.Is(err, feed.ErrInvalidAuthor):
		appErr = apperrors.ValidationError("Author is required")

	case errors.As(err, &appErr):

	default:
		_ = c.Error(err)
		appErr = apperrors.Internal("", err)
	}

	if appErr.StatusCode == 0 {
		appErr.StatusCode = http.StatusInternalServerError
	}
	abort(c, appErr)
}
