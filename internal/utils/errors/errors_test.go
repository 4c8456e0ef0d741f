package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns message", func(t *testing.T) {
		err := &AppError{Code: "TEST_ERROR", Message: "test error message"}
		assert.Equal(t, "test error message", err.Error())
	})

	t.Run("Error includes wrapped error", func(t *testing.T) {
		err := &AppError{Code: "TEST_ERROR", Message: "load page", Err: errors.New("dial tcp: refused")}
		assert.Equal(t, "load page: dial tcp: refused", err.Error())
	})

	t.Run("Unwrap returns wrapped error", func(t *testing.T) {
		wrapped := errors.New("wrapped error")
		err := &AppError{Err: wrapped}
		assert.Equal(t, wrapped, err.Unwrap())
	})

	t.Run("Is matches by code", func(t *testing.T) {
		assert.True(t, errors.Is(NotFound("post"), NotFound("comment")))
		assert.False(t, errors.Is(NotFound("post"), BadRequest("x")))
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("post"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"bad request", BadRequest("bad"), "BAD_REQUEST", http.StatusBadRequest, ErrBadRequest},
		{"validation", ValidationError("body is required"), "VALIDATION_ERROR", http.StatusUnprocessableEntity, ErrBadRequest},
		{"conflict", Conflict("exists"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"unavailable", ServiceUnavailable(""), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}

	assert.Equal(t, "post not found", NotFound("post").Message)
	assert.Equal(t, "service temporarily unavailable", ServiceUnavailable("").Message)
}

func TestInternal(t *testing.T) {
	wrapped := errors.New("database error")
	err := Internal("", wrapped)

	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, "internal server error", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, wrapped, err.Err)
}

func TestToResponse(t *testing.T) {
	resp := ValidationError("limit out of range").WithDetails(map[string]any{"field": "limit"}).ToResponse()

	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "limit out of range", resp.Error.Message)
	assert.Equal(t, "limit", resp.Error.Details["field"])
}

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"app error", Conflict("x"), http.StatusConflict},
		{"wrapped app error", fmt.Errorf("create: %w", NotFound("post")), http.StatusNotFound},
		{"sentinel", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{"unavailable sentinel", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetStatusCode(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("post")))
	assert.False(t, IsNotFound(BadRequest("x")))
}
