package feedhttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agora/server/internal/domain/feed"
	"github.com/agora/server/internal/model"
	apperrors "github.com/agora/server/internal/utils/errors"
	"github.com/agora/server/internal/utils/middleware"
	"github.com/agora/server/internal/utils/pagination"
)

type MockFeedDomain struct {
	mock.Mock
}

func (m *MockFeedDomain) ListPosts(ctx context.Context, in feed.ListPostsInput) (*pagination.CursorPage[*model.Post], error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.CursorPage[*model.Post]), args.Error(1)
}

func (m *MockFeedDomain) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockFeedDomain) CreatePost(ctx context.Context, in feed.CreatePostInput) (*model.Post, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockFeedDomain) DeletePost(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeedDomain) ListComments(ctx context.Context, postID uuid.UUID, in feed.PageInput) (*pagination.CursorPage[*model.Comment], error) {
	args := m.Called(ctx, postID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.CursorPage[*model.Comment]), args.Error(1)
}

func (m *MockFeedDomain) AddComment(ctx context.Context, postID uuid.UUID, in feed.AddCommentInput) (*model.Comment, error) {
	args := m.Called(ctx, postID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockFeedDomain) ListPostsOffset(ctx context.Context, p *pagination.Pagination) ([]*model.Post, int64, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Post), args.Get(1).(int64), args.Error(2)
}

func setupRouter(domain feed.FeedDomain) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	NewFeedHandler(domain).RegisterRoutes(v1)
	NewAdminHandler(domain).RegisterRoutes(v1)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorDetail {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func samplePost() *model.Post {
	return &model.Post{
		ID:        uuid.MustParse("3f2b9c1e-8a7d-4e21-9b0a-1c2d3e4f5a6b"),
		AuthorID:  uuid.MustParse("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"),
		Body:      "hello",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestListPosts(t *testing.T) {
	domain := new(MockFeedDomain)
	next := "opaque-token"
	page := &pagination.CursorPage[*model.Post]{
		Items:      []*model.Post{samplePost()},
		NextCursor: &next,
		HasMore:    true,
	}
	domain.On("ListPosts", mock.Anything, feed.ListPostsInput{Cursor: "abc", Limit: 5}).Return(page, nil)

	w := do(setupRouter(domain), http.MethodGet, "/api/v1/posts?cursor=abc&limit=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "opaque-token", body["nextCursor"])
	assert.Equal(t, true, body["hasMore"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "hello", items[0].(map[string]any)["body"])
	domain.AssertExpectations(t)
}

func TestListPosts_LastPageHasNullCursor(t *testing.T) {
	domain := new(MockFeedDomain)
	domain.On("ListPosts", mock.Anything, feed.ListPostsInput{}).
		Return(&pagination.CursorPage[*model.Post]{Items: []*model.Post{}}, nil)

	w := do(setupRouter(domain), http.MethodGet, "/api/v1/posts", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"nextCursor":null,"hasMore":false}`, w.Body.String())
}

func TestListPosts_AuthorFilter(t *testing.T) {
	domain := new(MockFeedDomain)
	author := uuid.New()
	domain.On("ListPosts", mock.Anything, mock.MatchedBy(func(in feed.ListPostsInput) bool {
		return in.AuthorID != nil && *in.AuthorID == author
	})).Return(&pagination.CursorPage[*model.Post]{Items: []*model.Post{}}, nil)

	w := do(setupRouter(domain), http.MethodGet, "/api/v1/posts?author_id="+author.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	domain.AssertExpectations(t)
}

func TestListPosts_BadQuery(t *testing.T) {
	domain := new(MockFeedDomain)
	r := setupRouter(domain)

	w := do(r, http.MethodGet, "/api/v1/posts?author_id=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, w).Code)

	w = do(r, http.MethodGet, "/api/v1/posts?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	domain.AssertNotCalled(t, "ListPosts", mock.Anything, mock.Anything)
}

func TestGetPost(t *testing.T) {
	domain := new(MockFeedDomain)
	post := samplePost()
	missing := uuid.New()
	domain.On("GetPost", mock.Anything, post.ID).Return(post, nil)
	domain.On("GetPost", mock.Anything, missing).Return(nil, feed.ErrPostNotFound)
	r := setupRouter(domain)

	w := do(r, http.MethodGet, "/api/v1/posts/"+post.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got model.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, post.ID, got.ID)

	w = do(r, http.MethodGet, "/api/v1/posts/"+missing.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)

	w = do(r, http.MethodGet, "/api/v1/posts/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPost_InternalErrorHidesDetail(t *testing.T) {
	domain := new(MockFeedDomain)
	id := uuid.New()
	domain.On("GetPost", mock.Anything, id).Return(nil, errors.New("pq: password authentication failed"))

	w := do(setupRouter(domain), http.MethodGet, "/api/v1/posts/"+id.String(), "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Code)
}

func TestCreatePost(t *testing.T) {
	domain := new(MockFeedDomain)
	post := samplePost()
	domain.On("CreatePost", mock.Anything, feed.CreatePostInput{
		AuthorID: post.AuthorID,
		Body:     "hello",
		Tags:     []string{"go"},
	}).Return(post, nil)

	body := `{"author_id":"` + post.AuthorID.String() + `","body":"hello","tags":["go"]}`
	w := do(setupRouter(domain), http.MethodPost, "/api/v1/posts", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), post.ID.String())
	domain.AssertExpectations(t)
}

func TestCreatePost_Errors(t *testing.T) {
	author := uuid.New().String()

	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed json", `{"author_id":`, nil, http.StatusBadRequest},
		{"missing body", `{"author_id":"` + author + `"}`, nil, http.StatusBadRequest},
		{"body too long", `{"author_id":"` + author + `","body":"x"}`, feed.ErrBodyTooLong, http.StatusUnprocessableEntity},
		{"too many tags", `{"author_id":"` + author + `","body":"x"}`, feed.ErrTooManyTags, http.StatusUnprocessableEntity},
		{"blank body", `{"author_id":"` + author + `","body":" "}`, feed.ErrEmptyBody, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domain := new(MockFeedDomain)
			if tt.err != nil {
				domain.On("CreatePost", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			w := do(setupRouter(domain), http.MethodPost, "/api/v1/posts", tt.body)
			assert.Equal(t, tt.status, w.Code)
			if tt.err == nil {
				domain.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDeletePost(t *testing.T) {
	domain := new(MockFeedDomain)
	id := uuid.New()
	missing := uuid.New()
	domain.On("DeletePost", mock.Anything, id).Return(nil)
	domain.On("DeletePost", mock.Anything, missing).Return(feed.ErrPostNotFound)
	r := setupRouter(domain)

	w := do(r, http.MethodDelete, "/api/v1/posts/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, "/api/v1/posts/"+missing.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComments(t *testing.T) {
	domain := new(MockFeedDomain)
	postID := uuid.New()
	author := uuid.New()
	comment := &model.Comment{ID: uuid.New(), PostID: postID, AuthorID: author, Body: "reply"}

	domain.On("ListComments", mock.Anything, postID, feed.PageInput{Cursor: "c1", Limit: 2}).
		Return(&pagination.CursorPage[*model.Comment]{Items: []*model.Comment{comment}}, nil)
	domain.On("AddComment", mock.Anything, postID, feed.AddCommentInput{AuthorID: author, Body: "reply"}).
		Return(comment, nil)
	r := setupRouter(domain)

	w := do(r, http.MethodGet, "/api/v1/posts/"+postID.String()+"/comments?cursor=c1&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hasMore":false`)
	assert.Contains(t, w.Body.String(), comment.ID.String())

	w = do(r, http.MethodPost, "/api/v1/posts/"+postID.String()+"/comments",
		`{"author_id":"`+author.String()+`","body":"reply"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	domain.AssertExpectations(t)
}

func TestAddComment_PostNotFound(t *testing.T) {
	domain := new(MockFeedDomain)
	postID := uuid.New()
	domain.On("AddComment", mock.Anything, postID, mock.Anything).Return(nil, feed.ErrPostNotFound)

	w := do(setupRouter(domain), http.MethodPost, "/api/v1/posts/"+postID.String()+"/comments",
		`{"author_id":"`+uuid.New().String()+`","body":"reply"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminListPosts(t *testing.T) {
	domain := new(MockFeedDomain)
	domain.On("ListPostsOffset", mock.Anything, &pagination.Pagination{Page: 2, PageSize: 10}).
		Return([]*model.Post{samplePost()}, int64(11), nil)

	w := do(setupRouter(domain), http.MethodGet, "/api/v1/admin/posts?page=2&page_size=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp model.PaginatedResponse[*model.Post]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(11), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 2, resp.Page)
	assert.Len(t, resp.Data, 1)
}

func TestAdminListPosts_PageOutOfRange(t *testing.T) {
	domain := new(MockFeedDomain)

	w := do(setupRouter(domain), http.MethodGet, "/api/v1/admin/posts?page=500000000000000000", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, w).Code)
	domain.AssertNotCalled(t, "ListPostsOffset", mock.Anything, mock.Anything)
}

func TestListHandlers_RecordListing(t *testing.T) {
	domain := new(MockFeedDomain)
	next := "opaque-token"
	postID := samplePost().ID
	domain.On("ListPosts", mock.Anything, feed.ListPostsInput{}).
		Return(&pagination.CursorPage[*model.Post]{Items: []*model.Post{samplePost()}, NextCursor: &next, HasMore: true}, nil)
	domain.On("ListComments", mock.Anything, postID, feed.PageInput{}).
		Return(&pagination.CursorPage[*model.Comment]{Items: []*model.Comment{}}, nil)
	domain.On("ListPostsOffset", mock.Anything, &pagination.Pagination{Page: 2, PageSize: 1}).
		Return([]*model.Post{samplePost()}, int64(3), nil)

	var got middleware.Listing
	var recorded bool
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		got, recorded = middleware.GetListing(c)
	})
	v1 := r.Group("/api/v1")
	NewFeedHandler(domain).RegisterRoutes(v1)
	NewAdminHandler(domain).RegisterRoutes(v1)

	tests := []struct {
		target string
		want   middleware.Listing
	}{
		{"/api/v1/posts", middleware.Listing{Items: 1, HasMore: true}},
		{"/api/v1/posts/" + postID.String() + "/comments", middleware.Listing{Items: 0, HasMore: false}},
		{"/api/v1/admin/posts?page=2&page_size=1", middleware.Listing{Items: 1, HasMore: true}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			recorded = false
			w := do(r, http.MethodGet, tt.target, "")

			require.Equal(t, http.StatusOK, w.Code)
			require.True(t, recorded)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("errors record nothing", func(t *testing.T) {
		recorded = false
		w := do(r, http.MethodGet, "/api/v1/posts?author_id=nope", "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, recorded)
	})
}
