package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/minired/backend/internal/feed"
	"github.com/anonto42/minired/backend/internal/identity"
	"github.com/anonto42/minired/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagingPostRepo records the pagination arguments it is queried with
type pagingPostRepo struct {
	skip, limit int64
}

func (r *pagingPostRepo) CreatePost(_ context.Context, _ *models.Post) error { return nil }

func (r *pagingPostRepo) GetPostByID(_ context.Context, _ string) (*models.Post, error) {
	return nil, nil
}

func (r *pagingPostRepo) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	r.skip, r.limit = skip, limit
	return []models.Post{}, nil
}

func (r *pagingPostRepo) AddLike(_ context.Context, _, _ string) error    { return nil }
func (r *pagingPostRepo) RemoveLike(_ context.Context, _, _ string) error { return nil }

func (r *pagingPostRepo) AppendComment(_ context.Context, _ string, _ models.Comment) error {
	return nil
}

func TestGetFeedClampsPagination(t *testing.T) {
	repo := &pagingPostRepo{}
	service := feed.NewService(repo, identity.NewResolver(nil), noopNotifier{}, nil)
	h := NewFeedHandler(service)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/posts?skip=-10&limit=9999", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.GetFeed(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), repo.skip)
	assert.Equal(t, int64(50), repo.limit)
}
