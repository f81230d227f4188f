package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/minired/backend/internal/feed"
	"github.com/anonto42/minired/backend/internal/models"
	"github.com/anonto42/minired/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles HTTP requests for the post feed
type FeedHandler struct {
	feedService *feed.Service
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedService *feed.Service) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts", h.GetFeed)
	g.POST("/posts", h.CreatePost)
	g.POST("/posts/:post_id/like", h.ToggleLike)
	g.POST("/posts/:post_id/comments", h.AddComment)
}

// GetFeed lists posts newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	posts, err := h.feedService.List(c.Request().Context(), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, posts)
}

// CreatePost creates a post from a multipart form with optional image
func (h *FeedHandler) CreatePost(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if fileHeader, ferr := c.FormFile("image"); ferr == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to read image upload")
		}
		defer file.Close()

		post, err := h.feedService.CreatePost(c.Request().Context(), actor, req.Text, file, fileHeader.Filename)
		if err != nil {
			return mapFeedError(err)
		}
		return c.JSON(http.StatusCreated, post)
	}

	post, err := h.feedService.CreatePost(c.Request().Context(), actor, req.Text, nil, "")
	if err != nil {
		return mapFeedError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// ToggleLike likes or unlikes a post for the caller
func (h *FeedHandler) ToggleLike(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	liked, err := h.feedService.ToggleLike(c.Request().Context(), actor, c.Param("post_id"))
	if err != nil {
		return mapFeedError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"post_id": c.Param("post_id"), "liked": liked})
}

// AddComment appends a comment to a post
func (h *FeedHandler) AddComment(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.feedService.AddComment(c.Request().Context(), actor, c.Param("post_id"), req.Text)
	if err != nil {
		return mapFeedError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func mapFeedError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case errors.Is(err, feed.ErrEmptyPost), errors.Is(err, feed.ErrEmptyComment):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
