package handlers

import (
	"net/http"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository) *PostHandler {
	return &PostHandler{postRepository: postRepo}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// GetPosts returns one page of the feed, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}

	posts, err := h.postRepository.ListPosts(c.Request().Context(), id.UserID, page)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"), id.UserID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post authored by the caller
func (h *PostHandler) CreatePost(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.HasBody() {
		return echo.NewHTTPError(http.StatusBadRequest, "Post content or media is required")
	}

	post, err := h.postRepository.CreatePost(c.Request().Context(), id.UserID, req)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.postRepository.DeletePost(c.Request().Context(), c.Param("id"), id.UserID); err != nil {
		return deleteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

