package handlers

import (
	"net/http"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository) *CommentHandler {
	return &CommentHandler{commentRepository: commentRepo}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:postId/comments", h.GetComments)
	g.POST("/posts/:postId/comments", h.CreateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// GetComments lists the comments of a post, newest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.commentRepository.ListComments(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// CreateComment adds a comment by the caller
func (h *CommentHandler) CreateComment(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentRepository.CreateComment(c.Request().Context(), c.Param("postId"), id.UserID, req.Content)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment deletes a comment written by the caller
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.commentRepository.DeleteComment(c.Request().Context(), c.Param("id"), id.UserID); err != nil {
		return deleteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
