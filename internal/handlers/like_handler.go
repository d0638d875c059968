package handlers

import (
	"net/http"

	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like toggles on posts
type LikeHandler struct {
	likeRepository repositories.LikeRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository) *LikeHandler {
	return &LikeHandler{likeRepository: likeRepo}
}

// RegisterLikeRoutes registers like routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:postId/like", h.ToggleLike)
}

// ToggleLike likes or unlikes a post for the caller
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	result, err := h.likeRepository.ToggleLike(c.Request().Context(), c.Param("postId"), id.UserID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
