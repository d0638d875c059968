package handlers

import (
	"net/http"

	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow toggles
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{followRepository: followRepo, userRepository: userRepo}
}

// RegisterFollowRoutes registers follow routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:userId/follow", h.ToggleFollow)
	g.GET("/users/:userId/follow-status", h.FollowStatus)
}

// ToggleFollow follows or unfollows the user in the path
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	target := c.Param("userId")
	if target == id.UserID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, target); err != nil {
		return storeError(c, err)
	}
	result, err := h.followRepository.ToggleFollow(ctx, id.UserID, target)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// FollowStatus reports whether the caller follows the user in the path
func (h *FollowHandler) FollowStatus(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	following, err := h.followRepository.IsFollowing(c.Request().Context(), id.UserID, c.Param("userId"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"isFollowing": following})
}
