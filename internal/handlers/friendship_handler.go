package handlers

import (
	"net/http"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler drives the friend request state machine
type FriendshipHandler struct {
	friendshipRepository repositories.FriendshipRepository
	userRepository       repositories.UserRepository
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendshipRepo repositories.FriendshipRepository, userRepo repositories.UserRepository) *FriendshipHandler {
	return &FriendshipHandler{friendshipRepository: friendshipRepo, userRepository: userRepo}
}

// RegisterFriendshipRoutes registers friendship routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.GET("/friends", h.GetFriends)
	g.GET("/friends/requests", h.GetFriendRequests)
	g.POST("/friends/:userId/request", h.SendFriendRequest)
	g.POST("/friends/:userId/accept", h.AcceptFriendRequest)
	g.POST("/friends/:userId/reject", h.RejectFriendRequest)
	g.DELETE("/friends/:userId", h.RemoveFriend)
}

// GetFriends lists the caller's friends
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	friends, err := h.userRepository.GetFriends(c.Request().Context(), id.UserID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, friends)
}

// GetFriendRequests lists the users waiting in the caller's inbox
func (h *FriendshipHandler) GetFriendRequests(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	requests, err := h.userRepository.GetPendingRequests(c.Request().Context(), id.UserID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, requests)
}

// SendFriendRequest asks the user in the path to become a friend
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	target := c.Param("userId")
	if target == id.UserID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot befriend yourself")
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, target); err != nil {
		return storeError(c, err)
	}
	sent, err := h.friendshipRepository.SendFriendRequest(ctx, id.UserID, target)
	if err != nil {
		return storeError(c, err)
	}
	if !sent {
		return echo.NewHTTPError(http.StatusConflict, "Friend request already pending or already friends")
	}
	return c.JSON(http.StatusCreated, models.FriendshipResponse{UserID: target, State: models.FriendStatePending})
}

// AcceptFriendRequest accepts the pending request from the user in the path
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	requester := c.Param("userId")
	if err := h.friendshipRepository.AcceptFriendRequest(c.Request().Context(), id.UserID, requester); err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, models.FriendshipResponse{UserID: requester, State: models.FriendStateFriends})
}

// RejectFriendRequest drops the pending request from the user in the path
func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	requester := c.Param("userId")
	rejected, err := h.friendshipRepository.RejectFriendRequest(c.Request().Context(), id.UserID, requester)
	if err != nil {
		return storeError(c, err)
	}
	if !rejected {
		return echo.NewHTTPError(http.StatusNotFound, "Friend request not found")
	}
	return c.JSON(http.StatusOK, models.FriendshipResponse{UserID: requester, State: models.FriendStateNone})
}

// RemoveFriend ends the friendship with the user in the path
func (h *FriendshipHandler) RemoveFriend(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.friendshipRepository.RemoveFriend(c.Request().Context(), id.UserID, c.Param("userId")); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
