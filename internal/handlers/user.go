package handlers

import (
	"net/http"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler serves public profiles
type UserHandler struct {
	userRepository   repositories.UserRepository
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, followRepo repositories.FollowRepository) *UserHandler {
	return &UserHandler{
		userRepository:   userRepo,
		postRepository:   postRepo,
		followRepository: followRepo,
	}
}

// RegisterProfileRoutes registers profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/:userId", h.GetProfile)
	g.GET("/users/:userId/posts", h.GetUserPosts)
}

// GetProfile returns a user with follower and following counts
func (h *UserHandler) GetProfile(c echo.Context) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := c.Param("userId")

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return storeError(c, err)
	}

	profile := models.Profile{User: *user}
	if profile.FollowersCount, err = h.followRepository.GetFollowersCount(ctx, userID); err != nil {
		return storeError(c, err)
	}
	if profile.FollowingCount, err = h.followRepository.GetFollowingCount(ctx, userID); err != nil {
		return storeError(c, err)
	}
	if viewer.UserID != userID {
		if profile.IsFollowing, err = h.followRepository.IsFollowing(ctx, viewer.UserID, userID); err != nil {
			return storeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, profile)
}

// GetUserPosts returns one page of a user's posts
func (h *UserHandler) GetUserPosts(c echo.Context) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}

	posts, err := h.postRepository.ListPostsByAuthor(c.Request().Context(), c.Param("userId"), viewer.UserID, page)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}
