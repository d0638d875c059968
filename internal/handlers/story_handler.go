package handlers

import (
	"net/http"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// StoryHandler handles HTTP requests related to stories
type StoryHandler struct {
	storyRepository repositories.StoryRepository
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyRepo repositories.StoryRepository) *StoryHandler {
	return &StoryHandler{storyRepository: storyRepo}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.POST("/stories", h.CreateStory)
	g.DELETE("/stories/:id", h.DeleteStory)
}

// GetStories lists the active stories
func (h *StoryHandler) GetStories(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	stories, err := h.storyRepository.ListStories(c.Request().Context(), id.UserID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, stories)
}

// CreateStory publishes a story for the next 24 hours
func (h *StoryHandler) CreateStory(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Content == "" && req.ImageURL == "" && req.VideoURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Story content or media is required")
	}

	story, err := h.storyRepository.CreateStory(c.Request().Context(), id.UserID, req)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, story)
}

// DeleteStory deletes a story owned by the caller
func (h *StoryHandler) DeleteStory(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.storyRepository.DeleteStory(c.Request().Context(), c.Param("id"), id.UserID); err != nil {
		return deleteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Story deleted"})
}
