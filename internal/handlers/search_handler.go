package handlers

import (
	"net/http"
	"strings"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const searchLimit = 20

// SearchHandler runs the regex search over users and posts
type SearchHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository) *SearchHandler {
	return &SearchHandler{userRepository: userRepo, postRepository: postRepo}
}

// RegisterSearchRoutes registers the search route
func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
}

// Search matches q against user names, emails, titles and post content
func (h *SearchHandler) Search(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	query := strings.TrimSpace(c.QueryParam("q"))
	result := models.SearchResult{Users: []models.User{}, Posts: []models.PostView{}, Query: query}
	if query == "" {
		return c.JSON(http.StatusOK, result)
	}

	ctx := c.Request().Context()
	if result.Users, err = h.userRepository.SearchUsers(ctx, query, searchLimit); err != nil {
		return storeError(c, err)
	}
	if result.Posts, err = h.postRepository.SearchPosts(ctx, query, id.UserID, searchLimit); err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
