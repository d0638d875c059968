package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/anonto42/linkup/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves the moderation dashboard
type AdminHandler struct {
	userRepository       repositories.UserRepository
	postRepository       repositories.PostRepository
	commentRepository    repositories.CommentRepository
	storyRepository      repositories.StoryRepository
	moderationRepository repositories.ModerationRepository
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	storyRepo repositories.StoryRepository,
	moderationRepo repositories.ModerationRepository,
) *AdminHandler {
	return &AdminHandler{
		userRepository:       userRepo,
		postRepository:       postRepo,
		commentRepository:    commentRepo,
		storyRepository:      storyRepo,
		moderationRepository: moderationRepo,
	}
}

// RegisterAdminRoutes registers admin routes; g must already require the admin role
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/stats", h.GetStats)
	g.GET("/users", h.ListUsers)
	g.POST("/users/:userId/suspend", h.setStatus(models.StatusSuspended, models.ActionSuspendUser))
	g.POST("/users/:userId/activate", h.setStatus(models.StatusActive, models.ActionActivateUser))
	g.POST("/users/:userId/ban", h.setStatus(models.StatusBanned, models.ActionBanUser))
	g.GET("/posts", h.ListPosts)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/stories/purge", h.PurgeStories)
	g.GET("/audit", h.ListAudit)
}

// GetStats returns the dashboard counters
func (h *AdminHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	var stats models.AdminStats
	counters := []struct {
		dst   *int64
		count func(context.Context) (int64, error)
	}{
		{&stats.TotalUsers, func(ctx context.Context) (int64, error) { return h.userRepository.CountUsers(ctx, "") }},
		{&stats.ActiveUsers, func(ctx context.Context) (int64, error) { return h.userRepository.CountUsers(ctx, models.StatusActive) }},
		{&stats.SuspendedUsers, func(ctx context.Context) (int64, error) { return h.userRepository.CountUsers(ctx, models.StatusSuspended) }},
		{&stats.BannedUsers, func(ctx context.Context) (int64, error) { return h.userRepository.CountUsers(ctx, models.StatusBanned) }},
		{&stats.TotalPosts, h.postRepository.CountPosts},
		{&stats.TotalComments, h.commentRepository.CountComments},
		{&stats.ActiveStories, h.storyRepository.CountActiveStories},
	}
	for _, counter := range counters {
		n, err := counter.count(ctx)
		if err != nil {
			return storeError(c, err)
		}
		*counter.dst = n
	}
	return c.JSON(http.StatusOK, stats)
}

// ListUsers returns one page of users, newest first
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	users, err := h.userRepository.ListUsers(c.Request().Context(), page)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) setStatus(status, action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		admin, err := currentUser(c)
		if err != nil {
			return err
		}
		target := c.Param("userId")
		if target == admin.UserID {
			return echo.NewHTTPError(http.StatusBadRequest, "You cannot change your own status")
		}
		var req models.ModerationRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}

		if err := h.userRepository.SetStatus(c.Request().Context(), target, status); err != nil {
			return storeError(c, err)
		}
		h.audit(c, admin.UserID, action, "user", target, req.Reason)
		return c.JSON(http.StatusOK, echo.Map{"userId": target, "status": status})
	}
}

// ListPosts returns one page of posts for review
func (h *AdminHandler) ListPosts(c echo.Context) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	posts, err := h.postRepository.ListPosts(c.Request().Context(), admin.UserID, page)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// DeletePost removes any post together with its comments
func (h *AdminHandler) DeletePost(c echo.Context) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := h.postRepository.AdminDeletePost(c.Request().Context(), id); err != nil {
		return deleteError(c, err)
	}
	h.audit(c, admin.UserID, models.ActionDeletePost, "post", id, c.QueryParam("reason"))
	return c.NoContent(http.StatusNoContent)
}

// PurgeStories deletes every expired story
func (h *AdminHandler) PurgeStories(c echo.Context) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	n, err := h.storyRepository.PurgeExpiredStories(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	h.audit(c, admin.UserID, models.ActionPurgeStories, "story", "*", strconv.FormatInt(n, 10)+" expired")
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// ListAudit returns the most recent moderation actions
func (h *AdminHandler) ListAudit(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	actions, err := h.moderationRepository.ListRecentActions(c.Request().Context(), limit)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, actions)
}

// audit records an admin action. The action already happened, so a failure
// here is logged and not returned.
func (h *AdminHandler) audit(c echo.Context, adminID, action, targetType, targetID, reason string) {
	ctx := c.Request().Context()
	err := h.moderationRepository.RecordAction(ctx, &models.ModerationAction{
		AdminID:    adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
	})
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("action", action).Str("target", targetID).Msg("audit record failed")
	}
}
