package router

import (
	"github.com/anonto42/linkup/backend/internal/handlers"
	"github.com/anonto42/linkup/backend/internal/middleware"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/anonto42/linkup/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	JWTSecret string
	Health    handlers.Pinger
	Firebase  middleware.TokenVerifier
	Storage   storage.Storage
	// UploadDir is served under /uploads when media is stored locally.
	UploadDir string

	Users       repositories.UserRepository
	Credentials repositories.CredentialRepository
	Posts       repositories.PostRepository
	Comments    repositories.CommentRepository
	Likes       repositories.LikeRepository
	Follows     repositories.FollowRepository
	Friendships repositories.FriendshipRepository
	Stories     repositories.StoryRepository
	Moderation  repositories.ModerationRepository
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	e.GET("/health", handlers.NewHealthHandler(d.Health).HealthCheck)
	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(d.Users, d.Credentials, d.JWTSecret)
	authHandler.RegisterAuthRoutes(e.Group("/api/auth"), middleware.FirebaseAuthMiddleware(d.Firebase))

	// --- Protected routes ---
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(d.JWTSecret), middleware.IdentityMiddleware(d.Users))

	authHandler.RegisterAccountRoutes(api)
	handlers.NewUserHandler(d.Users, d.Posts, d.Follows).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(d.Follows, d.Users).RegisterFollowRoutes(api)
	handlers.NewPostHandler(d.Posts).RegisterPostRoutes(api)
	handlers.NewLikeHandler(d.Likes).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(d.Comments).RegisterCommentRoutes(api)
	handlers.NewFriendshipHandler(d.Friendships, d.Users).RegisterFriendshipRoutes(api)
	handlers.NewStoryHandler(d.Stories).RegisterStoryRoutes(api)
	handlers.NewSearchHandler(d.Users, d.Posts).RegisterSearchRoutes(api)
	handlers.NewUploadHandler(d.Storage).RegisterUploadRoutes(api)

	admin := api.Group("/admin", middleware.AdminOnly())
	handlers.NewAdminHandler(d.Users, d.Posts, d.Comments, d.Stories, d.Moderation).RegisterAdminRoutes(admin)

	log.Info().Int("routes", len(e.Routes())).Msg("routes configured")
}
