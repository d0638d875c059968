package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/linkup/backend/internal/middleware"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/anonto42/linkup/backend/internal/router"
	"github.com/anonto42/linkup/backend/internal/storage"
	"github.com/anonto42/linkup/backend/pkg/config"
	"github.com/anonto42/linkup/backend/pkg/firebase"
	"github.com/anonto42/linkup/backend/pkg/logger"
	"github.com/anonto42/linkup/backend/validators"
	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, ServiceName: "linkup-api"})
	log := logger.L()

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// run wires the server and blocks until a signal or a listener failure. The
// databases are closed on every return path.
func run(cfg *config.Config) error {
	log := logger.L()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize databases: %w", err)
	}
	defer db.CloseDB(context.Background())

	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		return fmt.Errorf("initialize Firebase: %w", err)
	}
	var verifier middleware.TokenVerifier
	if firebaseApp != nil {
		verifier = firebaseApp.AuthClient
	}

	media, uploadDir, err := newStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize media storage: %w", err)
	}

	var moderation repositories.ModerationRepository = repositories.NopModerationRepository{}
	if db.Postgres != nil {
		moderation = repositories.NewPostgresModerationRepository(db.Postgres)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, cfg)

	router.SetupRoutes(e, router.Deps{
		JWTSecret:   cfg.JWTSecret,
		Health:      db.Manager,
		Firebase:    verifier,
		Storage:     media,
		UploadDir:   uploadDir,
		Users:       repositories.NewMongoUserRepository(db.Mongo),
		Credentials: repositories.NewMongoCredentialRepository(db.Mongo),
		Posts:       repositories.NewMongoPostRepository(db.Mongo),
		Comments:    repositories.NewMongoCommentRepository(db.Mongo),
		Likes:       repositories.NewMongoLikeRepository(db.Mongo),
		Follows:     repositories.NewMongoFollowRepository(db.Mongo),
		Friendships: repositories.NewMongoFriendshipRepository(db.Mongo),
		Stories:     repositories.NewMongoStoryRepository(db.Mongo),
		Moderation:  moderation,
	})

	serveErr := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}

// newStorage picks S3 when a bucket is configured and the local disk otherwise.
// The returned directory is non-empty only for local storage.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, string, error) {
	if cfg.S3Bucket != "" {
		s, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.PublicBaseURL,
		})
		return s, "", err
	}
	s, err := storage.NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		return nil, "", err
	}
	return s, s.Dir(), nil
}
