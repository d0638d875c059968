package config

import (
	"context"
	"fmt"

	"github.com/anonto42/linkup/backend/internal/database"
	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	Manager  *database.MongoManager
	Mongo    *mongo.Database
	Postgres *gorm.DB
}

// InitDB connects MongoDB, and PostgreSQL when configured. The audit log is
// the only PostgreSQL consumer, so a missing connection string is not fatal.
func InitDB(ctx context.Context, cfg *Config) (*DB, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}

	manager := database.NewMongoManager(cfg.MongoURI, cfg.MongoDB)
	mongoDB, err := manager.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := database.EnsureIndexes(ctx, mongoDB); err != nil {
		_ = manager.Close(ctx)
		return nil, err
	}

	db := &DB{Manager: manager, Mongo: mongoDB}
	if cfg.PostgresConnStr == "" {
		log.Warn().Msg("POSTGRES_CONN_STR not set, moderation audit log disabled")
		return db, nil
	}

	db.Postgres, err = initPostgres(cfg.PostgresConnStr)
	if err != nil {
		_ = manager.Close(ctx)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

// initPostgres opens the PostgreSQL connection using GORM and migrates the audit table
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.ModerationAction{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	log.Info().Msg("connected to PostgreSQL")
	return db, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB(ctx context.Context) {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			log.Error().Err(err).Msg("getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("closing PostgreSQL connection")
		} else {
			log.Info().Msg("PostgreSQL connection closed")
		}
	}

	if db.Manager != nil {
		if err := db.Manager.Close(ctx); err != nil {
			log.Error().Err(err).Msg("closing MongoDB connection")
		}
	}
}
