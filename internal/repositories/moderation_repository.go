package repositories

import (
	"context"

	"github.com/anonto42/linkup/backend/internal/models"
	"gorm.io/gorm"
)

// ModerationRepository is the append-only audit trail of admin actions
type ModerationRepository interface {
	RecordAction(ctx context.Context, action *models.ModerationAction) error
	ListRecentActions(ctx context.Context, limit int) ([]models.ModerationAction, error)
}

// PostgresModerationRepository implements ModerationRepository for PostgreSQL
type PostgresModerationRepository struct {
	db *gorm.DB
}

// NewPostgresModerationRepository creates a new PostgresModerationRepository
func NewPostgresModerationRepository(db *gorm.DB) *PostgresModerationRepository {
	return &PostgresModerationRepository{db: db}
}

// RecordAction appends one audit entry
func (r *PostgresModerationRepository) RecordAction(ctx context.Context, action *models.ModerationAction) error {
	if action.AdminID == "" || action.Action == "" || action.TargetID == "" {
		return newValidationError("adminId", "action", "targetId")
	}
	if err := r.db.WithContext(ctx).Create(action).Error; err != nil {
		return persistenceError("record moderation action", err)
	}
	return nil
}

// ListRecentActions returns the newest audit entries first
func (r *PostgresModerationRepository) ListRecentActions(ctx context.Context, limit int) ([]models.ModerationAction, error) {
	if limit <= 0 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}
	var actions []models.ModerationAction
	err := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Limit(limit).Find(&actions).Error
	if err != nil {
		return nil, persistenceError("list moderation actions", err)
	}
	return actions, nil
}

// NopModerationRepository is used when no relational database is configured.
type NopModerationRepository struct{}

func (NopModerationRepository) RecordAction(context.Context, *models.ModerationAction) error {
	return nil
}

func (NopModerationRepository) ListRecentActions(context.Context, int) ([]models.ModerationAction, error) {
	return []models.ModerationAction{}, nil
}
