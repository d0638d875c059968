package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newModerationRepo(t *testing.T) *PostgresModerationRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ModerationAction{}))
	return NewPostgresModerationRepository(db)
}

func TestModerationRecordAndList(t *testing.T) {
	repo := newModerationRepo(t)
	ctx := context.Background()

	for i, target := range []string{"u1", "u2", "u3"} {
		err := repo.RecordAction(ctx, &models.ModerationAction{
			AdminID:    "admin",
			Action:     models.ActionSuspendUser,
			TargetType: "user",
			TargetID:   target,
			Reason:     fmt.Sprintf("reason %d", i),
		})
		require.NoError(t, err)
	}

	actions, err := repo.ListRecentActions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "u3", actions[0].TargetID)
	assert.Equal(t, "u2", actions[1].TargetID)
	assert.False(t, actions[0].CreatedAt.IsZero())
}

func TestModerationRecordValidates(t *testing.T) {
	repo := newModerationRepo(t)
	err := repo.RecordAction(context.Background(), &models.ModerationAction{Action: models.ActionBanUser})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNopModerationRepository(t *testing.T) {
	var repo ModerationRepository = NopModerationRepository{}
	require.NoError(t, repo.RecordAction(context.Background(), &models.ModerationAction{}))
	actions, err := repo.ListRecentActions(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
