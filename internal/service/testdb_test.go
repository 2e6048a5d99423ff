package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frello-ai/backend/internal/ai"
	"github.com/frello-ai/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Message{},
		&models.Dish{},
		&models.MealPlan{},
		&models.MealPlanEntry{},
		&models.UserSettings{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := &models.User{Username: "testuser-" + uuid.NewString()[:8], Email: uuid.NewString() + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user.ID
}

// scriptedGateway returns canned replies in order, recording every request.
type scriptedGateway struct {
	replies []string
	errs    []error
	calls   [][]ai.ChatMessage
}

func (g *scriptedGateway) Fetch(ctx context.Context, messages []ai.ChatMessage, opts ai.FetchOptions) (string, error) {
	g.calls = append(g.calls, messages)
	idx := len(g.calls) - 1
	if idx < len(g.errs) && g.errs[idx] != nil {
		return "", g.errs[idx]
	}
	if idx < len(g.replies) {
		return g.replies[idx], nil
	}
	return "", ai.ErrEmptyResponse
}

// stubQuota optionally fails every consumption.
type stubQuota struct {
	err      error
	consumed int
}

func (q *stubQuota) Consume(ctx context.Context, userID uuid.UUID) error {
	q.consumed++
	return q.err
}

func (q *stubQuota) Remaining(ctx context.Context, userID uuid.UUID) (int, error) {
	return 10, nil
}
