package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frello-ai/backend/internal/models"
)

func TestSettingsServiceEmptyProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingsService(db)
	ctx := context.Background()

	userID := createTestUser(t, db)

	snapshot, err := svc.GetSettings(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, userID, snapshot.UserID)
	assert.Zero(t, snapshot.WeightKg)
	assert.Equal(t, 3, snapshot.MealFrequencyOrDefault())
}

func TestSettingsServiceRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingsService(db)
	ctx := context.Background()

	userID := createTestUser(t, db)
	birth := time.Date(1996, 1, 15, 0, 0, 0, 0, time.UTC)

	saved, err := svc.UpdateSettings(ctx, userID, &models.UserSettings{
		Gender:        "Женский",
		HeightCm:      165,
		WeightKg:      60,
		BirthDate:     &birth,
		MealFrequency: 4,
		ActivityLevel: []string{"Средняя активность"},
		NutritionGoal: []string{"Похудение"},
		Allergies:     []string{"Орехи", "Мёд"},
		CustomInputs: map[string]map[string]string{
			"allergies": {"Орехи": "только арахис"},
		},
		FlexibleDays: []string{"Суббота"},
	})
	require.NoError(t, err)

	snapshot, err := svc.GetSettings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, snapshot.MealFrequency)
	assert.Equal(t, []string{"Орехи", "Мёд"}, snapshot.Allergies)
	assert.Equal(t, "только арахис", snapshot.CustomInputs["allergies"]["Орехи"])
	assert.Equal(t, []string{"Суббота"}, snapshot.FlexibleDays)

	// Updating replaces the same row.
	saved.WeightKg = 58
	_, err = svc.UpdateSettings(ctx, userID, saved)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.UserSettings{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	snapshot, err = svc.GetSettings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 58.0, snapshot.WeightKg)
}
