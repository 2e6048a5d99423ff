package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frello-ai/backend/internal/models"
	"github.com/frello-ai/backend/internal/service"
	"github.com/frello-ai/backend/internal/types"
)

type mockSettings struct {
	snapshot *types.UserSettings
	err      error

	lastUpdate *models.UserSettings
}

func (m *mockSettings) GetSettings(ctx context.Context, userID uuid.UUID) (*types.UserSettings, error) {
	return m.snapshot, m.err
}

func (m *mockSettings) UpdateSettings(ctx context.Context, userID uuid.UUID, settings *models.UserSettings) (*models.UserSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	settings.UserID = userID
	m.lastUpdate = settings
	return settings, nil
}

func newSettingsTestRouter(settings service.ISettingsService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	NewSettingsHandler(settings).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestGetSettings(t *testing.T) {
	snapshot := &types.UserSettings{
		Gender:        "женский",
		HeightCm:      165,
		WeightKg:      60,
		MealFrequency: 4,
		Allergies:     []string{"орехи"},
	}
	r := newSettingsTestRouter(&mockSettings{snapshot: snapshot}, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got types.UserSettings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "женский", got.Gender)
	assert.Equal(t, 4, got.MealFrequency)
	assert.Equal(t, []string{"орехи"}, got.Allergies)
}

func TestUpdateSettings(t *testing.T) {
	userID := uuid.New()
	mock := &mockSettings{}
	r := newSettingsTestRouter(mock, userID)

	body := `{"gender":"мужской","height":180,"weight":82,"meal_frequency":3,"nutrition_goal":["Похудение"]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.lastUpdate)
	assert.Equal(t, userID, mock.lastUpdate.UserID)
	assert.Equal(t, "мужской", mock.lastUpdate.Gender)
	assert.Equal(t, []string{"Похудение"}, mock.lastUpdate.NutritionGoal)
}

func TestUpdateSettingsRejectsMalformedBody(t *testing.T) {
	r := newSettingsTestRouter(&mockSettings{}, uuid.New())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"height":"tall"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
