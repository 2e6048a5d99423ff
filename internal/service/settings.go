package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frello-ai/backend/internal/models"
	"github.com/frello-ai/backend/internal/types"
)

// SettingsService owns the stored nutrition profiles.
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsService instance.
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// GetSettings returns the user's profile snapshot. A user without a stored
// profile gets an empty snapshot; the pipeline treats missing biometrics as
// "let the model estimate".
func (s *SettingsService) GetSettings(ctx context.Context, userID uuid.UUID) (*types.UserSettings, error) {
	var record models.UserSettings
	err := s.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &types.UserSettings{UserID: userID}, nil
		}
		return nil, err
	}
	return record.Snapshot(), nil
}

// UpdateSettings creates or replaces the user's profile row.
func (s *SettingsService) UpdateSettings(ctx context.Context, userID uuid.UUID, settings *models.UserSettings) (*models.UserSettings, error) {
	settings.UserID = userID

	var existing models.UserSettings
	err := s.db.WithContext(ctx).First(&existing, "user_id = ?", userID).Error
	switch {
	case err == nil:
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
		if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(settings).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return settings, nil
}
