package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frello-ai/backend/internal/ai"
	"github.com/frello-ai/backend/internal/models"
)

// PlanService stores meal plans extracted from assistant replies.
type PlanService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPlanService creates a new PlanService instance.
func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db, now: time.Now}
}

// SavePlan persists the extracted plan and hides every previously visible
// plan of the user. Day one is aligned to the Monday of the current week so
// the calendar view starts on a week boundary.
func (s *PlanService) SavePlan(ctx context.Context, userID uuid.UUID, messageID *uuid.UUID, plan *ai.ParsedPlan, mealFrequency int) (*models.MealPlan, error) {
	startDate := mondayOf(s.now())

	record := &models.MealPlan{
		UserID:    userID,
		MessageID: messageID,
		StartDate: startDate,
		DaysCount: len(plan.Days),
		DailyNorm: plan.DailyNorm,
		Visible:   true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.MealPlan{}).
			Where("user_id = ? AND visible = ?", userID, true).
			Update("visible", false).Error; err != nil {
			return err
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		for dayIndex, day := range plan.Days {
			for _, meal := range day.Meals {
				if strings.TrimSpace(meal.RecipeName) == "" {
					continue
				}
				entry := models.MealPlanEntry{
					PlanID:      record.ID,
					DayIndex:    dayIndex,
					Date:        startDate.AddDate(0, 0, dayIndex),
					MealType:    canonicalMealType(meal.Type),
					DishName:    meal.RecipeName,
					Calories:    meal.Calories,
					PortionSize: meal.PortionSize,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
				record.Entries = append(record.Entries, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetVisiblePlan returns the user's current plan with its entries.
func (s *PlanService) GetVisiblePlan(ctx context.Context, userID uuid.UUID) (*models.MealPlan, error) {
	var plan models.MealPlan
	err := s.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_index, created_at")
		}).
		Where("user_id = ? AND visible = ?", userID, true).
		Order("created_at DESC").
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// canonicalMealType collapses numbered snack overflow ("snack2", "snack3")
// into the plain snack slot. Custom slot keys are stored as produced.
func canonicalMealType(t ai.MealType) string {
	key := strings.ToLower(string(t))
	if strings.HasPrefix(key, "snack") {
		return "snack"
	}
	return key
}

func mondayOf(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday)
}
