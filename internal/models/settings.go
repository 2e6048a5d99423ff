package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frello-ai/backend/internal/types"
)

// UserSettings is the stored nutrition profile. Multi-select fields are kept
// as JSON columns so the row survives both the postgres and the in-memory
// sqlite driver unchanged.
type UserSettings struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Gender    string     `gorm:"size:20" json:"gender"`
	HeightCm  float64    `json:"height"`
	WeightKg  float64    `json:"weight"`
	BirthDate *time.Time `json:"birth_date"`

	ActivityLevel []string `gorm:"serializer:json" json:"activity_level"`
	NutritionGoal []string `gorm:"serializer:json" json:"nutrition_goal"`
	MealFrequency int      `json:"meal_frequency"`

	Allergies            []string `gorm:"serializer:json" json:"allergies"`
	DietType             []string `gorm:"serializer:json" json:"diet_type"`
	PersonalRestrictions []string `gorm:"serializer:json" json:"personal_restrictions"`
	FavoriteFoods        []string `gorm:"serializer:json" json:"favorite_foods"`
	CookingPreferences   []string `gorm:"serializer:json" json:"cooking_preferences"`
	MealTimePreferences  []string `gorm:"serializer:json" json:"meal_time_preferences"`
	NutritionPreferences []string `gorm:"serializer:json" json:"nutrition_preferences"`
	BudgetPreferences    []string `gorm:"serializer:json" json:"budget_preferences"`
	CookingExperience    []string `gorm:"serializer:json" json:"cooking_experience"`

	CustomInputs     map[string]map[string]string `gorm:"serializer:json" json:"custom_inputs"`
	CustomMealLabels []string                     `gorm:"serializer:json" json:"custom_meal_labels"`
	FlexibleDays     []string                     `gorm:"serializer:json" json:"flexible_days"`
	CurrentProducts  string                       `gorm:"type:text" json:"current_products"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

func (s *UserSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Snapshot converts the stored row into the read-only profile the pipeline
// consumes.
func (s *UserSettings) Snapshot() *types.UserSettings {
	if s == nil {
		return nil
	}
	return &types.UserSettings{
		UserID:               s.UserID,
		Gender:               s.Gender,
		HeightCm:             s.HeightCm,
		WeightKg:             s.WeightKg,
		BirthDate:            s.BirthDate,
		ActivityLevel:        s.ActivityLevel,
		NutritionGoal:        s.NutritionGoal,
		MealFrequency:        s.MealFrequency,
		Allergies:            s.Allergies,
		DietType:             s.DietType,
		PersonalRestrictions: s.PersonalRestrictions,
		FavoriteFoods:        s.FavoriteFoods,
		CookingPreferences:   s.CookingPreferences,
		MealTimePreferences:  s.MealTimePreferences,
		NutritionPreferences: s.NutritionPreferences,
		BudgetPreferences:    s.BudgetPreferences,
		CookingExperience:    s.CookingExperience,
		CustomInputs:         s.CustomInputs,
		CustomMealLabels:     s.CustomMealLabels,
		FlexibleDays:         s.FlexibleDays,
		CurrentProducts:      s.CurrentProducts,
	}
}
