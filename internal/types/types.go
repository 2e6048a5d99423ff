package types

import (
	"time"

	"github.com/google/uuid"
)

// RequestType identifies which pipeline branch handles a chat message.
type RequestType string

const (
	RequestTypeText                 RequestType = "TEXT"
	RequestTypeMealPlan             RequestType = "MEAL_PLAN"
	RequestTypeRecipe               RequestType = "RECIPE"
	RequestTypeRegenerationMealPlan RequestType = "REGENERATION_MEAL_PLAN"
)

// UserSettings is a read-only snapshot of the user's nutrition profile.
// The assistant pipeline consumes it per request; it is owned and mutated
// by the user-settings service.
type UserSettings struct {
	UserID    uuid.UUID  `json:"user_id"`
	Gender    string     `json:"gender"`
	HeightCm  float64    `json:"height"`
	WeightKg  float64    `json:"weight"`
	BirthDate *time.Time `json:"birth_date"`

	ActivityLevel []string `json:"activity_level"`
	NutritionGoal []string `json:"nutrition_goal"`
	MealFrequency int      `json:"meal_frequency"`

	Allergies            []string `json:"allergies"`
	DietType             []string `json:"diet_type"`
	PersonalRestrictions []string `json:"personal_restrictions"`
	FavoriteFoods        []string `json:"favorite_foods"`
	CookingPreferences   []string `json:"cooking_preferences"`
	MealTimePreferences  []string `json:"meal_time_preferences"`
	NutritionPreferences []string `json:"nutrition_preferences"`
	BudgetPreferences    []string `json:"budget_preferences"`
	CookingExperience    []string `json:"cooking_experience"`

	// Free-text clarifications keyed by the selected category value,
	// grouped per field ("allergies", "favoriteFoods", ...).
	CustomInputs map[string]map[string]string `json:"custom_inputs"`

	CustomMealLabels []string `json:"custom_meal_labels"`
	FlexibleDays     []string `json:"flexible_days"`
	CurrentProducts  string   `json:"current_products"`
}

// MealFrequencyOrDefault clamps the configured meal frequency to at least one
// meal per day, defaulting to three when unset.
func (s *UserSettings) MealFrequencyOrDefault() int {
	if s == nil || s.MealFrequency < 1 {
		return 3
	}
	return s.MealFrequency
}
