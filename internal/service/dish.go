package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frello-ai/backend/internal/ai"
	"github.com/frello-ai/backend/internal/models"
)

// DishService stores recipes extracted from assistant replies.
type DishService struct {
	db *gorm.DB
}

// NewDishService creates a new DishService instance.
func NewDishService(db *gorm.DB) *DishService {
	return &DishService{db: db}
}

// Upsert saves an extracted recipe, updating the existing row when the user
// already has a dish with the same name.
func (s *DishService) Upsert(ctx context.Context, userID uuid.UUID, meal *ai.PlanMeal) (*models.Dish, error) {
	var dish models.Dish
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, meal.RecipeName).
		First(&dish).Error
	switch {
	case err == nil:
		applyMeal(&dish, meal)
		if err := s.db.WithContext(ctx).Save(&dish).Error; err != nil {
			return nil, err
		}
		return &dish, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		dish = models.Dish{UserID: userID, Name: meal.RecipeName}
		applyMeal(&dish, meal)
		if err := s.db.WithContext(ctx).Create(&dish).Error; err != nil {
			return nil, err
		}
		return &dish, nil
	default:
		return nil, err
	}
}

// GetDish retrieves a dish and verifies ownership.
func (s *DishService) GetDish(ctx context.Context, dishID, userID uuid.UUID) (*models.Dish, error) {
	var dish models.Dish
	err := s.db.WithContext(ctx).
		First(&dish, "id = ? AND user_id = ?", dishID, userID).Error
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

func applyMeal(dish *models.Dish, meal *ai.PlanMeal) {
	dish.Calories = meal.Calories
	dish.Proteins = meal.Proteins
	dish.Fats = meal.Fats
	dish.Carbs = meal.Carbs
	dish.PortionSize = meal.PortionSize
	dish.Ingredients = meal.Ingredients
	dish.Instruction = meal.Instruction
	dish.CookingTime = meal.CookingTime
}
