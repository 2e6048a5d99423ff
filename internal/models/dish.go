package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dish is a saved recipe. The pair (user_id, name) is the upsert key: asking
// for the same dish again updates the stored macros instead of duplicating
// the row.
type Dish struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_dishes_user_name" json:"user_id"`
	Name        string         `gorm:"size:200;not null;uniqueIndex:idx_dishes_user_name" json:"name"`
	Calories    int            `gorm:"not null" json:"calories"`
	Proteins    float64        `json:"proteins"`
	Fats        float64        `json:"fats"`
	Carbs       float64        `json:"carbs"`
	PortionSize int            `json:"portion_size"`
	Ingredients string         `gorm:"type:text" json:"ingredients"`
	Instruction string         `gorm:"type:text" json:"instruction"`
	CookingTime int            `json:"cooking_time"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Dish) TableName() string {
	return "dishes"
}

func (d *Dish) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
