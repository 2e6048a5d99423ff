package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealPlan is a stored multi-day plan. Only one plan per user is visible at
// a time; generating a new one hides its predecessors.
type MealPlan struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	MessageID *uuid.UUID      `gorm:"type:uuid" json:"message_id,omitempty"`
	StartDate time.Time       `gorm:"not null" json:"start_date"`
	DaysCount int             `gorm:"not null" json:"days_count"`
	DailyNorm int             `json:"daily_norm"`
	Visible   bool            `gorm:"default:true;index" json:"visible"`
	Entries   []MealPlanEntry `gorm:"foreignKey:PlanID" json:"entries,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (MealPlan) TableName() string {
	return "meal_plans"
}

func (p *MealPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// MealPlanEntry is one meal slot of one plan day. MealType is the canonical
// slot key; numbered snack overflow collapses to "snack" before storage.
type MealPlanEntry struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"plan_id"`
	DayIndex    int            `gorm:"not null" json:"day_index"`
	Date        time.Time      `gorm:"not null" json:"date"`
	MealType    string         `gorm:"size:20;not null" json:"meal_type"`
	DishName    string         `gorm:"size:200;not null" json:"dish_name"`
	Calories    int            `gorm:"not null" json:"calories"`
	PortionSize int            `json:"portion_size"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (MealPlanEntry) TableName() string {
	return "meal_plan_entries"
}

func (e *MealPlanEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
