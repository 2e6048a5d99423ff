package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frello-ai/backend/internal/types"
)

// Chat is one conversation thread between a user and the assistant.
type Chat struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string         `gorm:"size:200" json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Chat) TableName() string {
	return "chats"
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Message is a single chat turn. Assistant turns carry the displayed text in
// Content and the unprocessed model reply in RawContent; structured replies
// additionally link the extracted dish or plan.
type Message struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"chat_id"`
	UserID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	IsUser         bool              `gorm:"not null" json:"is_user"`
	Content        string            `gorm:"type:text;not null" json:"content"`
	RawContent     string            `gorm:"type:text" json:"-"`
	AIResponseType types.RequestType `gorm:"size:40" json:"ai_response_type,omitempty"`
	DishID         *uuid.UUID        `gorm:"type:uuid" json:"dish_id,omitempty"`
	PlanID         *uuid.UUID        `gorm:"type:uuid" json:"plan_id,omitempty"`
	IsLiked        bool              `gorm:"default:false" json:"is_liked"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
