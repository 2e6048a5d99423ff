package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/frello-ai/backend/internal/ai"
	"github.com/frello-ai/backend/internal/models"
	"github.com/frello-ai/backend/internal/types"
)

// ModelGateway abstracts the upstream completion API so the orchestrator can
// be tested against a scripted double.
type ModelGateway interface {
	Fetch(ctx context.Context, messages []ai.ChatMessage, opts ai.FetchOptions) (string, error)
}

// IQuotaService meters assistant requests per user per day.
type IQuotaService interface {
	Consume(ctx context.Context, userID uuid.UUID) error
	Remaining(ctx context.Context, userID uuid.UUID) (int, error)
}

// ISettingsService owns the nutrition profile rows.
type ISettingsService interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (*types.UserSettings, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, settings *models.UserSettings) (*models.UserSettings, error)
}

// IChatService owns conversation threads and their messages.
type IChatService interface {
	CreateChat(ctx context.Context, userID uuid.UUID, title string) (*models.Chat, error)
	GetChat(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]*models.Chat, error)
	History(ctx context.Context, chatID uuid.UUID, limit int) ([]models.Message, error)
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, messageID uuid.UUID) (*models.Message, error)
	UpdateMessage(ctx context.Context, msg *models.Message) error
	LatestUserMessageBefore(ctx context.Context, msg *models.Message) (*models.Message, error)
}

// IDishService stores extracted recipes.
type IDishService interface {
	Upsert(ctx context.Context, userID uuid.UUID, meal *ai.PlanMeal) (*models.Dish, error)
	GetDish(ctx context.Context, dishID, userID uuid.UUID) (*models.Dish, error)
}

// IPlanService stores extracted meal plans.
type IPlanService interface {
	SavePlan(ctx context.Context, userID uuid.UUID, messageID *uuid.UUID, plan *ai.ParsedPlan, mealFrequency int) (*models.MealPlan, error)
	GetVisiblePlan(ctx context.Context, userID uuid.UUID) (*models.MealPlan, error)
}

// IAssistantService is the response orchestration pipeline.
type IAssistantService interface {
	GenerateResponse(ctx context.Context, userID, chatID uuid.UUID, content string) (*AssistantReply, error)
	RegenerateResponse(ctx context.Context, userID, messageID uuid.UUID) (*AssistantReply, error)
	ToggleFavorite(ctx context.Context, userID, messageID uuid.UUID) (*models.Message, error)
}
