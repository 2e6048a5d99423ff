package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frello-ai/backend/internal/ai"
	"github.com/frello-ai/backend/internal/models"
	"github.com/frello-ai/backend/internal/types"
)

// historyFetchLimit is how many stored turns are loaded per request; the
// prompt assembler applies its own tighter per-intent bounds on top.
const historyFetchLimit = 60

// regenerateTemperature raises sampling variety so a rebuilt plan actually
// differs from its predecessor.
const regenerateTemperature = 0.9

const underweightBMI = 18.5

// underweightCaution is returned instead of a deficit plan when the
// biometrics indicate underweight.
const underweightCaution = "Ваш индекс массы тела ниже нормы, поэтому я не могу составить план питания на дефицит калорий. " +
	"Рекомендую обратиться к врачу или диетологу: при сниженном весе питание подбирается индивидуально. " +
	"Если хотите, я помогу составить план для поддержания или набора веса — обновите цель в настройках профиля."

// defaultRegenerateRequest is used when the triggering user turn cannot be
// recovered from the chat.
const defaultRegenerateRequest = "Составь новый план питания"

// AssistantReply is what a pipeline run hands back to the transport layer.
type AssistantReply struct {
	Message     *models.Message   `json:"message"`
	UserMessage *models.Message   `json:"user_message,omitempty"`
	RequestType types.RequestType `json:"request_type"`
}

// AssistantService orchestrates the response pipeline: quota, intent
// classification, prompt assembly, the upstream fetch, extraction and
// persistence.
type AssistantService struct {
	gateway      ModelGateway
	chats        IChatService
	dishes       IDishService
	plans        IPlanService
	settings     ISettingsService
	quota        IQuotaService
	assembler    *ai.PromptAssembler
	planParser   *ai.PlanParser
	recipeParser *ai.RecipeParser
	motivator    *ai.Motivator
	logger       *zap.Logger
	now          func() time.Time
}

// NewAssistantService wires the pipeline together.
func NewAssistantService(
	gateway ModelGateway,
	chats IChatService,
	dishes IDishService,
	plans IPlanService,
	settings ISettingsService,
	quota IQuotaService,
	motivator *ai.Motivator,
	logger *zap.Logger,
) *AssistantService {
	return &AssistantService{
		gateway:      gateway,
		chats:        chats,
		dishes:       dishes,
		plans:        plans,
		settings:     settings,
		quota:        quota,
		assembler:    ai.NewPromptAssembler(logger),
		planParser:   ai.NewPlanParser(logger),
		recipeParser: ai.NewRecipeParser(logger),
		motivator:    motivator,
		logger:       logger,
		now:          time.Now,
	}
}

// GenerateResponse runs the full pipeline for a submitted chat message.
func (s *AssistantService) GenerateResponse(ctx context.Context, userID, chatID uuid.UUID, content string) (*AssistantReply, error) {
	chat, err := s.chats.GetChat(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.quota.Consume(ctx, userID); err != nil {
		return nil, err
	}

	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	userMsg := &models.Message{
		ChatID:  chat.ID,
		UserID:  userID,
		IsUser:  true,
		Content: content,
	}
	if err := s.chats.SaveMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	intent := ai.ClassifyIntent(content, false)
	s.logger.Info("classified request",
		zap.String("chat_id", chat.ID.String()),
		zap.String("request_type", string(intent)),
	)

	var reply *AssistantReply
	switch intent {
	case types.RequestTypeMealPlan:
		reply, err = s.respondWithPlan(ctx, userID, chat.ID, settings, history, content)
	case types.RequestTypeRecipe:
		reply, err = s.respondWithRecipe(ctx, userID, chat.ID, settings, content)
	default:
		reply, err = s.respondWithText(ctx, userID, chat.ID, settings, history, content)
	}
	if err != nil {
		return nil, err
	}
	reply.UserMessage = userMsg
	return reply, nil
}

// RegenerateResponse rebuilds the meal plan carried by an assistant message,
// replacing the message content in place.
func (s *AssistantService) RegenerateResponse(ctx context.Context, userID, messageID uuid.UUID) (*AssistantReply, error) {
	msg, err := s.chats.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != userID {
		return nil, ErrNotChatOwner
	}
	if msg.IsUser {
		return nil, ErrNotAssistantMessage
	}
	if msg.AIResponseType != types.RequestTypeMealPlan && msg.AIResponseType != types.RequestTypeRegenerationMealPlan {
		return nil, ErrNotRegenerable
	}
	if err := s.quota.Consume(ctx, userID); err != nil {
		return nil, err
	}

	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.loadHistory(ctx, msg.ChatID)
	if err != nil {
		return nil, err
	}

	content := defaultRegenerateRequest
	if trigger, err := s.chats.LatestUserMessageBefore(ctx, msg); err == nil && trigger != nil {
		content = trigger.Content
	}

	frequency := settings.MealFrequencyOrDefault()
	messages := s.assembler.AssembleRegeneratePlan(settings, history, content, frequency, s.now())

	raw, err := s.gateway.Fetch(ctx, messages, ai.FetchOptions{Temperature: regenerateTemperature})
	if err != nil {
		return nil, err
	}

	msg.RawContent = raw
	msg.AIResponseType = types.RequestTypeRegenerationMealPlan
	msg.PlanID = nil

	plan, ok := s.planParser.Parse(raw, frequency, ai.ParseRequestedDays(content), settings.CustomMealLabels)
	if !ok {
		msg.Content = ai.StripFormatting(raw)
	} else {
		msg.Content = s.decorate(ai.FormatPlanOutput(plan, frequency, settings.CustomMealLabels))
		s.persistPlan(ctx, userID, msg, plan, frequency)
	}

	if err := s.chats.UpdateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return &AssistantReply{Message: msg, RequestType: types.RequestTypeRegenerationMealPlan}, nil
}

// ToggleFavorite marks a plan or recipe reply as liked. The stored raw
// reply is parsed again so the favorite always points at a persisted dish
// or plan, not just at chat text.
func (s *AssistantService) ToggleFavorite(ctx context.Context, userID, messageID uuid.UUID) (*models.Message, error) {
	msg, err := s.chats.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != userID {
		return nil, ErrNotChatOwner
	}
	if msg.IsUser {
		return nil, ErrNotAssistantMessage
	}
	if msg.IsLiked {
		return nil, ErrAlreadyLiked
	}

	switch msg.AIResponseType {
	case types.RequestTypeRecipe:
		dish, ok := s.recipeParser.Parse(msg.RawContent)
		if !ok {
			s.logger.Warn("favorited recipe reply did not parse",
				zap.String("message_id", msg.ID.String()))
			return nil, ErrContentNotParsed
		}
		record, err := s.dishes.Upsert(ctx, userID, dish)
		if err != nil {
			return nil, err
		}
		msg.DishID = &record.ID

	case types.RequestTypeMealPlan, types.RequestTypeRegenerationMealPlan:
		settings, err := s.settings.GetSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		frequency := settings.MealFrequencyOrDefault()
		plan, ok := s.planParser.Parse(msg.RawContent, frequency, 0, settings.CustomMealLabels)
		if !ok {
			s.logger.Warn("favorited plan reply did not parse",
				zap.String("message_id", msg.ID.String()))
			return nil, ErrContentNotParsed
		}
		record, err := s.plans.SavePlan(ctx, userID, &msg.ID, plan, frequency)
		if err != nil {
			return nil, err
		}
		msg.PlanID = &record.ID

	default:
		return nil, ErrNotFavoritable
	}

	msg.IsLiked = true
	if err := s.chats.UpdateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *AssistantService) respondWithText(ctx context.Context, userID, chatID uuid.UUID, settings *types.UserSettings, history []ai.HistoryMessage, content string) (*AssistantReply, error) {
	messages := s.assembler.AssembleText(settings, history, content, s.now())
	raw, err := s.gateway.Fetch(ctx, messages, ai.FetchOptions{})
	if err != nil {
		return nil, err
	}
	return s.saveReply(ctx, userID, chatID, ai.StripFormatting(raw), raw, types.RequestTypeText, nil)
}

func (s *AssistantService) respondWithPlan(ctx context.Context, userID, chatID uuid.UUID, settings *types.UserSettings, history []ai.HistoryMessage, content string) (*AssistantReply, error) {
	if s.isUnderweightDeficitRequest(settings) {
		return s.saveReply(ctx, userID, chatID, underweightCaution, "", types.RequestTypeText, nil)
	}

	frequency := settings.MealFrequencyOrDefault()
	target, hasTarget := ai.CalculateTargetCalories(settings, s.now())

	messages := s.assembler.AssemblePlan(settings, history, content, frequency, target, hasTarget, s.now())
	raw, err := s.gateway.Fetch(ctx, messages, ai.FetchOptions{})
	if err != nil {
		return nil, err
	}

	plan, ok := s.planParser.Parse(raw, frequency, ai.ParseRequestedDays(content), settings.CustomMealLabels)
	if !ok {
		s.logger.Warn("plan reply fell back to raw text", zap.String("chat_id", chatID.String()))
		return s.saveReply(ctx, userID, chatID, ai.StripFormatting(raw), raw, types.RequestTypeMealPlan, nil)
	}
	if plan.DailyNorm == 0 && hasTarget {
		plan.DailyNorm = target
	}

	text := s.decorate(ai.FormatPlanOutput(plan, frequency, settings.CustomMealLabels))
	reply, err := s.saveReply(ctx, userID, chatID, text, raw, types.RequestTypeMealPlan, nil)
	if err != nil {
		return nil, err
	}

	s.persistPlan(ctx, userID, reply.Message, plan, frequency)
	if reply.Message.PlanID != nil {
		if err := s.chats.UpdateMessage(ctx, reply.Message); err != nil {
			s.logger.Error("failed to link plan to message", zap.Error(err))
		}
	}
	return reply, nil
}

func (s *AssistantService) respondWithRecipe(ctx context.Context, userID, chatID uuid.UUID, settings *types.UserSettings, content string) (*AssistantReply, error) {
	messages := s.assembler.AssembleRecipe(settings, content, "", 0, s.now())
	raw, err := s.gateway.Fetch(ctx, messages, ai.FetchOptions{})
	if err != nil {
		return nil, err
	}

	dish, ok := s.recipeParser.Parse(raw)
	if !ok {
		s.logger.Warn("recipe reply fell back to raw text", zap.String("chat_id", chatID.String()))
		return s.saveReply(ctx, userID, chatID, ai.StripFormatting(raw), raw, types.RequestTypeRecipe, nil)
	}

	var dishID *uuid.UUID
	if record, err := s.dishes.Upsert(ctx, userID, dish); err != nil {
		s.logger.Error("failed to save dish", zap.Error(err), zap.String("name", dish.RecipeName))
	} else {
		dishID = &record.ID
	}

	return s.saveReply(ctx, userID, chatID, ai.FormatDishMessage(dish), raw, types.RequestTypeRecipe, dishID)
}

func (s *AssistantService) saveReply(ctx context.Context, userID, chatID uuid.UUID, content, raw string, requestType types.RequestType, dishID *uuid.UUID) (*AssistantReply, error) {
	msg := &models.Message{
		ChatID:         chatID,
		UserID:         userID,
		IsUser:         false,
		Content:        content,
		RawContent:     raw,
		AIResponseType: requestType,
		DishID:         dishID,
	}
	if err := s.chats.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	return &AssistantReply{Message: msg, RequestType: requestType}, nil
}

// persistPlan stores the extracted plan and links it to the message. Plan
// storage failures are logged but do not void the already generated reply.
func (s *AssistantService) persistPlan(ctx context.Context, userID uuid.UUID, msg *models.Message, plan *ai.ParsedPlan, frequency int) {
	record, err := s.plans.SavePlan(ctx, userID, &msg.ID, plan, frequency)
	if err != nil {
		s.logger.Error("failed to save meal plan", zap.Error(err))
		return
	}
	msg.PlanID = &record.ID
}

func (s *AssistantService) loadHistory(ctx context.Context, chatID uuid.UUID) ([]ai.HistoryMessage, error) {
	stored, err := s.chats.History(ctx, chatID, historyFetchLimit)
	if err != nil {
		return nil, err
	}
	history := make([]ai.HistoryMessage, 0, len(stored))
	for _, m := range stored {
		history = append(history, ai.HistoryMessage{
			IsUser:  m.IsUser,
			Content: m.Content,
			HasDish: m.DishID != nil,
		})
	}
	return history, nil
}

func (s *AssistantService) decorate(text string) string {
	if s.motivator == nil {
		return text
	}
	return s.motivator.Decorate(text)
}

// isUnderweightDeficitRequest blocks deficit plans for underweight users.
func (s *AssistantService) isUnderweightDeficitRequest(settings *types.UserSettings) bool {
	if settings == nil || settings.WeightKg <= 0 || settings.HeightCm <= 0 {
		return false
	}
	heightM := settings.HeightCm / 100
	bmi := settings.WeightKg / (heightM * heightM)
	if bmi >= underweightBMI {
		return false
	}
	if len(settings.NutritionGoal) == 0 {
		return true
	}
	goal := settings.NutritionGoal[0]
	return ai.IsWeightLossGoal(goal)
}
