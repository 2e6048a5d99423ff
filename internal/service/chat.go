package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frello-ai/backend/internal/models"
)

// ChatService handles conversation threads and message persistence.
type ChatService struct {
	db *gorm.DB
}

// NewChatService creates a new ChatService instance.
func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// CreateChat opens a new conversation thread.
func (s *ChatService) CreateChat(ctx context.Context, userID uuid.UUID, title string) (*models.Chat, error) {
	chat := &models.Chat{UserID: userID, Title: title}
	if err := s.db.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, err
	}
	return chat, nil
}

// GetChat retrieves a chat and verifies ownership.
func (s *ChatService) GetChat(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := s.db.WithContext(ctx).First(&chat, "id = ?", chatID).Error; err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, ErrNotChatOwner
	}
	return &chat, nil
}

// ListChats returns the user's chats, newest first.
func (s *ChatService) ListChats(ctx context.Context, userID uuid.UUID) ([]*models.Chat, error) {
	var chats []models.Chat
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	result := make([]*models.Chat, len(chats))
	for i := range chats {
		result[i] = &chats[i]
	}
	return result, nil
}

// History returns the latest messages of a chat in chronological order.
func (s *ChatService) History(ctx context.Context, chatID uuid.UUID, limit int) ([]models.Message, error) {
	var messages []models.Message
	query := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	// Flip the newest-first page back into reading order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// SaveMessage persists a chat turn and bumps the thread's updated_at.
func (s *ChatService) SaveMessage(ctx context.Context, msg *models.Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Chat{}).
			Where("id = ?", msg.ChatID).
			Update("updated_at", tx.NowFunc()).Error
	})
}

// GetMessage retrieves a message by ID.
func (s *ChatService) GetMessage(ctx context.Context, messageID uuid.UUID) (*models.Message, error) {
	var msg models.Message
	if err := s.db.WithContext(ctx).First(&msg, "id = ?", messageID).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateMessage saves modified message fields.
func (s *ChatService) UpdateMessage(ctx context.Context, msg *models.Message) error {
	return s.db.WithContext(ctx).Save(msg).Error
}

// LatestUserMessageBefore finds the most recent user turn submitted before
// the given message; it is the request a regeneration rebuilds from.
func (s *ChatService) LatestUserMessageBefore(ctx context.Context, msg *models.Message) (*models.Message, error) {
	var prev models.Message
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND is_user = ? AND created_at <= ? AND id <> ?",
			msg.ChatID, true, msg.CreatedAt, msg.ID).
		Order("created_at DESC").
		First(&prev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prev, nil
}
