package service

import "errors"

var (
	// ErrQuotaExceeded means the user spent their daily assistant budget.
	ErrQuotaExceeded = errors.New("service: daily request quota exceeded")

	// ErrNotChatOwner means the chat exists but belongs to someone else.
	ErrNotChatOwner = errors.New("service: chat belongs to another user")

	// ErrNotAssistantMessage means the operation targets a message that was
	// not produced by the assistant.
	ErrNotAssistantMessage = errors.New("service: message is not an assistant reply")

	// ErrNotRegenerable means the message carries no meal plan to rebuild.
	ErrNotRegenerable = errors.New("service: message carries no meal plan")

	// ErrAlreadyLiked means the message is already in the favorites.
	ErrAlreadyLiked = errors.New("service: message already liked")

	// ErrNotFavoritable means the message carries neither a meal plan nor
	// a recipe, so there is nothing to favorite.
	ErrNotFavoritable = errors.New("service: message cannot be favorited")

	// ErrContentNotParsed means the stored raw reply no longer yields a
	// structured plan or recipe.
	ErrContentNotParsed = errors.New("service: stored reply could not be parsed")
)
