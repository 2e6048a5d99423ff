package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frello-ai/backend/internal/ai"
	"github.com/frello-ai/backend/internal/service"
)

// statusForError maps service and pipeline errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotChatOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrQuotaExceeded), errors.Is(err, ai.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrNotAssistantMessage), errors.Is(err, service.ErrNotRegenerable),
		errors.Is(err, service.ErrAlreadyLiked), errors.Is(err, service.ErrNotFavoritable),
		errors.Is(err, ai.ErrMalformedRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrContentNotParsed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ai.ErrUnauthorized), errors.Is(err, ai.ErrUnconfigured),
		errors.Is(err, ai.ErrNotFound):
		return http.StatusBadGateway
	case errors.Is(err, ai.ErrUpstreamUnavailable), errors.Is(err, ai.ErrEmptyResponse),
		errors.Is(err, ai.ErrUpstreamErrorMessage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status with a JSON error body. Internal
// errors are not echoed back to the client.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}

// currentUserID extracts the authenticated user ID stored by the auth
// middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a UUID path parameter, answering 400 on malformed input.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
