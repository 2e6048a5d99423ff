package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/frello-ai/backend/internal/service"
)

// AssistantHandler exposes the response orchestration pipeline over HTTP.
type AssistantHandler struct {
	assistant service.IAssistantService
	quota     service.IQuotaService
}

// NewAssistantHandler creates a new AssistantHandler instance
func NewAssistantHandler(assistant service.IAssistantService, quota service.IQuotaService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, quota: quota}
}

// RegisterRoutes registers the assistant routes
func (h *AssistantHandler) RegisterRoutes(router *gin.RouterGroup) {
	assistant := router.Group("/assistant")
	{
		assistant.POST("/chat/:chatId", h.SendMessage)
		assistant.POST("/message/:messageId/regenerate", h.Regenerate)
		assistant.POST("/message/:messageId/favorite", h.ToggleFavorite)
		assistant.GET("/quota", h.Quota)
	}
}

// SendMessage runs a user message through the pipeline and returns the
// assistant reply.
func (h *AssistantHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "chatId")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must not be blank"})
		return
	}

	reply, err := h.assistant.GenerateResponse(c.Request.Context(), userID, chatID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// Regenerate replaces a previously generated meal plan with a new variant.
func (h *AssistantHandler) Regenerate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}

	reply, err := h.assistant.RegenerateResponse(c.Request.Context(), userID, messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// ToggleFavorite likes a plan or recipe reply, persisting the dish or plan
// extracted from its stored raw content.
func (h *AssistantHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}

	msg, err := h.assistant.ToggleFavorite(c.Request.Context(), userID, messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_liked": msg.IsLiked,
		"dish_id":  msg.DishID,
		"plan_id":  msg.PlanID,
	})
}

// Quota reports how many assistant requests the user has left today.
func (h *AssistantHandler) Quota(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	remaining, err := h.quota.Remaining(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}
