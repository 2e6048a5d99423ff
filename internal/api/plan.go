package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frello-ai/backend/internal/service"
)

// PlanHandler serves extracted meal plans and dishes.
type PlanHandler struct {
	plans  service.IPlanService
	dishes service.IDishService
}

// NewPlanHandler creates a new PlanHandler instance
func NewPlanHandler(plans service.IPlanService, dishes service.IDishService) *PlanHandler {
	return &PlanHandler{plans: plans, dishes: dishes}
}

// RegisterRoutes registers the plan and dish routes
func (h *PlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/plans/current", h.CurrentPlan)
	router.GET("/dishes/:dishId", h.GetDish)
}

// CurrentPlan returns the user's visible meal plan with its entries.
func (h *PlanHandler) CurrentPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	plan, err := h.plans.GetVisiblePlan(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// GetDish returns a stored dish by ID.
func (h *PlanHandler) GetDish(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	dishID, ok := pathUUID(c, "dishId")
	if !ok {
		return
	}

	dish, err := h.dishes.GetDish(c.Request.Context(), dishID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dish)
}
