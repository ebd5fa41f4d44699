package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/brokerage-backend/internal/http/response"
	"github.com/yungbote/brokerage-backend/internal/services"
)

type GuidedStepsHandler struct {
	steps services.GuidedStepsService
}

func NewGuidedStepsHandler(steps services.GuidedStepsService) *GuidedStepsHandler {
	return &GuidedStepsHandler{steps: steps}
}

type toggleBody struct {
	Completed *bool `json:"completed" binding:"required"`
}

// GET /api/transactions/:id/steps
func (h *GuidedStepsHandler) GetSteps(c *gin.Context) {
	id, err := transactionIDParam(c)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	view, err := h.steps.GuidedSteps(c.Request.Context(), id)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/transactions/:id/steps/actions/:code
func (h *GuidedStepsHandler) ToggleAction(c *gin.Context) {
	id, completed, ok := h.toggleInput(c)
	if !ok {
		return
	}
	items, err := h.steps.ToggleAction(c.Request.Context(), id, c.Param("code"), completed)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"completed_actions": items})
}

// POST /api/transactions/:id/steps/:code
func (h *GuidedStepsHandler) ToggleStep(c *gin.Context) {
	id, completed, ok := h.toggleInput(c)
	if !ok {
		return
	}
	items, err := h.steps.ToggleStep(c.Request.Context(), id, c.Param("code"), completed)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"completed_steps": items})
}

func (h *GuidedStepsHandler) toggleInput(c *gin.Context) (uint, bool, bool) {
	id, err := transactionIDParam(c)
	if err != nil {
		response.RespondFailure(c, err)
		return 0, false, false
	}
	var body toggleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return 0, false, false
	}
	return id, *body.Completed, true
}
