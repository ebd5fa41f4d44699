package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/brokerage-backend/internal/http/response"
	"github.com/yungbote/brokerage-backend/internal/platform/apierr"
	"github.com/yungbote/brokerage-backend/internal/platform/ctxutil"
	"github.com/yungbote/brokerage-backend/internal/services"
)

type TransactionActionHandler struct {
	actions services.TransactionActionService
	catalog services.ActionCatalogService
}

func NewTransactionActionHandler(actions services.TransactionActionService, catalog services.ActionCatalogService) *TransactionActionHandler {
	return &TransactionActionHandler{actions: actions, catalog: catalog}
}

type executeActionBody struct {
	ActionCode      string         `json:"action_code" binding:"required"`
	Data            map[string]any `json:"data"`
	Notes           *string        `json:"notes"`
	ExpectedVersion *int           `json:"expected_version"`
}

// GET /api/transactions/:id/actions/available
func (h *TransactionActionHandler) AvailableActions(c *gin.Context) {
	id, err := transactionIDParam(c)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	var roles []string
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		roles = rd.Roles
	}
	defs, err := h.catalog.AvailableActions(c.Request.Context(), id, roles)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"actions": defs})
}

// POST /api/transactions/:id/actions
func (h *TransactionActionHandler) ExecuteAction(c *gin.Context) {
	id, err := transactionIDParam(c)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	var body executeActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.actions.ExecuteAction(c.Request.Context(), services.ExecuteActionRequest{
		TransactionID:   id,
		ActionCode:      body.ActionCode,
		Data:            body.Data,
		Notes:           body.Notes,
		ExpectedVersion: body.ExpectedVersion,
	})
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/transactions/:id/actions/history
func (h *TransactionActionHandler) History(c *gin.Context) {
	id, err := transactionIDParam(c)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	rows, err := h.actions.History(c.Request.Context(), id)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": rows})
}

// GET /api/actions
func (h *TransactionActionHandler) Catalog(c *gin.Context) {
	defs, err := h.catalog.Catalog(c.Request.Context())
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"actions": defs})
}

// POST /api/admin/actions/seed
func (h *TransactionActionHandler) SeedActions(c *gin.Context) {
	if !ctxutil.GetRequestData(c.Request.Context()).HasRole(services.RoleAdmin) {
		response.RespondFailure(c, apierr.Forbidden("forbidden", nil))
		return
	}
	n, err := h.catalog.SeedActions(c.Request.Context())
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": n})
}
