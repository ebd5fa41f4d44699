package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/brokerage-backend/internal/data/repos"
	types "github.com/yungbote/brokerage-backend/internal/domain"
	domainagg "github.com/yungbote/brokerage-backend/internal/domain/aggregates"
	"github.com/yungbote/brokerage-backend/internal/platform/ctxutil"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

type ExecuteActionRequest struct {
	TransactionID uint           `json:"transaction_id"`
	ActionCode    string         `json:"action_code"`
	Data          map[string]any `json:"data"`
	Notes         *string        `json:"notes"`
	// ExpectedVersion, when set, rejects the call with a conflict unless the
	// transaction is still at that version.
	ExpectedVersion *int `json:"expected_version,omitempty"`
}

type ExecuteActionResponse struct {
	Success        bool                `json:"success"`
	CompletionID   uint                `json:"completion_id"`
	Completion     ActionHistoryEntry  `json:"completion"`
	PreviousStatus string              `json:"previous_status"`
	NewStatus      string              `json:"new_status"`
	Deadline       *domainagg.Deadline `json:"deadline,omitempty"`
	Version        int                 `json:"version"`
	ActionCount    int                 `json:"action_count"`
	IntentIDs      []uint              `json:"intents"`
}

// ActionHistoryEntry is one ledger row enriched for display.
type ActionHistoryEntry struct {
	ID              uint            `json:"id"`
	TransactionID   uint            `json:"transaction_id"`
	ActionCode      string          `json:"action_code"`
	ActionName      string          `json:"action_name,omitempty"`
	CompletedBy     uuid.UUID       `json:"completed_by"`
	CompletedByName string          `json:"completed_by_name,omitempty"`
	CompletedAt     time.Time       `json:"completed_at"`
	Data            json.RawMessage `json:"data"`
	Notes           *string         `json:"notes,omitempty"`
	PreviousStatus  string          `json:"previous_status"`
	NewStatus       string          `json:"new_status"`
}

type TransactionActionService interface {
	ExecuteAction(ctx context.Context, req ExecuteActionRequest) (*ExecuteActionResponse, error)
	History(ctx context.Context, transactionID uint) ([]ActionHistoryEntry, error)
}

type transactionActionService struct {
	db           *gorm.DB
	log          *logger.Logger
	engine       domainagg.TransactionActionAggregate
	transactions repos.TransactionRepo
	definitions  repos.ActionDefinitionRepo
	completions  repos.ActionCompletionRepo
	users        repos.UserRepo
}

func NewTransactionActionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	engine domainagg.TransactionActionAggregate,
	transactions repos.TransactionRepo,
	definitions repos.ActionDefinitionRepo,
	completions repos.ActionCompletionRepo,
	users repos.UserRepo,
) TransactionActionService {
	return &transactionActionService{
		db:           db,
		log:          baseLog.With("service", "TransactionActionService"),
		engine:       engine,
		transactions: transactions,
		definitions:  definitions,
		completions:  completions,
		users:        users,
	}
}

// ExecuteAction runs the action on behalf of the authenticated actor found in ctx.
func (s *transactionActionService) ExecuteAction(ctx context.Context, req ExecuteActionRequest) (*ExecuteActionResponse, error) {
	if s == nil || s.engine == nil {
		return nil, fmt.Errorf("transaction action service not configured")
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		s.log.Warn("Request data not set in context")
		return nil, fmt.Errorf("request data not set in context")
	}

	in := domainagg.ExecuteActionInput{
		TransactionID:   req.TransactionID,
		ActionCode:      strings.TrimSpace(req.ActionCode),
		ActorID:         rd.UserID,
		ActorRoles:      rd.Roles,
		Data:            req.Data,
		Notes:           req.Notes,
		IPAddress:       nonEmpty(rd.IPAddress),
		UserAgent:       nonEmpty(rd.UserAgent),
		ExpectedVersion: req.ExpectedVersion,
	}
	res, err := s.engine.ExecuteAction(ctx, in)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(orEmptyObject(req.Data))
	s.log.Info("Action executed",
		"transaction_id", res.TransactionID,
		"action_code", res.ActionCode,
		"previous_status", res.PreviousStatus,
		"new_status", res.NewStatus,
		"actor_id", rd.UserID.String(),
	)
	return &ExecuteActionResponse{
		Success:      true,
		CompletionID: res.ActionCompletionID,
		Completion: ActionHistoryEntry{
			ID:             res.ActionCompletionID,
			TransactionID:  res.TransactionID,
			ActionCode:     res.ActionCode,
			CompletedBy:    rd.UserID,
			CompletedAt:    res.CompletedAt,
			Data:           data,
			Notes:          trimmedNotes(req.Notes),
			PreviousStatus: res.PreviousStatus,
			NewStatus:      res.NewStatus,
		},
		PreviousStatus: res.PreviousStatus,
		NewStatus:      res.NewStatus,
		Deadline:       res.Deadline,
		Version:        res.Version,
		ActionCount:    res.ActionCount,
		IntentIDs:      orEmptyIDs(res.IntentIDs),
	}, nil
}

func (s *transactionActionService) History(ctx context.Context, transactionID uint) ([]ActionHistoryEntry, error) {
	const op = "TransactionAction.History"
	if s == nil || s.transactions == nil || s.completions == nil {
		return nil, fmt.Errorf("transaction action service not configured")
	}
	dbc := dbctx.Context{Ctx: ctx}
	trx, err := s.transactions.GetByID(dbc, transactionID)
	if err != nil {
		return nil, err
	}
	if trx == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "Transaction introuvable", nil)
	}

	rows, err := s.completions.ListByTransactionID(dbc, transactionID)
	if err != nil {
		return nil, err
	}
	out := make([]ActionHistoryEntry, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	names := s.actionNames(dbc, rows)
	people := s.actorNames(ctx, rows)
	for _, row := range rows {
		data := json.RawMessage(row.Data)
		if len(data) == 0 {
			data = json.RawMessage("{}")
		}
		out = append(out, ActionHistoryEntry{
			ID:              row.ID,
			TransactionID:   row.TransactionID,
			ActionCode:      row.ActionCode,
			ActionName:      names[row.ActionCode],
			CompletedBy:     row.CompletedBy,
			CompletedByName: people[row.CompletedBy],
			CompletedAt:     row.CompletedAt,
			Data:            data,
			Notes:           row.Notes,
			PreviousStatus:  string(row.PreviousStatus),
			NewStatus:       string(row.NewStatus),
		})
	}
	return out, nil
}

// actionNames resolves display names, inactive definitions included. A
// lookup failure only drops the enrichment.
func (s *transactionActionService) actionNames(dbc dbctx.Context, rows []*types.ActionCompletion) map[string]string {
	out := map[string]string{}
	if s.definitions == nil {
		return out
	}
	seen := map[string]bool{}
	codes := make([]string, 0, len(rows))
	for _, r := range rows {
		if !seen[r.ActionCode] {
			seen[r.ActionCode] = true
			codes = append(codes, r.ActionCode)
		}
	}
	defs, err := s.definitions.GetByCodes(dbc, codes)
	if err != nil {
		s.log.Warn("Action name lookup failed", "error", err)
		return out
	}
	for _, d := range defs {
		out[d.Code] = d.Name
	}
	return out
}

func (s *transactionActionService) actorNames(ctx context.Context, rows []*types.ActionCompletion) map[uuid.UUID]string {
	if s.users == nil {
		return map[uuid.UUID]string{}
	}
	seen := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		if r.CompletedBy != uuid.Nil && !seen[r.CompletedBy] {
			seen[r.CompletedBy] = true
			ids = append(ids, r.CompletedBy)
		}
	}
	names, err := s.users.DisplayNames(ctx, s.db, ids)
	if err != nil {
		s.log.Warn("Actor name lookup failed", "error", err)
		return map[uuid.UUID]string{}
	}
	return names
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func trimmedNotes(s *string) *string {
	if s == nil {
		return nil
	}
	return nonEmpty(*s)
}

func orEmptyObject(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func orEmptyIDs(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}
