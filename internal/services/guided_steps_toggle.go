package services

import (
	"context"
	"fmt"

	domainagg "github.com/yungbote/brokerage-backend/internal/domain/aggregates"
)

// ToggleAction adds or removes a wizard action code. It does not execute
// the engine action of the same name.
func (s *guidedStepsService) ToggleAction(ctx context.Context, transactionID uint, actionCode string, completed bool) ([]string, error) {
	return s.toggle(ctx, domainagg.ChecklistAction, transactionID, actionCode, completed)
}

// ToggleStep adds or removes a wizard step code.
func (s *guidedStepsService) ToggleStep(ctx context.Context, transactionID uint, stepCode string, completed bool) ([]string, error) {
	return s.toggle(ctx, domainagg.ChecklistStep, transactionID, stepCode, completed)
}

func (s *guidedStepsService) toggle(ctx context.Context, kind domainagg.ChecklistKind, transactionID uint, code string, completed bool) ([]string, error) {
	if s == nil || s.checklist == nil || s.catalog == nil {
		return nil, fmt.Errorf("guided steps service not configured")
	}
	known := s.catalog.ActionCodes()
	if kind == domainagg.ChecklistStep {
		known = s.catalog.StepCodes()
	}
	res, err := s.checklist.ToggleChecklistItem(ctx, domainagg.ToggleChecklistInput{
		TransactionID: transactionID,
		Kind:          kind,
		Code:          code,
		Completed:     completed,
		KnownCodes:    known,
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("Checklist toggled",
		"transaction_id", transactionID,
		"kind", string(kind),
		"code", res.Code,
		"completed", completed,
	)
	return res.Items, nil
}
