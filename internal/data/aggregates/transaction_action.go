package aggregates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/yungbote/brokerage-backend/internal/data/repos"
	types "github.com/yungbote/brokerage-backend/internal/domain"
	domainagg "github.com/yungbote/brokerage-backend/internal/domain/aggregates"
	"github.com/yungbote/brokerage-backend/internal/domain/transactions"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
)

const (
	msgTransactionNotFound = "Transaction introuvable"
	msgActionNotFound      = "Action introuvable"
	msgRoleNotAllowed      = "Rôle non autorisé pour cette action"
	msgMissingPrereqs      = "Prérequis manquants"
	msgConcurrentUpdate    = "La transaction a été modifiée par une autre opération"
)

type TransactionActionAggregateDeps struct {
	Base BaseDeps

	Transactions repos.TransactionRepo
	Documents    repos.TransactionDocumentRepo
	Definitions  repos.ActionDefinitionRepo
	Completions  repos.ActionCompletionRepo
	Intents      repos.ActionIntentRepo

	// Now defaults to time.Now().UTC().
	Now func() time.Time
}

type transactionActionAggregate struct {
	deps TransactionActionAggregateDeps
}

func NewTransactionActionAggregate(deps TransactionActionAggregateDeps) domainagg.TransactionActionAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &transactionActionAggregate{deps: deps}
}

func (a *transactionActionAggregate) Contract() domainagg.Contract {
	return domainagg.TransactionActionAggregateContract
}

func (a *transactionActionAggregate) ExecuteAction(ctx context.Context, in domainagg.ExecuteActionInput) (domainagg.ExecuteActionResult, error) {
	const op = "Transactions.TransactionAction.ExecuteAction"
	var out domainagg.ExecuteActionResult

	code := strings.TrimSpace(in.ActionCode)
	if a.deps.Transactions == nil || a.deps.Definitions == nil || a.deps.Completions == nil || a.deps.Documents == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "transaction action aggregate repos not configured", nil)
	}
	if in.TransactionID == 0 {
		return out, domainagg.NewError(domainagg.CodeNotFound, op, msgTransactionNotFound, nil)
	}
	executedAt := in.ExecutedAt.UTC()
	if in.ExecutedAt.IsZero() {
		executedAt = a.deps.Now()
	}
	data := in.Data
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "data must be a JSON object", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("transaction.id", int(in.TransactionID)),
		attribute.String("action.code", code),
	)

	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		// 1. transaction, row-locked until commit
		trx, err := a.deps.Transactions.LockByID(dbc, in.TransactionID)
		if err != nil {
			return err
		}
		if trx == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, msgTransactionNotFound, nil)
		}
		if in.ActorID == uuid.Nil {
			return domainagg.NewError(domainagg.CodeValidation, op, "missing actor", nil)
		}

		// 2. definition, active or not
		def, err := a.deps.Definitions.GetByCode(dbc, code)
		if err != nil {
			return err
		}
		if def == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, msgActionNotFound, nil)
		}

		// 3. transition legality
		if !def.FromStatus.Allows(trx.Status) {
			return domainagg.NewError(domainagg.CodeValidation, op,
				fmt.Sprintf("Cette action n'est pas disponible pour le statut actuel (%s)", trx.Status), nil)
		}
		if !def.AllowsRole(in.ActorRoles) {
			return domainagg.NewError(domainagg.CodeValidation, op, msgRoleNotAllowed, nil)
		}

		// 4. prerequisites, every missing item reported
		missing, err := a.missingPrerequisites(dbc, trx, def, data)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return domainagg.NewDetailedError(domainagg.CodeValidation, op,
				msgMissingPrereqs+": "+strings.Join(missing, ", "), missing, nil)
		}
		if in.ExpectedVersion != nil {
			if err := RequireVersionMatch(trx.Version, *in.ExpectedVersion); err != nil {
				return err
			}
		}

		// 5. ledger row
		previous := trx.Status
		completion := &types.ActionCompletion{
			TransactionID:  trx.ID,
			ActionCode:     def.Code,
			CompletedBy:    in.ActorID,
			CompletedAt:    executedAt,
			Data:           datatypes.JSON(payload),
			Notes:          trimmedOrNil(in.Notes),
			PreviousStatus: previous,
			NewStatus:      def.ToStatus,
			IPAddress:      trimmedOrNil(in.IPAddress),
			UserAgent:      trimmedOrNil(in.UserAgent),
		}
		if _, err := a.deps.Completions.Create(dbc, []*types.ActionCompletion{completion}); err != nil {
			return err
		}

		// 6. state mutation + payload back-write, guarded by version
		written, err := trx.ApplyData(dbc.Ctx, data)
		if err != nil {
			var attrErr *transactions.AttributeError
			if !errors.As(err, &attrErr) {
				return err
			}
			msg := "Valeur invalide pour le champ " + attrErr.Field
			return domainagg.NewDetailedError(domainagg.CodeValidation, op, msg, []string{msg}, err)
		}
		updates := make(map[string]any, len(written)+6)
		for _, col := range written {
			v, _ := trx.Attribute(dbc.Ctx, col)
			updates[col] = v
		}
		updates["status"] = def.ToStatus
		updates["current_action_code"] = def.Code
		updates["last_action_at"] = executedAt
		updates["action_count"] = trx.ActionCount + 1
		updates["version"] = trx.Version + 1
		updates["updated_at"] = executedAt

		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, types.Transaction{}.TableName(), trx.ID, trx.Version, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, msgConcurrentUpdate); err != nil {
			return err
		}

		// 9. side effects go to the outbox in the same transaction
		intentIDs, err := a.appendIntents(dbc, trx.ID, completion, def)
		if err != nil {
			return err
		}

		out = domainagg.ExecuteActionResult{
			TransactionID:      trx.ID,
			ActionCompletionID: completion.ID,
			ActionCode:         def.Code,
			PreviousStatus:     string(previous),
			NewStatus:          string(def.ToStatus),
			Version:            trx.Version + 1,
			ActionCount:        trx.ActionCount + 1,
			CompletedAt:        executedAt,
			Deadline:           deadlineFor(def, executedAt),
			IntentIDs:          intentIDs,
		}
		return nil
	})

	a.deps.Base.Hooks.ObserveAction(code, aggregateErrorStatus(err))
	return out, err
}

func (a *transactionActionAggregate) missingPrerequisites(dbc dbctx.Context, trx *types.Transaction, def *types.ActionDefinition, data map[string]any) ([]string, error) {
	var missing []string
	for _, field := range def.RequiredFields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if v, ok := data[field]; ok && !transactions.IsBlank(v) {
			continue
		}
		if !trx.MissingField(dbc.Ctx, field) {
			continue
		}
		missing = append(missing, "Champ requis: "+field)
	}
	if len(def.RequiredDocuments) == 0 {
		return missing, nil
	}
	present, err := a.deps.Documents.DocumentTypes(dbc, trx.ID)
	if err != nil {
		return nil, err
	}
	for _, docType := range def.RequiredDocuments {
		docType = strings.TrimSpace(docType)
		if docType == "" || present[docType] {
			continue
		}
		missing = append(missing, "Document requis: "+docType)
	}
	return missing, nil
}

func (a *transactionActionAggregate) appendIntents(dbc dbctx.Context, transactionID uint, completion *types.ActionCompletion, def *types.ActionDefinition) ([]uint, error) {
	if a.deps.Intents == nil || (!def.SendsNotification && !def.GeneratesDocument) {
		return nil, nil
	}
	var rows []*types.ActionIntent
	if def.SendsNotification {
		body, err := json.Marshal(transactions.NotificationPayload{
			TransactionID: transactionID,
			ActionCode:    def.Code,
			Recipients:    append([]string{}, def.NotificationRecipients...),
			NewStatus:     def.ToStatus,
		})
		if err != nil {
			return nil, err
		}
		rows = append(rows, &types.ActionIntent{
			TransactionID: transactionID,
			CompletionID:  completion.ID,
			ActionCode:    def.Code,
			Kind:          types.IntentNotification,
			Payload:       datatypes.JSON(body),
			NextAttemptAt: completion.CompletedAt,
		})
	}
	if def.GeneratesDocument {
		body, err := json.Marshal(transactions.DocumentPayload{
			TransactionID: transactionID,
			ActionCode:    def.Code,
			Template:      def.DocumentTemplate,
		})
		if err != nil {
			return nil, err
		}
		rows = append(rows, &types.ActionIntent{
			TransactionID: transactionID,
			CompletionID:  completion.ID,
			ActionCode:    def.Code,
			Kind:          types.IntentDocument,
			Payload:       datatypes.JSON(body),
			NextAttemptAt: completion.CompletedAt,
		})
	}
	created, err := a.deps.Intents.Create(dbc, rows)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(created))
	for _, row := range created {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (a *transactionActionAggregate) ToggleChecklistItem(ctx context.Context, in domainagg.ToggleChecklistInput) (domainagg.ToggleChecklistResult, error) {
	const op = "Transactions.TransactionAction.ToggleChecklistItem"
	var out domainagg.ToggleChecklistResult

	code := strings.TrimSpace(in.Code)
	if a.deps.Transactions == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "transaction repo not configured", nil)
	}
	if in.TransactionID == 0 {
		return out, domainagg.NewError(domainagg.CodeNotFound, op, msgTransactionNotFound, nil)
	}
	if in.Kind != domainagg.ChecklistStep && in.Kind != domainagg.ChecklistAction {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "invalid checklist kind", nil)
	}
	if code == "" || (len(in.KnownCodes) > 0 && !containsString(in.KnownCodes, code)) {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("Code inconnu: %s", code), nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		trx, err := a.deps.Transactions.LockByID(dbc, in.TransactionID)
		if err != nil {
			return err
		}
		if trx == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, msgTransactionNotFound, nil)
		}

		column := "completed_actions"
		current := []string(trx.CompletedActions)
		if in.Kind == domainagg.ChecklistStep {
			column = "completed_steps"
			current = []string(trx.CompletedSteps)
		}
		next := toggleCode(current, code, in.Completed)

		if err := a.deps.Transactions.UpdateFields(dbc, trx.ID, map[string]interface{}{
			column: datatypes.JSONSlice[string](next),
		}); err != nil {
			return err
		}
		out = domainagg.ToggleChecklistResult{
			TransactionID: trx.ID,
			Code:          code,
			Completed:     in.Completed,
			Items:         next,
		}
		return nil
	})
	return out, err
}

// toggleCode adds code once or removes every occurrence. The result is never nil.
func toggleCode(current []string, code string, completed bool) []string {
	out := make([]string, 0, len(current)+1)
	present := false
	for _, c := range current {
		if c == code {
			if completed && !present {
				out = append(out, c)
			}
			present = true
			continue
		}
		out = append(out, c)
	}
	if completed && !present {
		out = append(out, code)
	}
	return out
}

func deadlineFor(def *types.ActionDefinition, from time.Time) *domainagg.Deadline {
	if !def.HasDeadline() {
		return nil
	}
	days := *def.DeadlineDays
	return &domainagg.Deadline{
		Type:    def.DeadlineType,
		Days:    days,
		DueDate: from.AddDate(0, 0, days),
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
