package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var TransactionActionAggregateContract = Contract{
	Name:             "Transactions.TransactionActionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns status transitions, completion ledger appends, data back-writes and checklist toggles on a single locked transaction row.",
}

// TransactionActionAggregate owns the action state machine of a transaction.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type TransactionActionAggregate interface {
	Aggregate

	// ExecuteAction validates and applies one catalog action atomically.
	ExecuteAction(ctx context.Context, in ExecuteActionInput) (ExecuteActionResult, error)

	// ToggleChecklistItem flips one guided-step or checklist-action code.
	ToggleChecklistItem(ctx context.Context, in ToggleChecklistInput) (ToggleChecklistResult, error)
}

type ExecuteActionInput struct {
	TransactionID uint
	ActionCode    string
	ActorID       uuid.UUID
	ActorRoles    []string
	Data          map[string]any
	Notes         *string
	IPAddress     *string
	UserAgent     *string
	// ExpectedVersion, when set, must equal the stored version.
	ExpectedVersion *int
	ExecutedAt      time.Time
}

type Deadline struct {
	Type    string    `json:"type"`
	Days    int       `json:"days"`
	DueDate time.Time `json:"due_date"`
}

type ExecuteActionResult struct {
	TransactionID      uint
	ActionCompletionID uint
	ActionCode         string
	PreviousStatus     string
	NewStatus          string
	Version            int
	ActionCount        int
	CompletedAt        time.Time
	Deadline           *Deadline
	IntentIDs          []uint
}

type ChecklistKind string

const (
	ChecklistStep   ChecklistKind = "step"
	ChecklistAction ChecklistKind = "action"
)

type ToggleChecklistInput struct {
	TransactionID uint
	Kind          ChecklistKind
	Code          string
	Completed     bool
	// KnownCodes bounds the accepted codes; empty accepts any code.
	KnownCodes []string
}

type ToggleChecklistResult struct {
	TransactionID uint
	Code          string
	Completed     bool
	Items         []string
}
