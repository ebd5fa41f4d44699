package aggregates

import (
	"errors"
	"fmt"
	"testing"

	domainagg "github.com/yungbote/brokerage-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_PassthroughWrappedAggregateError(t *testing.T) {
	in := domainagg.NewDetailedError(domainagg.CodeValidation, "op", "Prérequis manquants", []string{"Champ requis: buyers"}, nil)
	out := MapError("other", fmt.Errorf("wrapped: %w", in))
	if !domainagg.IsCode(out, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q", domainagg.CodeOf(out))
	}
	if details := domainagg.DetailsOf(out); len(details) != 1 || details[0] != "Champ requis: buyers" {
		t.Fatalf("details lost: %v", details)
	}
}

func TestMapError_SQLiteMessages(t *testing.T) {
	if err := MapError("op", errors.New("UNIQUE constraint failed: action_definition.code")); !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("unique constraint: want conflict got %q", domainagg.CodeOf(err))
	}
	if err := MapError("op", errors.New("database is locked")); !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("locked: want retryable got %q", domainagg.CodeOf(err))
	}
	if err := MapError("op", errors.New("disk I/O error")); !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("unknown: want internal got %q", domainagg.CodeOf(err))
	}
}
