package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorMessageFallbacks(t *testing.T) {
	if got := New(http.StatusBadRequest, "invalid_id", errors.New("bad id")).Error(); got != "bad id" {
		t.Fatalf("wrapped message: got=%q", got)
	}
	if got := New(http.StatusForbidden, "forbidden", nil).Error(); got != "forbidden" {
		t.Fatalf("code fallback: got=%q", got)
	}
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error (418)" {
		t.Fatalf("status fallback: got=%q", got)
	}
}

func TestUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := BadRequest("x", base)
	if !errors.Is(err, base) {
		t.Fatalf("expected errors.Is to reach wrapped error")
	}
	if err.Status != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d", http.StatusBadRequest, err.Status)
	}
}
