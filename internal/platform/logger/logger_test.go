package logger

import "testing"

func TestSanitizeKVsRedactsProvenanceAndHashesActors(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"ip_address", "10.0.0.1",
		"user_agent", "curl/8.0",
		"completed_by", "6f1c2b3a-0000-4000-8000-000000000001",
		"action_code", "publish_listing",
	})
	if len(out) != 8 {
		t.Fatalf("len: want=8 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" || out[3] != "[REDACTED]" {
		t.Fatalf("provenance should be redacted, got=%v", out)
	}
	hashed, ok := out[5].(string)
	if !ok || len(hashed) != len("hash:")+12 {
		t.Fatalf("completed_by should be hashed, got=%v", out[5])
	}
	if out[7] != "publish_listing" {
		t.Fatalf("action_code should pass through, got=%v", out[7])
	}
}

func TestSanitizeKVsKeepsDanglingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"transaction_id", 12, "orphan"})
	if len(out) != 3 || out[2] != "orphan" {
		t.Fatalf("unexpected output: %v", out)
	}
}
