package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/brokerage-backend/internal/data/repos/testutil"
)

func serveHealth(h *HealthHandler, path string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/healthcheck", h.HealthCheck)
	r.GET("/readyz", h.Ready)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	if rec := serveHealth(NewHealthHandler(nil), "/healthcheck"); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: status=%d body=%q", rec.Code, rec.Body.String())
	}
	if rec := serveHealth(NewHealthHandler(nil), "/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz without db: want=503 got=%d", rec.Code)
	}
	if rec := serveHealth(NewHealthHandler(testutil.DB(t)), "/readyz"); rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Fatalf("readyz: status=%d body=%q", rec.Code, rec.Body.String())
	}
}
