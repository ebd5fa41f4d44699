package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/brokerage-backend/internal/domain"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

func testCache(t *testing.T) CatalogCache {
	t.Helper()
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	c, err := NewCatalogCache(logger.Nop(), CatalogCacheConfig{
		Addr: addr,
		TTL:  time.Minute,
		Key:  "test:action_catalog:" + uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("NewCatalogCache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Invalidate(context.Background())
		_ = c.Close()
	})
	return c
}

func TestCatalogCacheRoundTripAndInvalidate(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	days := 90
	in := []*types.ActionDefinition{{
		Code:         "publish_listing",
		Name:         "Publier l'inscription",
		FromStatus:   types.StatusInProgress,
		ToStatus:     types.StatusListed,
		DeadlineDays: &days,
		IsActive:     true,
	}}
	if err := c.Set(ctx, in); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx)
	if err != nil || !ok || len(got) != 1 {
		t.Fatalf("Get: ok=%v len=%d err=%v", ok, len(got), err)
	}
	if got[0].Code != "publish_listing" || got[0].DeadlineDays == nil || *got[0].DeadlineDays != 90 {
		t.Fatalf("cached definition: %+v", got[0])
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestCatalogCacheDropsCorruptPayload(t *testing.T) {
	c := testCache(t).(*catalogCache)
	ctx := context.Background()

	if err := c.rdb.Set(ctx, c.key, "not-json", time.Minute).Err(); err != nil {
		t.Fatalf("seed corrupt payload: %v", err)
	}
	if _, ok, err := c.Get(ctx); ok || err != nil {
		t.Fatalf("corrupt payload should read as miss: ok=%v err=%v", ok, err)
	}
	if n, _ := c.rdb.Exists(ctx, c.key).Result(); n != 0 {
		t.Fatalf("corrupt payload should be deleted")
	}
}

func TestNilCatalogCacheIsInert(t *testing.T) {
	var c *catalogCache
	ctx := context.Background()
	if _, ok, err := c.Get(ctx); ok || err != nil {
		t.Fatalf("nil Get: ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, nil); err != nil {
		t.Fatalf("nil Set: %v", err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("nil Invalidate: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}

func TestNewCatalogCacheRequiresAddr(t *testing.T) {
	if _, err := NewCatalogCache(logger.Nop(), CatalogCacheConfig{}); err == nil {
		t.Fatalf("expected error without REDIS_ADDR")
	}
}
