package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/brokerage-backend/internal/domain"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

const defaultCatalogKey = "brokerage:action_catalog:v1"

// CatalogCache is a read-through copy of the active action definitions.
// The store stays the source of truth; a miss or a Redis failure only costs
// one extra query.
type CatalogCache interface {
	Get(ctx context.Context) ([]*types.ActionDefinition, bool, error)
	Set(ctx context.Context, defs []*types.ActionDefinition) error
	Invalidate(ctx context.Context) error
	Client() goredis.UniversalClient
	Close() error
}

type CatalogCacheConfig struct {
	Addr string        `env:"REDIS_ADDR"`
	TTL  time.Duration `env:"REDIS_CATALOG_TTL" env-default:"10m"`
	Key  string        `env:"REDIS_CATALOG_KEY" env-default:"brokerage:action_catalog:v1"`
}

type catalogCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	key string
	ttl time.Duration
}

func NewCatalogCache(log *logger.Logger, cfg CatalogCacheConfig) (CatalogCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewCatalogCacheFromClient(log, rdb, cfg.Key, cfg.TTL), nil
}

func NewCatalogCacheFromClient(log *logger.Logger, rdb goredis.UniversalClient, key string, ttl time.Duration) CatalogCache {
	if log == nil {
		log = logger.Nop()
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = defaultCatalogKey
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &catalogCache{
		log: log.With("client", "RedisCatalogCache"),
		rdb: rdb,
		key: key,
		ttl: ttl,
	}
}

func (c *catalogCache) Get(ctx context.Context) ([]*types.ActionDefinition, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", c.key, err)
	}
	var defs []*types.ActionDefinition
	if err := json.Unmarshal(raw, &defs); err != nil {
		c.log.Warn("bad cached catalog payload, dropping", "key", c.key, "error", err)
		_ = c.rdb.Del(ctx, c.key).Err()
		return nil, false, nil
	}
	return defs, true, nil
}

func (c *catalogCache) Set(ctx context.Context, defs []*types.ActionDefinition) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if defs == nil {
		defs = []*types.ActionDefinition{}
	}
	raw, err := json.Marshal(defs)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *catalogCache) Invalidate(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key).Err()
}

func (c *catalogCache) Client() goredis.UniversalClient {
	if c == nil {
		return nil
	}
	return c.rdb
}

func (c *catalogCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
