package app

import (
	"fmt"
	"strings"

	rediscache "github.com/yungbote/brokerage-backend/internal/clients/redis"
	"github.com/yungbote/brokerage-backend/internal/platform/kafka"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

// Clients holds the optional external connections. Nil members mean the
// feature runs without that backend.
type Clients struct {
	CatalogCache rediscache.CatalogCache
	Kafka        *kafka.Publisher
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		cache, err := rediscache.NewCatalogCache(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis catalog cache: %w", err)
		}
		out.CatalogCache = cache
	}

	// Kafka
	if cfg.Kafka.Enabled() {
		pub, err := kafka.NewPublisher(log, cfg.Kafka)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init kafka publisher: %w", err)
		}
		out.Kafka = pub
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.CatalogCache != nil {
		_ = c.CatalogCache.Close()
	}
	if c.Kafka != nil {
		_ = c.Kafka.Close()
	}
}
