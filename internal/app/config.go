package app

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	rediscache "github.com/yungbote/brokerage-backend/internal/clients/redis"
	"github.com/yungbote/brokerage-backend/internal/data/db"
	"github.com/yungbote/brokerage-backend/internal/observability"
	"github.com/yungbote/brokerage-backend/internal/platform/kafka"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
	"github.com/yungbote/brokerage-backend/internal/services"
)

type Config struct {
	AppEnv string `env:"APP_ENV" env-default:"development"`
	Port   string `env:"PORT" env-default:"8080"`

	// CORSOrigins falls back to the local dev servers when empty.
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`

	JWTSecretKey   string        `env:"JWT_SECRET_KEY" env-default:"defaultsecret"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"1h"`

	// SeedCatalogOnBoot upserts the built-in action catalog during startup.
	SeedCatalogOnBoot bool `env:"SEED_CATALOG_ON_BOOT" env-default:"true"`
	// RunIntentRelay starts the outbox relay inside the API process.
	RunIntentRelay bool `env:"RUN_INTENT_RELAY" env-default:"true"`
	// CollectorInterval drives the Postgres/Redis/outbox gauges.
	CollectorInterval time.Duration `env:"METRICS_COLLECTOR_INTERVAL" env-default:"15s"`

	Postgres db.PostgresConfig
	Otel     observability.OtelConfig
	Redis    rediscache.CatalogCacheConfig
	Kafka    kafka.Config
	Outbox   services.ActionIntentRelayConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	return cfg, nil
}
