package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/brokerage-backend/internal/http"
	httpH "github.com/yungbote/brokerage-backend/internal/http/handlers"
	httpMW "github.com/yungbote/brokerage-backend/internal/http/middleware"
	"github.com/yungbote/brokerage-backend/internal/observability"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health            *httpH.HealthHandler
	TransactionAction *httpH.TransactionActionHandler
	GuidedSteps       *httpH.GuidedStepsHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:            httpH.NewHealthHandler(db),
		TransactionAction: httpH.NewTransactionActionHandler(services.TransactionAction, services.ActionCatalog),
		GuidedSteps:       httpH.NewGuidedStepsHandler(services.GuidedSteps),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:                      log,
		Metrics:                  metrics,
		ServiceName:              serviceName,
		CORSOrigins:              cfg.CORSOrigins,
		AuthMiddleware:           middleware.Auth,
		TransactionActionHandler: handlers.TransactionAction,
		GuidedStepsHandler:       handlers.GuidedSteps,
		HealthHandler:            handlers.Health,
	})
}
