package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/brokerage-backend/internal/http/handlers"
	httpMW "github.com/yungbote/brokerage-backend/internal/http/middleware"
	"github.com/yungbote/brokerage-backend/internal/observability"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	TransactionActionHandler *httpH.TransactionActionHandler
	GuidedStepsHandler       *httpH.GuidedStepsHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		} else {
			api.Use(func(c *gin.Context) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{"message": "authentication not configured", "code": "unauthorized"},
				})
			})
		}

		// Action engine
		if h := cfg.TransactionActionHandler; h != nil {
			api.GET("/actions", h.Catalog)
			api.GET("/transactions/:id/actions/available", h.AvailableActions)
			api.POST("/transactions/:id/actions", h.ExecuteAction)
			api.GET("/transactions/:id/actions/history", h.History)

			admin := api.Group("/admin")
			if cfg.AuthMiddleware != nil {
				admin.Use(cfg.AuthMiddleware.RequireRole("admin"))
			}
			admin.POST("/actions/seed", h.SeedActions)
		}

		// Guided steps
		if h := cfg.GuidedStepsHandler; h != nil {
			api.GET("/transactions/:id/steps", h.GetSteps)
			api.POST("/transactions/:id/steps/actions/:code", h.ToggleAction)
			api.POST("/transactions/:id/steps/:code", h.ToggleStep)
		}
	}

	return r
}
