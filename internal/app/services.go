package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/brokerage-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/brokerage-backend/internal/domain/aggregates"
	"github.com/yungbote/brokerage-backend/internal/observability"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
	"github.com/yungbote/brokerage-backend/internal/services"
)

type Services struct {
	Auth              services.AuthService
	ActionCatalog     services.ActionCatalogService
	TransactionAction services.TransactionActionService
	GuidedSteps       services.GuidedStepsService
	IntentRelay       *services.ActionIntentRelay

	Engine domainagg.TransactionActionAggregate
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	engine := aggregates.NewTransactionActionAggregate(aggregates.TransactionActionAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Transactions: repos.Transaction,
		Documents:    repos.TransactionDocument,
		Definitions:  repos.ActionDefinition,
		Completions:  repos.ActionCompletion,
		Intents:      repos.ActionIntent,
	})

	journeys, err := services.DefaultGuidedStepCatalog()
	if err != nil {
		return Services{}, fmt.Errorf("load guided steps catalog: %w", err)
	}

	catalog := services.NewActionCatalogService(db, log, repos.ActionDefinition, repos.Transaction, clients.CatalogCache, metrics)

	var dispatcher services.IntentDispatcher = services.NewLoggingIntentDispatcher(log)
	if clients.Kafka != nil {
		dispatcher = clients.Kafka
	}

	return Services{
		Auth:              services.NewAuthService(db, log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		ActionCatalog:     catalog,
		TransactionAction: services.NewTransactionActionService(db, log, engine, repos.Transaction, repos.ActionDefinition, repos.ActionCompletion, repos.User),
		GuidedSteps:       services.NewGuidedStepsService(log, repos.Transaction, engine, journeys),
		IntentRelay:       services.NewActionIntentRelay(db, log, repos.ActionIntent, dispatcher, metrics, cfg.Outbox),
		Engine:            engine,
	}, nil
}
