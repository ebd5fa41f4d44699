package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	rediscache "github.com/yungbote/brokerage-backend/internal/clients/redis"
	"github.com/yungbote/brokerage-backend/internal/data/repos"
	types "github.com/yungbote/brokerage-backend/internal/domain"
	domainagg "github.com/yungbote/brokerage-backend/internal/domain/aggregates"
	"github.com/yungbote/brokerage-backend/internal/observability"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

type ActionCatalogService interface {
	// SeedActions upserts the built-in catalog and returns how many codes were new.
	SeedActions(ctx context.Context) (int, error)
	// Catalog lists every active definition ordered by order_index.
	Catalog(ctx context.Context) ([]*types.ActionDefinition, error)
	// AvailableActions lists the active definitions executable from the
	// transaction's current status by an actor holding roles.
	AvailableActions(ctx context.Context, transactionID uint, roles []string) ([]*types.ActionDefinition, error)
}

type actionCatalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	definitions  repos.ActionDefinitionRepo
	transactions repos.TransactionRepo
	cache        rediscache.CatalogCache
	metrics      *observability.Metrics
	builtins     func() []*types.ActionDefinition
}

func NewActionCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	definitions repos.ActionDefinitionRepo,
	transactions repos.TransactionRepo,
	cache rediscache.CatalogCache,
	metrics *observability.Metrics,
) ActionCatalogService {
	return &actionCatalogService{
		db:           db,
		log:          baseLog.With("service", "ActionCatalogService"),
		definitions:  definitions,
		transactions: transactions,
		cache:        cache,
		metrics:      metrics,
		builtins:     BuiltinActionDefinitions,
	}
}

func (s *actionCatalogService) SeedActions(ctx context.Context) (int, error) {
	if s == nil || s.db == nil || s.definitions == nil {
		return 0, fmt.Errorf("action catalog service not configured")
	}
	ctx, span := observability.Tracer().Start(ctx, "ActionCatalog.SeedActions")
	defer span.End()

	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, def := range s.builtins() {
			existing, err := s.definitions.GetByCode(dbc, def.Code)
			if err != nil {
				return fmt.Errorf("load %s: %w", def.Code, err)
			}
			if existing == nil {
				if _, err := s.definitions.Create(dbc, []*types.ActionDefinition{def}); err != nil {
					return fmt.Errorf("create %s: %w", def.Code, err)
				}
				created++
				continue
			}
			if err := s.definitions.Save(dbc, def); err != nil {
				return fmt.Errorf("update %s: %w", def.Code, err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		s.log.Error("Seeding action catalog failed", "error", err)
		return 0, err
	}
	span.SetAttributes(attribute.Int("catalog.created", created))

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("Catalog cache invalidation failed", "error", err)
		}
	}
	s.metrics.AddCatalogSeeded(created)
	s.log.Info("Action catalog seeded", "created", created)
	return created, nil
}

func (s *actionCatalogService) Catalog(ctx context.Context) ([]*types.ActionDefinition, error) {
	if s == nil || s.definitions == nil {
		return nil, fmt.Errorf("action catalog service not configured")
	}
	if s.cache != nil {
		defs, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.metrics.IncCatalogCache("error")
			s.log.Warn("Catalog cache read failed", "error", err)
		case ok:
			s.metrics.IncCatalogCache("hit")
			return defs, nil
		default:
			s.metrics.IncCatalogCache("miss")
		}
	}

	defs, err := s.definitions.ListActive(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, defs); err != nil {
			s.log.Warn("Catalog cache write failed", "error", err)
		}
	}
	return defs, nil
}

func (s *actionCatalogService) AvailableActions(ctx context.Context, transactionID uint, roles []string) ([]*types.ActionDefinition, error) {
	const op = "ActionCatalog.AvailableActions"
	if s == nil || s.transactions == nil || s.definitions == nil {
		return nil, fmt.Errorf("action catalog service not configured")
	}
	trx, err := s.transactions.GetByID(dbctx.Context{Ctx: ctx}, transactionID)
	if err != nil {
		return nil, err
	}
	if trx == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "Transaction introuvable", nil)
	}

	var candidates []*types.ActionDefinition
	if s.cache != nil {
		all, err := s.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		for _, d := range all {
			if d.IsActive && d.FromStatus.Allows(trx.Status) {
				candidates = append(candidates, d)
			}
		}
	} else {
		candidates, err = s.definitions.ListActiveFromStatus(dbctx.Context{Ctx: ctx}, trx.Status)
		if err != nil {
			return nil, err
		}
	}

	out := make([]*types.ActionDefinition, 0, len(candidates))
	for _, d := range candidates {
		if d.AllowsRole(roles) {
			out = append(out, d)
		}
	}
	return out, nil
}
