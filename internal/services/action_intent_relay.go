package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/brokerage-backend/internal/data/repos"
	types "github.com/yungbote/brokerage-backend/internal/domain"
	"github.com/yungbote/brokerage-backend/internal/observability"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

// IntentDispatcher delivers one side-effect intent to the notification or
// document subsystem. A nil error means delivery was acknowledged.
type IntentDispatcher interface {
	Name() string
	Dispatch(ctx context.Context, intent *types.ActionIntent) error
}

type loggingIntentDispatcher struct {
	log *logger.Logger
}

// NewLoggingIntentDispatcher acknowledges every intent after logging it.
// Used when no broker is configured.
func NewLoggingIntentDispatcher(baseLog *logger.Logger) IntentDispatcher {
	return &loggingIntentDispatcher{log: baseLog.With("dispatcher", "LoggingIntentDispatcher")}
}

func (d *loggingIntentDispatcher) Name() string { return "log" }

func (d *loggingIntentDispatcher) Dispatch(_ context.Context, intent *types.ActionIntent) error {
	if intent == nil {
		return fmt.Errorf("nil intent")
	}
	d.log.Info("Action intent",
		"intent_id", intent.ID,
		"transaction_id", intent.TransactionID,
		"action_code", intent.ActionCode,
		"kind", string(intent.Kind),
		"payload", string(intent.Payload),
	)
	return nil
}

type ActionIntentRelayConfig struct {
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" env-default:"2s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" env-default:"50"`
	MaxAttempts  int           `env:"OUTBOX_MAX_ATTEMPTS" env-default:"5"`
	RetryBase    time.Duration `env:"OUTBOX_RETRY_BASE" env-default:"5s"`
}

func (c ActionIntentRelayConfig) withDefaults() ActionIntentRelayConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 5 * time.Second
	}
	return c
}

// ActionIntentRelay drains the action_intent outbox. Several relays may run
// against the same database; claimed rows are skipped by the others.
type ActionIntentRelay struct {
	db         *gorm.DB
	log        *logger.Logger
	intents    repos.ActionIntentRepo
	dispatcher IntentDispatcher
	metrics    *observability.Metrics
	cfg        ActionIntentRelayConfig
	now        func() time.Time
}

func NewActionIntentRelay(
	db *gorm.DB,
	baseLog *logger.Logger,
	intents repos.ActionIntentRepo,
	dispatcher IntentDispatcher,
	metrics *observability.Metrics,
	cfg ActionIntentRelayConfig,
) *ActionIntentRelay {
	return &ActionIntentRelay{
		db:         db,
		log:        baseLog.With("component", "ActionIntentRelay"),
		intents:    intents,
		dispatcher: dispatcher,
		metrics:    metrics,
		cfg:        cfg.withDefaults(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run polls until ctx is cancelled.
func (r *ActionIntentRelay) Run(ctx context.Context) error {
	if r == nil || r.db == nil || r.intents == nil || r.dispatcher == nil {
		return fmt.Errorf("action intent relay not configured")
	}
	r.log.Info("Starting action intent relay",
		"dispatcher", r.dispatcher.Name(),
		"poll_interval", r.cfg.PollInterval.String(),
		"batch_size", r.cfg.BatchSize,
	)
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Action intent relay stopped")
			return nil
		case <-ticker.C:
			for {
				n, err := r.RunOnce(ctx)
				if err != nil {
					if ctx.Err() == nil {
						r.log.Warn("Intent relay pass failed", "error", err)
					}
					break
				}
				// A full batch usually means more rows are due.
				if n < r.cfg.BatchSize || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

// RunOnce claims one batch of due intents and settles each of them. It
// returns how many intents were claimed.
func (r *ActionIntentRelay) RunOnce(ctx context.Context) (int, error) {
	claimed := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		now := r.now()
		rows, err := r.intents.ClaimPending(dbc, now, r.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("claim intents: %w", err)
		}
		claimed = len(rows)
		for _, it := range rows {
			if err := r.settle(dbc, it); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

func (r *ActionIntentRelay) settle(dbc dbctx.Context, it *types.ActionIntent) error {
	kind := string(it.Kind)
	derr := r.dispatcher.Dispatch(dbc.Ctx, it)
	if derr == nil {
		r.metrics.IncIntentDispatch(kind, "dispatched")
		return r.intents.MarkDispatched(dbc, it.ID, r.now())
	}

	attempt := it.Attempts + 1
	final := attempt >= r.cfg.MaxAttempts
	retryAt := r.now().Add(r.backoff(attempt))
	if final {
		r.metrics.IncIntentDispatch(kind, "failed")
		r.log.Error("Intent delivery abandoned",
			"intent_id", it.ID,
			"transaction_id", it.TransactionID,
			"kind", kind,
			"attempts", attempt,
			"error", derr,
		)
	} else {
		r.metrics.IncIntentDispatch(kind, "retry")
		r.log.Warn("Intent delivery failed, will retry",
			"intent_id", it.ID,
			"kind", kind,
			"attempt", attempt,
			"retry_at", retryAt,
			"error", derr,
		)
	}
	return r.intents.MarkAttemptFailed(dbc, it.ID, derr.Error(), retryAt, final)
}

// backoff doubles per attempt, capped at one hour.
func (r *ActionIntentRelay) backoff(attempt int) time.Duration {
	d := r.cfg.RetryBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= time.Hour {
			return time.Hour
		}
	}
	return d
}
