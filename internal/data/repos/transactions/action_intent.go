package transactions

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/brokerage-backend/internal/domain"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

type ActionIntentRepo interface {
	Create(dbc dbctx.Context, rows []*types.ActionIntent) ([]*types.ActionIntent, error)
	ListByTransactionID(dbc dbctx.Context, transactionID uint) ([]*types.ActionIntent, error)

	// ClaimPending locks up to limit due pending intents, skipping rows held
	// by another relay. Callers must pass a transaction in dbc and finish the
	// rows (MarkDispatched/MarkAttemptFailed) before committing.
	ClaimPending(dbc dbctx.Context, now time.Time, limit int) ([]*types.ActionIntent, error)
	MarkDispatched(dbc dbctx.Context, id uint, at time.Time) error
	// MarkAttemptFailed records the error and either reschedules the intent
	// at retryAt or, when final, marks it failed.
	MarkAttemptFailed(dbc dbctx.Context, id uint, lastErr string, retryAt time.Time, final bool) error
}

type actionIntentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActionIntentRepo(db *gorm.DB, baseLog *logger.Logger) ActionIntentRepo {
	return &actionIntentRepo{db: db, log: baseLog.With("repo", "ActionIntentRepo")}
}

func (r *actionIntentRepo) Create(dbc dbctx.Context, rows []*types.ActionIntent) ([]*types.ActionIntent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ActionIntent{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.Status == "" {
			row.Status = types.IntentPending
		}
		if row.NextAttemptAt.IsZero() {
			row.NextAttemptAt = now
		}
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *actionIntentRepo) ListByTransactionID(dbc dbctx.Context, transactionID uint) ([]*types.ActionIntent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ActionIntent
	if transactionID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("transaction_id = ?", transactionID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *actionIntentRepo) ClaimPending(dbc dbctx.Context, now time.Time, limit int) ([]*types.ActionIntent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 1
	}
	var out []*types.ActionIntent
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND next_attempt_at <= ?", types.IntentPending, now).
		Order("next_attempt_at ASC, id ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *actionIntentRepo) MarkDispatched(dbc dbctx.Context, id uint, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ActionIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        types.IntentDispatched,
			"attempts":      gorm.Expr("attempts + 1"),
			"last_error":    "",
			"dispatched_at": at,
			"updated_at":    at,
		}).Error
}

func (r *actionIntentRepo) MarkAttemptFailed(dbc dbctx.Context, id uint, lastErr string, retryAt time.Time, final bool) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil
	}
	status := types.IntentPending
	if final {
		status = types.IntentFailed
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ActionIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        gorm.Expr("attempts + 1"),
			"last_error":      lastErr,
			"next_attempt_at": retryAt,
			"updated_at":      time.Now().UTC(),
		}).Error
}
