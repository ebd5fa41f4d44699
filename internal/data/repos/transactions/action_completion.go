package transactions

import (
	"gorm.io/gorm"

	types "github.com/yungbote/brokerage-backend/internal/domain"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

// ActionCompletionRepo is append-only: there is no update or delete.
type ActionCompletionRepo interface {
	Create(dbc dbctx.Context, rows []*types.ActionCompletion) ([]*types.ActionCompletion, error)
	// ListByTransactionID returns completions most recent first, ties broken
	// by id so same-instant rows keep insertion order reversed.
	ListByTransactionID(dbc dbctx.Context, transactionID uint) ([]*types.ActionCompletion, error)
}

type actionCompletionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActionCompletionRepo(db *gorm.DB, baseLog *logger.Logger) ActionCompletionRepo {
	return &actionCompletionRepo{db: db, log: baseLog.With("repo", "ActionCompletionRepo")}
}

func (r *actionCompletionRepo) Create(dbc dbctx.Context, rows []*types.ActionCompletion) ([]*types.ActionCompletion, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ActionCompletion{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *actionCompletionRepo) ListByTransactionID(dbc dbctx.Context, transactionID uint) ([]*types.ActionCompletion, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ActionCompletion
	if transactionID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("transaction_id = ?", transactionID).
		Order("completed_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
