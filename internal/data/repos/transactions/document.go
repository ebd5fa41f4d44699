package transactions

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/brokerage-backend/internal/domain"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

type TransactionDocumentRepo interface {
	Create(dbc dbctx.Context, rows []*types.TransactionDocument) ([]*types.TransactionDocument, error)
	ListByTransactionID(dbc dbctx.Context, transactionID uint) ([]*types.TransactionDocument, error)
	// DocumentTypes returns the set of document types attached to a transaction.
	DocumentTypes(dbc dbctx.Context, transactionID uint) (map[string]bool, error)
}

type transactionDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransactionDocumentRepo(db *gorm.DB, baseLog *logger.Logger) TransactionDocumentRepo {
	return &transactionDocumentRepo{db: db, log: baseLog.With("repo", "TransactionDocumentRepo")}
}

func (r *transactionDocumentRepo) Create(dbc dbctx.Context, rows []*types.TransactionDocument) ([]*types.TransactionDocument, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.TransactionDocument{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *transactionDocumentRepo) ListByTransactionID(dbc dbctx.Context, transactionID uint) ([]*types.TransactionDocument, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TransactionDocument
	if transactionID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *transactionDocumentRepo) DocumentTypes(dbc dbctx.Context, transactionID uint) (map[string]bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := map[string]bool{}
	if transactionID == 0 {
		return out, nil
	}
	var docTypes []string
	if err := t.WithContext(dbc.Ctx).
		Model(&types.TransactionDocument{}).
		Where("transaction_id = ?", transactionID).
		Distinct().
		Pluck("document_type", &docTypes).Error; err != nil {
		return nil, err
	}
	for _, dt := range docTypes {
		if dt = strings.TrimSpace(dt); dt != "" {
			out[dt] = true
		}
	}
	return out, nil
}
