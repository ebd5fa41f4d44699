package transactions

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/brokerage-backend/internal/domain"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

type ActionDefinitionRepo interface {
	Create(dbc dbctx.Context, rows []*types.ActionDefinition) ([]*types.ActionDefinition, error)
	// Save overwrites every column of an existing definition.
	Save(dbc dbctx.Context, row *types.ActionDefinition) error

	// GetByCode ignores is_active.
	GetByCode(dbc dbctx.Context, code string) (*types.ActionDefinition, error)
	ListActive(dbc dbctx.Context) ([]*types.ActionDefinition, error)
	// ListActiveFromStatus returns active definitions whose from_status is
	// status or the wildcard, ordered by order_index.
	ListActiveFromStatus(dbc dbctx.Context, status types.TransactionStatus) ([]*types.ActionDefinition, error)
	GetByCodes(dbc dbctx.Context, codes []string) ([]*types.ActionDefinition, error)
}

type actionDefinitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActionDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) ActionDefinitionRepo {
	return &actionDefinitionRepo{db: db, log: baseLog.With("repo", "ActionDefinitionRepo")}
}

func (r *actionDefinitionRepo) Create(dbc dbctx.Context, rows []*types.ActionDefinition) ([]*types.ActionDefinition, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ActionDefinition{}, nil
	}
	for _, row := range rows {
		row.Normalize()
	}
	// Select("*") so false/zero values (is_active=false) are written as-is.
	if err := t.WithContext(dbc.Ctx).Select("*").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *actionDefinitionRepo) Save(dbc dbctx.Context, row *types.ActionDefinition) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || strings.TrimSpace(row.Code) == "" {
		return nil
	}
	row.Normalize()
	return t.WithContext(dbc.Ctx).
		Model(&types.ActionDefinition{}).
		Where("code = ?", row.Code).
		Select("*").
		Omit("code", "created_at").
		Updates(row).Error
}

func (r *actionDefinitionRepo) GetByCode(dbc dbctx.Context, code string) (*types.ActionDefinition, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.ActionDefinition
	if err := t.WithContext(dbc.Ctx).Where("code = ?", code).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.Code == "" {
		return nil, nil
	}
	return &row, nil
}

func (r *actionDefinitionRepo) ListActive(dbc dbctx.Context) ([]*types.ActionDefinition, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ActionDefinition
	if err := t.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("order_index ASC, code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *actionDefinitionRepo) ListActiveFromStatus(dbc dbctx.Context, status types.TransactionStatus) ([]*types.ActionDefinition, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ActionDefinition
	if err := t.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Where("from_status IN ?", []string{string(status), string(types.AnyStatus)}).
		Order("order_index ASC, code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *actionDefinitionRepo) GetByCodes(dbc dbctx.Context, codes []string) ([]*types.ActionDefinition, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ActionDefinition
	if len(codes) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("code IN ?", codes).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
