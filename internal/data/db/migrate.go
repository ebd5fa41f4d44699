package db

import (
	"fmt"

	types "github.com/yungbote/brokerage-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// =========================
		// Directory
		// =========================
		&types.User{},

		// =========================
		// Transactions (state store + documents)
		// =========================
		&types.Transaction{},
		&types.TransactionDocument{},

		// =========================
		// Action engine (catalog, ledger, outbox)
		// =========================
		&types.ActionDefinition{},
		&types.ActionCompletion{},
		&types.ActionIntent{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
