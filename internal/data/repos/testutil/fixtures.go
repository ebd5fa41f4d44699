package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/brokerage-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Jean",
		LastName:  "Courtier",
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedTransaction inserts a transaction at status (DefaultStatus when empty).
// mutate, when non-nil, runs before the insert.
func SeedTransaction(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, status types.TransactionStatus, mutate func(*types.Transaction)) *types.Transaction {
	tb.Helper()
	row := &types.Transaction{
		OwnerUserID: ownerID,
		Name:        "Vente 123 rue Principale",
		Status:      status,
	}
	if mutate != nil {
		mutate(row)
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed transaction: %v", err)
	}
	return row
}

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, transactionID uint, docType string) *types.TransactionDocument {
	tb.Helper()
	d := &types.TransactionDocument{
		TransactionID: transactionID,
		DocumentType:  docType,
		FileName:      docType + ".pdf",
		StorageKey:    "transactions/" + docType + ".pdf",
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return d
}

func SeedActionDefinition(tb testing.TB, ctx context.Context, tx *gorm.DB, def *types.ActionDefinition) *types.ActionDefinition {
	tb.Helper()
	def.Normalize()
	// Upsert so suites sharing one Postgres database can reseed the same codes.
	if err := tx.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Select("*").Create(def).Error; err != nil {
		tb.Fatalf("seed action definition: %v", err)
	}
	return def
}

func SeedCompletion(tb testing.TB, ctx context.Context, tx *gorm.DB, transactionID uint, code string, by uuid.UUID, at time.Time) *types.ActionCompletion {
	tb.Helper()
	c := &types.ActionCompletion{
		TransactionID:  transactionID,
		ActionCode:     code,
		CompletedBy:    by,
		CompletedAt:    at,
		Data:           datatypes.JSON([]byte("{}")),
		PreviousStatus: types.StatusInProgress,
		NewStatus:      types.StatusListed,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed completion: %v", err)
	}
	return c
}

func PtrInt(v int) *int { return &v }

func PtrString(v string) *string { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
