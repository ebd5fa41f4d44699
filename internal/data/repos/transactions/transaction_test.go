package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/brokerage-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brokerage-backend/internal/domain"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
)

func TestTransactionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTransactionRepo(db, testutil.Logger(t))

	owner := uuid.New()
	created, err := repo.Create(dbc, []*types.Transaction{
		{OwnerUserID: owner, Name: "Condo Plateau"},
		{OwnerUserID: owner, Name: "Duplex Rosemont", Status: types.StatusListed},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 || created[0].ID == 0 || created[1].ID == 0 {
		t.Fatalf("Create: unexpected rows: %+v", created)
	}
	if created[0].Status != types.StatusInProgress {
		t.Fatalf("default status: want=%q got=%q", types.StatusInProgress, created[0].Status)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Name != "Condo Plateau" {
		t.Fatalf("GetByID: unexpected row: %+v", got)
	}
	if len(got.CompletedActions) != 0 || string(got.TransactionData) != "{}" {
		t.Fatalf("json defaults: completed_actions=%v transaction_data=%s", got.CompletedActions, got.TransactionData)
	}

	if missing, err := repo.GetByID(dbc, 999999); err != nil || missing != nil {
		t.Fatalf("GetByID(missing): row=%+v err=%v", missing, err)
	}

	locked, err := repo.LockByID(dbc, created[1].ID)
	if err != nil {
		t.Fatalf("LockByID: %v", err)
	}
	if locked == nil || locked.Status != types.StatusListed {
		t.Fatalf("LockByID: unexpected row: %+v", locked)
	}

	now := time.Now().UTC()
	if err := repo.UpdateFields(dbc, created[1].ID, map[string]interface{}{
		"status":         types.StatusOfferSubmitted,
		"action_count":   3,
		"last_action_at": now,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err = repo.GetByID(dbc, created[1].ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Status != types.StatusOfferSubmitted || got.ActionCount != 3 || got.LastActionAt == nil {
		t.Fatalf("UpdateFields: unexpected row: %+v", got)
	}
}

func TestTransactionDocumentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTransactionDocumentRepo(db, testutil.Logger(t))

	trx := testutil.SeedTransaction(t, ctx, tx, uuid.New(), "", nil)
	other := testutil.SeedTransaction(t, ctx, tx, uuid.New(), "", nil)

	if _, err := repo.Create(dbc, []*types.TransactionDocument{
		{TransactionID: trx.ID, DocumentType: "promise_to_purchase", FileName: "pa.pdf"},
		{TransactionID: trx.ID, DocumentType: "promise_to_purchase", FileName: "pa-v2.pdf"},
		{TransactionID: trx.ID, DocumentType: "inspection_report", FileName: "insp.pdf"},
		{TransactionID: other.ID, DocumentType: "deed_of_sale", FileName: "deed.pdf"},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	docs, err := repo.ListByTransactionID(dbc, trx.ID)
	if err != nil {
		t.Fatalf("ListByTransactionID: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("ListByTransactionID: want=3 got=%d", len(docs))
	}

	set, err := repo.DocumentTypes(dbc, trx.ID)
	if err != nil {
		t.Fatalf("DocumentTypes: %v", err)
	}
	if len(set) != 2 || !set["promise_to_purchase"] || !set["inspection_report"] {
		t.Fatalf("DocumentTypes: unexpected set: %+v", set)
	}
	if set["deed_of_sale"] {
		t.Fatalf("DocumentTypes: leaked other transaction's document")
	}
}
