package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/brokerage-backend/internal/data/aggregates"
	"github.com/yungbote/brokerage-backend/internal/data/repos"
	"github.com/yungbote/brokerage-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brokerage-backend/internal/domain"
	domainagg "github.com/yungbote/brokerage-backend/internal/domain/aggregates"
	"github.com/yungbote/brokerage-backend/internal/platform/ctxutil"
)

type actionServiceFixture struct {
	db  *gorm.DB
	svc TransactionActionService
	now time.Time
}

func newActionServiceFixture(t *testing.T) *actionServiceFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &actionServiceFixture{db: db, now: time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)}

	transactions := repos.NewTransactionRepo(db, log)
	definitions := repos.NewActionDefinitionRepo(db, log)
	completions := repos.NewActionCompletionRepo(db, log)
	engine := aggregates.NewTransactionActionAggregate(aggregates.TransactionActionAggregateDeps{
		Base:         aggregates.BaseDeps{DB: db, Log: log},
		Transactions: transactions,
		Documents:    repos.NewTransactionDocumentRepo(db, log),
		Definitions:  definitions,
		Completions:  completions,
		Intents:      repos.NewActionIntentRepo(db, log),
		Now:          func() time.Time { return f.now },
	})
	f.svc = NewTransactionActionService(db, log, engine, transactions, definitions, completions, repos.NewUserRepo(db, log))

	catalog := NewActionCatalogService(db, log, definitions, transactions, nil, nil)
	if _, err := catalog.SeedActions(context.Background()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return f
}

func actorContext(userID uuid.UUID, roles ...string) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:    userID,
		Roles:     roles,
		IPAddress: "10.0.0.7",
		UserAgent: "courtier-app/2.1",
	})
}

func TestExecuteActionRequiresRequestData(t *testing.T) {
	f := newActionServiceFixture(t)
	_, err := f.svc.ExecuteAction(context.Background(), ExecuteActionRequest{TransactionID: 1, ActionCode: "publish_listing"})
	if err == nil || !strings.Contains(err.Error(), "request data not set") {
		t.Fatalf("ExecuteAction without actor: want request data error got %v", err)
	}
}

func TestExecuteActionPublishesListing(t *testing.T) {
	f := newActionServiceFixture(t)
	user := testutil.SeedUser(t, context.Background(), f.db, "jean+"+uuid.NewString()+"@example.com", "broker")
	trx := testutil.SeedTransaction(t, context.Background(), f.db, user.ID, types.StatusInProgress, func(row *types.Transaction) {
		row.PropertyAddress = "123 rue Principale"
	})

	res, err := f.svc.ExecuteAction(actorContext(user.ID, "broker"), ExecuteActionRequest{
		TransactionID: trx.ID,
		ActionCode:    "  publish_listing ",
		Data:          map[string]any{"listing_price": 450000},
		Notes:         testutil.PtrString("  Photos prêtes  "),
	})
	if err != nil {
		t.Fatalf("ExecuteAction: %v", err)
	}
	if !res.Success || res.CompletionID == 0 {
		t.Fatalf("response: success=%v completion_id=%d", res.Success, res.CompletionID)
	}
	if res.PreviousStatus != string(types.StatusInProgress) || res.NewStatus != string(types.StatusListed) {
		t.Fatalf("statuses: %q -> %q", res.PreviousStatus, res.NewStatus)
	}
	if res.Version != 1 || res.ActionCount != 1 {
		t.Fatalf("counters: version=%d action_count=%d", res.Version, res.ActionCount)
	}
	if res.Deadline == nil || res.Deadline.Type != "listing_expiry" || res.Deadline.Days != 90 {
		t.Fatalf("deadline: %+v", res.Deadline)
	}
	if want := f.now.AddDate(0, 0, 90); !res.Deadline.DueDate.Equal(want) {
		t.Fatalf("deadline due: want=%v got=%v", want, res.Deadline.DueDate)
	}
	if len(res.IntentIDs) != 1 {
		t.Fatalf("intents: want=1 got=%v", res.IntentIDs)
	}
	if res.Completion.Notes == nil || *res.Completion.Notes != "Photos prêtes" {
		t.Fatalf("completion notes: %v", res.Completion.Notes)
	}
	if res.Completion.CompletedBy != user.ID || res.Completion.ActionCode != "publish_listing" {
		t.Fatalf("completion: %+v", res.Completion)
	}

	var payload map[string]any
	if err := json.Unmarshal(res.Completion.Data, &payload); err != nil {
		t.Fatalf("completion data: %v", err)
	}
	if payload["listing_price"] != float64(450000) {
		t.Fatalf("completion data listing_price: %v", payload["listing_price"])
	}

	var stored types.Transaction
	if err := f.db.First(&stored, trx.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.ListingPrice != 450000 || stored.Status != types.StatusListed {
		t.Fatalf("stored: price=%v status=%q", stored.ListingPrice, stored.Status)
	}

	// Raw JSON keeps the documented "intents" key and an object for data.
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"intents":[`) {
		t.Fatalf("response json: %s", raw)
	}
}

func TestExecuteActionReportsMissingPrerequisites(t *testing.T) {
	f := newActionServiceFixture(t)
	owner := uuid.New()
	trx := testutil.SeedTransaction(t, context.Background(), f.db, owner, types.StatusOfferSubmitted, nil)

	_, err := f.svc.ExecuteAction(actorContext(owner, "broker"), ExecuteActionRequest{
		TransactionID: trx.ID,
		ActionCode:    "accept_offer",
	})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("code: want validation got %q (%v)", domainagg.CodeOf(err), err)
	}
	details := domainagg.DetailsOf(err)
	want := []string{"Champ requis: promise_acceptance_date", "Document requis: promise_to_purchase"}
	if len(details) != len(want) {
		t.Fatalf("details: want=%v got=%v", want, details)
	}
	for i := range want {
		if details[i] != want[i] {
			t.Fatalf("details[%d]: want=%q got=%q", i, want[i], details[i])
		}
	}

	_, err = f.svc.ExecuteAction(actorContext(owner), ExecuteActionRequest{
		TransactionID: trx.ID,
		ActionCode:    "accept_offer",
	})
	if !domainagg.IsCode(err, domainagg.CodeValidation) || len(domainagg.DetailsOf(err)) != 0 {
		t.Fatalf("role check: want plain validation error got %v", err)
	}
}

func TestExecuteActionExpectedVersion(t *testing.T) {
	f := newActionServiceFixture(t)
	owner := uuid.New()
	trx := testutil.SeedTransaction(t, context.Background(), f.db, owner, types.StatusListed, func(row *types.Transaction) {
		row.Version = 3
	})

	_, err := f.svc.ExecuteAction(actorContext(owner), ExecuteActionRequest{
		TransactionID:   trx.ID,
		ActionCode:      "cancel_transaction",
		Data:            map[string]any{"cancellation_reason": "Financement refusé"},
		ExpectedVersion: testutil.PtrInt(2),
	})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("stale version: want conflict got %q (%v)", domainagg.CodeOf(err), err)
	}

	res, err := f.svc.ExecuteAction(actorContext(owner), ExecuteActionRequest{
		TransactionID:   trx.ID,
		ActionCode:      "cancel_transaction",
		Data:            map[string]any{"cancellation_reason": "Financement refusé"},
		ExpectedVersion: testutil.PtrInt(3),
	})
	if err != nil {
		t.Fatalf("matching version: %v", err)
	}
	if res.Version != 4 || res.NewStatus != string(types.StatusCancelled) {
		t.Fatalf("cancel: version=%d status=%q", res.Version, res.NewStatus)
	}
}

func TestHistoryIsNewestFirstAndEnriched(t *testing.T) {
	f := newActionServiceFixture(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, f.db, "histo+"+uuid.NewString()+"@example.com", "broker")
	trx := testutil.SeedTransaction(t, ctx, f.db, user.ID, types.StatusListed, nil)
	ghost := uuid.New()

	older := testutil.SeedCompletion(t, ctx, f.db, trx.ID, "publish_listing", user.ID, f.now.Add(-48*time.Hour))
	newer := testutil.SeedCompletion(t, ctx, f.db, trx.ID, "legacy_code", ghost, f.now.Add(-time.Hour))

	got, err := f.svc.History(ctx, trx.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("History len: want=2 got=%d", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Fatalf("History order: want=[%d %d] got=[%d %d]", newer.ID, older.ID, got[0].ID, got[1].ID)
	}
	if got[1].ActionName != "Publier l'inscription" || got[1].CompletedByName != "Jean Courtier" {
		t.Fatalf("enrichment: name=%q by=%q", got[1].ActionName, got[1].CompletedByName)
	}
	if got[0].ActionName != "" || got[0].CompletedByName != "" {
		t.Fatalf("unknown code/actor should stay unnamed: %+v", got[0])
	}
	if string(got[0].Data) != "{}" {
		t.Fatalf("data: want={} got=%s", got[0].Data)
	}

	empty := testutil.SeedTransaction(t, ctx, f.db, user.ID, types.StatusInProgress, nil)
	rows, err := f.svc.History(ctx, empty.ID)
	if err != nil || rows == nil || len(rows) != 0 {
		t.Fatalf("empty history: rows=%v err=%v", rows, err)
	}

	if _, err := f.svc.History(ctx, 987654); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing transaction: want not_found got %q", domainagg.CodeOf(err))
	}
}
