package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/brokerage-backend/internal/data/repos"
	"github.com/yungbote/brokerage-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brokerage-backend/internal/domain"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
)

type spyDispatcher struct {
	mu   sync.Mutex
	err  error
	seen []uint
}

func (d *spyDispatcher) Name() string { return "spy" }

func (d *spyDispatcher) Dispatch(_ context.Context, intent *types.ActionIntent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, intent.ID)
	return d.err
}

type relayFixture struct {
	db      *gorm.DB
	intents repos.ActionIntentRepo
	spy     *spyDispatcher
	relay   *ActionIntentRelay
	now     time.Time
}

func newRelayFixture(t *testing.T, cfg ActionIntentRelayConfig) *relayFixture {
	t.Helper()
	db := testutil.DB(t)
	if testutil.IsPostgres(db) {
		t.Skip("the relay claims every due intent in the database")
	}
	log := testutil.Logger(t)
	f := &relayFixture{
		db:      db,
		intents: repos.NewActionIntentRepo(db, log),
		spy:     &spyDispatcher{},
		now:     time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
	}
	f.relay = NewActionIntentRelay(db, log, f.intents, f.spy, nil, cfg)
	f.relay.now = func() time.Time { return f.now }
	return f
}

func (f *relayFixture) seedIntent(t *testing.T, kind types.ActionIntentKind, due time.Time) *types.ActionIntent {
	t.Helper()
	rows, err := f.intents.Create(dbctx.Context{Ctx: context.Background()}, []*types.ActionIntent{{
		TransactionID: 1,
		CompletionID:  1,
		ActionCode:    "publish_listing",
		Kind:          kind,
		Payload:       datatypes.JSON([]byte(`{"transaction_id":1}`)),
		NextAttemptAt: due,
	}})
	if err != nil {
		t.Fatalf("seed intent: %v", err)
	}
	return rows[0]
}

func (f *relayFixture) reload(t *testing.T, id uint) types.ActionIntent {
	t.Helper()
	var row types.ActionIntent
	if err := f.db.First(&row, id).Error; err != nil {
		t.Fatalf("reload intent %d: %v", id, err)
	}
	return row
}

func TestRelayDispatchesDueIntents(t *testing.T) {
	f := newRelayFixture(t, ActionIntentRelayConfig{})
	due := f.seedIntent(t, types.IntentNotification, f.now.Add(-time.Minute))
	later := f.seedIntent(t, types.IntentDocument, f.now.Add(time.Hour))

	n, err := f.relay.RunOnce(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("RunOnce: want=1 got=%d err=%v", n, err)
	}
	if len(f.spy.seen) != 1 || f.spy.seen[0] != due.ID {
		t.Fatalf("dispatched: want=[%d] got=%v", due.ID, f.spy.seen)
	}

	row := f.reload(t, due.ID)
	if row.Status != types.IntentDispatched || row.Attempts != 1 || row.DispatchedAt == nil {
		t.Fatalf("dispatched row: status=%s attempts=%d dispatched_at=%v", row.Status, row.Attempts, row.DispatchedAt)
	}
	if row := f.reload(t, later.ID); row.Status != types.IntentPending || row.Attempts != 0 {
		t.Fatalf("future intent touched: status=%s attempts=%d", row.Status, row.Attempts)
	}

	// Nothing left to claim.
	if n, err := f.relay.RunOnce(context.Background()); err != nil || n != 0 {
		t.Fatalf("second pass: want=0 got=%d err=%v", n, err)
	}
}

func TestRelayRetriesThenGivesUp(t *testing.T) {
	f := newRelayFixture(t, ActionIntentRelayConfig{MaxAttempts: 2, RetryBase: 10 * time.Second})
	f.spy.err = errors.New("smtp unavailable")
	it := f.seedIntent(t, types.IntentNotification, f.now)

	if _, err := f.relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	row := f.reload(t, it.ID)
	if row.Status != types.IntentPending || row.Attempts != 1 || row.LastError != "smtp unavailable" {
		t.Fatalf("after first failure: status=%s attempts=%d last_error=%q", row.Status, row.Attempts, row.LastError)
	}
	if want := f.now.Add(10 * time.Second); !row.NextAttemptAt.Equal(want) {
		t.Fatalf("next attempt: want=%v got=%v", want, row.NextAttemptAt)
	}

	// Not due yet.
	if n, _ := f.relay.RunOnce(context.Background()); n != 0 {
		t.Fatalf("claimed before retry time: %d", n)
	}

	f.now = f.now.Add(11 * time.Second)
	if n, err := f.relay.RunOnce(context.Background()); err != nil || n != 1 {
		t.Fatalf("retry pass: want=1 got=%d err=%v", n, err)
	}
	row = f.reload(t, it.ID)
	if row.Status != types.IntentFailed || row.Attempts != 2 {
		t.Fatalf("after final failure: status=%s attempts=%d", row.Status, row.Attempts)
	}

	f.now = f.now.Add(24 * time.Hour)
	if n, _ := f.relay.RunOnce(context.Background()); n != 0 {
		t.Fatalf("failed intent reclaimed: %d", n)
	}
}

func TestRelayBackoff(t *testing.T) {
	r := &ActionIntentRelay{cfg: ActionIntentRelayConfig{RetryBase: 5 * time.Second}.withDefaults()}
	cases := map[int]time.Duration{
		1:  5 * time.Second,
		2:  10 * time.Second,
		4:  40 * time.Second,
		20: time.Hour,
	}
	for attempt, want := range cases {
		if got := r.backoff(attempt); got != want {
			t.Fatalf("backoff(%d): want=%v got=%v", attempt, want, got)
		}
	}
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	f := newRelayFixture(t, ActionIntentRelayConfig{PollInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.relay.Run(ctx); err != nil {
		t.Fatalf("Run after cancel: %v", err)
	}

	var unset *ActionIntentRelay
	if err := unset.Run(context.Background()); err == nil {
		t.Fatalf("nil relay should report misconfiguration")
	}
}

func TestLoggingIntentDispatcher(t *testing.T) {
	d := NewLoggingIntentDispatcher(testutil.Logger(t))
	if d.Name() != "log" {
		t.Fatalf("name: want=log got=%q", d.Name())
	}
	if err := d.Dispatch(context.Background(), &types.ActionIntent{ID: 3, Kind: types.IntentDocument}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if err := d.Dispatch(context.Background(), nil); err == nil {
		t.Fatalf("nil intent should fail")
	}
}
