package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/brokerage-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brokerage-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.User{
		{
			ID:        uuid.New(),
			Email:     "userrepo@example.com",
			FirstName: "Marie",
			LastName:  "Tremblay",
			Role:      "broker",
		},
		{
			ID:    uuid.New(),
			Email: "noname@example.com",
			Role:  "assistant",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("Create: expected 2 users, got %d", len(created))
	}

	got, err := repo.GetByID(ctx, tx, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.ID != created[0].ID {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	missing, err := repo.GetByID(ctx, tx, uuid.New())
	if err != nil {
		t.Fatalf("GetByID(missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByID(missing): expected nil, got %+v", missing)
	}

	names, err := repo.DisplayNames(ctx, tx, []uuid.UUID{created[0].ID, created[1].ID, created[0].ID, uuid.Nil})
	if err != nil {
		t.Fatalf("DisplayNames: %v", err)
	}
	if names[created[0].ID] != "Marie Tremblay" {
		t.Fatalf("DisplayNames: want=%q got=%q", "Marie Tremblay", names[created[0].ID])
	}
	if names[created[1].ID] != "noname@example.com" {
		t.Fatalf("DisplayNames fallback: want=%q got=%q", "noname@example.com", names[created[1].ID])
	}
}
