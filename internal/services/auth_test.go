package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/brokerage-backend/internal/data/repos"
	"github.com/yungbote/brokerage-backend/internal/data/repos/testutil"
	"github.com/yungbote/brokerage-backend/internal/platform/ctxutil"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewAuthService(db, log, repos.NewUserRepo(db, log), "s3cret", time.Minute)

	userID := uuid.New()
	token, err := svc.IssueToken(userID, []string{" Broker ", ""})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	base := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{IPAddress: "10.1.1.1"})
	ctx, err := svc.SetContextFromToken(base, token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != userID || rd.TokenString != token {
		t.Fatalf("request data: %+v", rd)
	}
	if len(rd.Roles) != 1 || rd.Roles[0] != "broker" {
		t.Fatalf("roles: want=[broker] got=%v", rd.Roles)
	}
	if rd.IPAddress != "10.1.1.1" {
		t.Fatalf("provenance dropped: %q", rd.IPAddress)
	}
}

func TestAuthServiceFallsBackToDirectoryRole(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewAuthService(db, log, repos.NewUserRepo(db, log), "s3cret", time.Minute)
	u := testutil.SeedUser(t, context.Background(), db, "notaire+"+uuid.NewString()+"@example.com", "Notary")

	token, err := svc.IssueToken(u.ID, nil)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if rd := ctxutil.GetRequestData(ctx); len(rd.Roles) != 1 || rd.Roles[0] != "notary" {
		t.Fatalf("roles: want=[notary] got=%v", rd.Roles)
	}
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	log := testutil.Logger(t)
	svc := NewAuthService(nil, log, nil, "s3cret", time.Minute)
	other := NewAuthService(nil, log, nil, "other", time.Minute)

	foreign, _ := other.IssueToken(uuid.New(), []string{"admin"})
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredStr, _ := expired.SignedString([]byte("s3cret"))
	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
	})
	badSubjectStr, _ := badSubject.SignedString([]byte("s3cret"))

	cases := map[string]string{
		"empty":       "",
		"garbage":     "abc.def.ghi",
		"wrong key":   foreign,
		"expired":     expiredStr,
		"bad subject": badSubjectStr,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.SetContextFromToken(context.Background(), token); err == nil {
				t.Fatalf("want error")
			}
		})
	}

	if _, err := NewAuthService(nil, log, nil, "", 0).IssueToken(uuid.New(), nil); err == nil {
		t.Fatalf("IssueToken without secret should fail")
	}
}
