package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/brokerage-backend/internal/data/repos"
	"github.com/yungbote/brokerage-backend/internal/platform/ctxutil"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

type JWTClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

type AuthService interface {
	// SetContextFromToken verifies an HS256 access token and attaches the
	// actor to ctx.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	// IssueToken signs an access token for userID. Used by tooling and tests;
	// login lives outside this service.
	IssueToken(userID uuid.UUID, roles []string) (string, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) IssueToken(userID uuid.UUID, roles []string) (string, error) {
	if as.jwtSecretKey == "" {
		return "", fmt.Errorf("jwt secret not configured")
	}
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired JWT token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}

	roles := cleanRoles(claims.Roles)
	if len(roles) == 0 && as.userRepo != nil {
		// Tokens minted without a roles claim fall back to the directory role.
		u, err := as.userRepo.GetByID(ctx, as.db, userID)
		if err != nil {
			as.log.Warn("Role lookup failed", "user_id", userID.String(), "error", err)
		} else if u != nil {
			roles = cleanRoles([]string{u.Role})
		}
	}

	rd := ctxutil.GetRequestData(ctx)
	next := &ctxutil.RequestData{}
	if rd != nil {
		*next = *rd
	}
	next.TokenString = tokenString
	next.UserID = userID
	next.Roles = roles
	return ctxutil.WithRequestData(ctx, next), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func cleanRoles(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			out = append(out, r)
		}
	}
	return out
}
