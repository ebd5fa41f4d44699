package ctxutil

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData is the authenticated actor plus request provenance.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	Roles       []string
	IPAddress   string
	UserAgent   string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// HasRole reports whether the request actor holds role (case-insensitive).
func (rd *RequestData) HasRole(role string) bool {
	if rd == nil {
		return false
	}
	role = strings.TrimSpace(role)
	for _, r := range rd.Roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
