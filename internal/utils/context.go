package utils

import (
	"context"
	"time"
)

type contextKey string

const ContextAccountIDKey contextKey = "accountID"

func GetAccountIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(ContextAccountIDKey).(uint)
	return id, ok
}

// SessionData is the minimal session view the middleware needs, kept here so
// the middleware package does not import auth.
type SessionData struct {
	AccountID uint
	LastSeen  time.Time
}
