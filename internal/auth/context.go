package auth

import (
	"context"

	"github.com/hongminglow/eros-desk/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession stores the decoded session in ctx.
func WithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, &session)
}

// SessionFromContext returns the request's session, or nil when anonymous.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey).(*models.Session)
	return session
}
