package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/eros-desk/internal/auth"
	"github.com/hongminglow/eros-desk/internal/http/respond"
	"github.com/hongminglow/eros-desk/internal/http/sessioncookie"
	"github.com/hongminglow/eros-desk/internal/metrics"
	"github.com/hongminglow/eros-desk/internal/models"
)

// RefreshedTokenHeader carries a re-issued token to bearer clients.
const RefreshedTokenHeader = "X-Session-Token"

// SessionResumer turns a client token into a session.
type SessionResumer interface {
	Resume(ctx context.Context, token string) (auth.ResumeResult, error)
}

// Sessions resolves the caller's session, applies sliding refresh, and gates
// the route before handing off to next.
type Sessions struct {
	resumer      SessionResumer
	gate         *auth.Gate
	secureCookie bool
	logger       *zap.Logger
}

// NewSessions builds the session middleware.
func NewSessions(resumer SessionResumer, gate *auth.Gate, secureCookie bool, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{resumer: resumer, gate: gate, secureCookie: secureCookie, logger: logger}
}

// Wrap returns the wrapped HTTP handler.
func (s *Sessions) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, fromCookie := tokenFromRequest(r)

		var session *models.Session
		if token != "" {
			result, err := s.resumer.Resume(r.Context(), token)
			switch {
			case err == nil:
				session = &result.Session
				if result.RefreshedToken != "" {
					sessioncookie.Set(w, result.RefreshedToken, result.Session.ExpiresAt, s.secureCookie)
					w.Header().Set(RefreshedTokenHeader, result.RefreshedToken)
				}
			case auth.IsUnauthenticated(err):
				s.logger.Debug("discarding session token",
					zap.String("path", r.URL.Path), zap.String("kind", string(auth.KindOf(err))))
				if fromCookie {
					sessioncookie.Clear(w, s.secureCookie)
				}
			case s.gate.Protects(r.URL.Path):
				respond.AuthError(w, s.logger, err)
				return
			default:
				// Unprotected paths continue anonymously so logout still clears the cookie.
				s.logger.Warn("session check unavailable; continuing anonymously",
					zap.String("path", r.URL.Path), zap.Error(err))
			}
		}

		if session != nil {
			r = r.WithContext(auth.WithSession(r.Context(), *session))
			recordIdentity(r)
		}

		decision := s.gate.AuthorizeRoute(session, r.URL.Path)
		metrics.RecordRouteDecision(decision.Outcome.String())
		if decision.Outcome == auth.Redirect {
			http.Redirect(w, r, decision.Location, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// tokenFromRequest prefers a bearer header over the cookie.
func tokenFromRequest(r *http.Request) (token string, fromCookie bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token, false
		}
	}
	if token := sessioncookie.Read(r); token != "" {
		return token, true
	}
	return "", false
}
