package auth

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hongminglow/eros-desk/internal/metrics"
	"github.com/hongminglow/eros-desk/internal/models"
)

const tracerName = "github.com/hongminglow/eros-desk/internal/auth"

// RevocationList remembers token ids that were logged out before expiry.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NoRevocation is used when no revocation backend is configured. Logout then
// only clears the client-held cookie.
type NoRevocation struct{}

func (NoRevocation) Revoke(context.Context, string, time.Time) error { return nil }

func (NoRevocation) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// LoginResult is what a successful login hands to the transport.
type LoginResult struct {
	Token    string
	Session  models.Session
	Identity models.Identity
}

// ResumeResult carries the session of a request, and a replacement token when
// the sliding refresh kicked in.
type ResumeResult struct {
	Session        models.Session
	RefreshedToken string
}

// SessionManager runs login, refresh and logout.
type SessionManager struct {
	verifier *Verifier
	tokens   *TokenManager
	revoked  RevocationList
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewSessionManager wires the lifecycle. revoked may be nil.
func NewSessionManager(verifier *Verifier, tokens *TokenManager, revoked RevocationList, logger *zap.Logger) *SessionManager {
	if revoked == nil {
		revoked = NoRevocation{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		verifier: verifier,
		tokens:   tokens,
		revoked:  revoked,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// Tokens exposes the codec, for transports that need the lifetime.
func (m *SessionManager) Tokens() *TokenManager {
	return m.tokens
}

// Login verifies credentials and mints a session token.
func (m *SessionManager) Login(ctx context.Context, email, password string) (LoginResult, error) {
	ctx, span := m.tracer.Start(ctx, "auth.Login")
	defer span.End()

	identity, err := m.verifier.Verify(ctx, email, password)
	if err != nil {
		kind := KindOf(err)
		metrics.RecordLogin(string(kind))
		span.SetStatus(codes.Error, string(kind))
		m.logger.Info("login rejected",
			zap.String("email", models.NormalizeEmail(email)),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return LoginResult{}, err
	}

	token, session, err := m.tokens.Issue(identity)
	if err != nil {
		metrics.RecordLogin(string(KindOf(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, "issue token")
		return LoginResult{}, err
	}

	metrics.RecordLogin("success")
	span.SetAttributes(
		attribute.String("identity.id", identity.ID),
		attribute.String("identity.role", string(identity.Role)),
	)
	m.logger.Info("login succeeded",
		zap.String("identity_id", identity.ID),
		zap.String("role", string(identity.Role)))
	return LoginResult{Token: token, Session: session, Identity: identity}, nil
}

// Resume turns a client token into a session. Expired, malformed and revoked
// tokens all come back as unauthenticated errors.
func (m *SessionManager) Resume(ctx context.Context, token string) (ResumeResult, error) {
	ctx, span := m.tracer.Start(ctx, "auth.Resume")
	defer span.End()

	session, err := m.tokens.Decode(token)
	if err != nil {
		metrics.RecordSessionDecode(string(KindOf(err)))
		return ResumeResult{}, err
	}

	if session.TokenID != "" {
		revoked, err := m.revoked.IsRevoked(ctx, session.TokenID)
		if err != nil {
			metrics.RecordSessionDecode(string(KindUnavailable))
			span.RecordError(err)
			span.SetStatus(codes.Error, "revocation check")
			return ResumeResult{}, newError(KindUnavailable, "check revocation", err)
		}
		if revoked {
			metrics.RecordSessionDecode("revoked")
			return ResumeResult{}, newError(KindExpired, "token was logged out", nil)
		}
	}

	result := ResumeResult{Session: session}
	if m.tokens.NeedsRefresh(session) {
		refreshed, next, err := m.tokens.Reissue(session)
		if err != nil {
			m.logger.Warn("session refresh failed",
				zap.String("identity_id", session.IdentityID), zap.Error(err))
		} else {
			metrics.RecordRefresh()
			result.Session = next
			result.RefreshedToken = refreshed
		}
	}

	metrics.RecordSessionDecode("valid")
	span.SetAttributes(attribute.String("identity.id", session.IdentityID))
	return result, nil
}

// Logout revokes the session's token chain until its expiry. A revocation
// backend failure is logged; the transport still clears the cookie.
func (m *SessionManager) Logout(ctx context.Context, session models.Session) error {
	metrics.RecordLogout()
	if session.TokenID == "" {
		return nil
	}
	if err := m.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		m.logger.Warn("revoke session failed",
			zap.String("identity_id", session.IdentityID), zap.Error(err))
		return newError(KindUnavailable, "revoke session", err)
	}
	m.logger.Info("logout", zap.String("identity_id", session.IdentityID))
	return nil
}
