package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hongminglow/eros-desk/internal/models"
)

const (
	// DefaultSessionTTL is how long a freshly issued token stays valid.
	DefaultSessionTTL = 30 * 24 * time.Hour
	// DefaultRefreshAfter is the token age after which activity re-issues it.
	DefaultRefreshAfter = 24 * time.Hour
	// MinSecretLength is the smallest accepted HMAC key, in bytes.
	MinSecretLength = 32
)

type sessionClaims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// TokenManager issues and decodes signed session JWTs.
type TokenManager struct {
	secret       []byte
	issuer       string
	ttl          time.Duration
	refreshAfter time.Duration
	now          func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, lifetime and refresh window.
func NewTokenManager(secret []byte, issuer string, ttl, refreshAfter time.Duration) (*TokenManager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if refreshAfter <= 0 {
		refreshAfter = DefaultRefreshAfter
	}
	return &TokenManager{
		secret:       secret,
		issuer:       issuer,
		ttl:          ttl,
		refreshAfter: refreshAfter,
		now:          time.Now,
	}, nil
}

// WithClock overrides the time source. Intended for tests.
func (t *TokenManager) WithClock(now func() time.Time) *TokenManager {
	t.now = now
	return t
}

// TTL returns the session lifetime.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

// Issue signs a new session token for the identity.
func (t *TokenManager) Issue(identity models.Identity) (string, models.Session, error) {
	if identity.ID == "" {
		return "", models.Session{}, newError(KindMalformed, "identity id is empty", nil)
	}
	if !identity.Role.Valid() {
		return "", models.Session{}, newError(KindMalformed, "identity role is invalid", nil)
	}
	return t.sign(identity.ID, identity.Role, uuid.NewString())
}

// Reissue signs a replacement for session with a fresh issue time. The token id
// is kept so a logout revokes every token in the chain.
func (t *TokenManager) Reissue(session models.Session) (string, models.Session, error) {
	tokenID := session.TokenID
	if tokenID == "" {
		tokenID = uuid.NewString()
	}
	return t.sign(session.IdentityID, session.Role, tokenID)
}

// NeedsRefresh reports whether the session is old enough to be re-issued.
func (t *TokenManager) NeedsRefresh(session models.Session) bool {
	return t.now().Sub(session.IssuedAt) > t.refreshAfter
}

func (t *TokenManager) sign(identityID string, role models.Role, tokenID string) (string, models.Session, error) {
	now := t.now().Truncate(time.Second)
	session := models.Session{
		IdentityID: identityID,
		Role:       role,
		TokenID:    tokenID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(t.ttl),
	}
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   identityID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			NotBefore: jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", models.Session{}, newError(KindUnavailable, "sign token", err)
	}
	return signed, session, nil
}

// Decode verifies the signature, issuer and expiry of a token and returns its session.
func (t *TokenManager) Decode(raw string) (models.Session, error) {
	if raw == "" {
		return models.Session{}, newError(KindMalformed, "token is empty", nil)
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Session{}, newError(KindExpired, "token expired", err)
		}
		return models.Session{}, newError(KindMalformed, "parse token", err)
	}
	if claims.Subject == "" || !claims.Role.Valid() || claims.IssuedAt == nil {
		return models.Session{}, newError(KindMalformed, "token claims incomplete", nil)
	}

	session := models.Session{
		IdentityID: claims.Subject,
		Role:       claims.Role,
		TokenID:    claims.ID,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	if !session.ValidAt(t.now()) {
		return models.Session{}, newError(KindExpired, "token expired", nil)
	}
	return session, nil
}
