package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/eros-desk/internal/models"
	"github.com/hongminglow/eros-desk/internal/storage"
)

// dummyHash is compared against when there is no usable stored hash, so every
// credential rejection costs one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("eros-desk-no-such-identity"), bcrypt.DefaultCost)

// Verifier checks email/password pairs against the credential store.
type Verifier struct {
	store   storage.CredentialStore
	logger  *zap.Logger
	now     func() time.Time
	compare func(hash, password []byte) error
}

// NewVerifier constructs a verifier. A nil logger disables logging.
func NewVerifier(store storage.CredentialStore, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{store: store, logger: logger, now: time.Now, compare: bcrypt.CompareHashAndPassword}
}

// Verify returns the identity owning the credentials. Rejections are typed
// (NotFound, Deactivated, BadCredentials) for logging; use PublicMessage before
// showing them to a user. Store failures are Unavailable.
func (v *Verifier) Verify(ctx context.Context, email, password string) (models.Identity, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		v.burnCompare(password)
		return models.Identity{}, newError(KindNotFound, "empty email", nil)
	}

	identity, err := v.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			v.burnCompare(password)
			return models.Identity{}, newError(KindNotFound, "no identity for email", nil)
		}
		return models.Identity{}, newError(KindUnavailable, "lookup identity", err)
	}
	if !identity.Active {
		v.burnCompare(password)
		return models.Identity{}, newError(KindDeactivated, "identity is deactivated", nil)
	}
	if err := v.compare([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return models.Identity{}, newError(KindBadCredentials, "password mismatch", nil)
	}

	now := v.now().UTC()
	if err := v.store.UpdateLastAuthenticatedAt(ctx, identity.ID, now); err != nil {
		v.logger.Warn("record last authentication failed",
			zap.String("identity_id", identity.ID), zap.Error(err))
	} else {
		identity.LastAuthenticatedAt = &now
	}
	return identity, nil
}

// burnCompare spends the same work as a real password check and discards the result.
func (v *Verifier) burnCompare(password string) {
	_ = v.compare(dummyHash, []byte(password))
}

// HashPassword produces the bcrypt hash stored for a new identity.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
