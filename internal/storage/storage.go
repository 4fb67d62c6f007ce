package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/eros-desk/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// CredentialStore resolves identities for login.
type CredentialStore interface {
	// FindByEmail matches case-insensitively on the unique email index.
	FindByEmail(ctx context.Context, email string) (models.Identity, error)
	UpdateLastAuthenticatedAt(ctx context.Context, id string, at time.Time) error
}

// CreatorProfileLookup maps a login identity to the creator profile it owns.
type CreatorProfileLookup interface {
	// FindCreatorProfileByIdentityID returns ErrNotFound when the identity has no profile.
	FindCreatorProfileByIdentityID(ctx context.Context, identityID string) (string, error)
}

// IdentityStore captures user administration.
type IdentityStore interface {
	CreateIdentity(ctx context.Context, identity models.Identity) (models.Identity, error)
	ListIdentities(ctx context.Context) ([]models.Identity, error)
}

// TicketStore executes ticket listings narrowed by a DataScope.
type TicketStore interface {
	ListTickets(ctx context.Context, scope models.DataScope) ([]models.Ticket, error)
}

// TicketWriter creates and changes tickets. Updates and deletes only touch
// tickets inside scope; anything else reports ErrNotFound.
type TicketWriter interface {
	// CreateTicket returns ErrNotFound when the referenced creator does not exist.
	CreateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id string, status models.TicketStatus, scope models.DataScope) (models.Ticket, error)
	DeleteTicket(ctx context.Context, id string, scope models.DataScope) error
}

// CreatorStore executes creator listings narrowed by a DataScope.
type CreatorStore interface {
	ListCreators(ctx context.Context, scope models.DataScope) ([]models.Creator, error)
}

// CreatorWriter creates and renames creator profiles.
type CreatorWriter interface {
	// CreateCreator returns ErrAlreadyExists when the login is already linked
	// to a profile, and ErrNotFound when the login does not exist.
	CreateCreator(ctx context.Context, creator models.Creator) (models.Creator, error)
	UpdateCreator(ctx context.Context, id, name string, scope models.DataScope) (models.Creator, error)
}

// Store is everything the HTTP surface needs from persistence.
type Store interface {
	CredentialStore
	CreatorProfileLookup
	IdentityStore
	TicketStore
	TicketWriter
	CreatorStore
	CreatorWriter
}
