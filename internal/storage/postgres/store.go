package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/eros-desk/internal/models"
	"github.com/hongminglow/eros-desk/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for identities, creators and tickets.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity for health reporting.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS identities (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			display_name TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('SUPER_ADMIN', 'MANAGER', 'SCHEDULER', 'CHATTER', 'CREATOR')),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			password_hash TEXT NOT NULL,
			last_authenticated_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS identities_email_lower_idx ON identities (LOWER(email));`,
		`CREATE TABLE IF NOT EXISTS creators (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			identity_id TEXT UNIQUE REFERENCES identities(id) ON DELETE SET NULL,
			created_by_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS tickets (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'OPEN',
			creator_id TEXT NOT NULL REFERENCES creators(id) ON DELETE CASCADE,
			created_by_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS tickets_creator_idx ON tickets (creator_id);`,
		`CREATE INDEX IF NOT EXISTS tickets_created_by_idx ON tickets (created_by_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const identityColumns = `id, email, display_name, role, active, password_hash, last_authenticated_at, created_at`

// FindByEmail fetches an identity by email, ignoring case.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE LOWER(email) = LOWER($1);`
	row := s.pool.QueryRow(ctx, query, strings.TrimSpace(email))
	return scanIdentity(row)
}

// UpdateLastAuthenticatedAt stamps a successful login.
func (s *Store) UpdateLastAuthenticatedAt(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE identities SET last_authenticated_at = $2 WHERE id = $1;`, id, at)
	if err != nil {
		return fmt.Errorf("update last_authenticated_at: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateIdentity inserts a new identity row. The email is stored normalized.
func (s *Store) CreateIdentity(ctx context.Context, identity models.Identity) (models.Identity, error) {
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	query := `
		INSERT INTO identities (id, email, display_name, role, active, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + identityColumns + `;`
	row := s.pool.QueryRow(ctx, query,
		identity.ID,
		models.NormalizeEmail(identity.Email),
		strings.TrimSpace(identity.DisplayName),
		string(identity.Role),
		identity.Active,
		identity.PasswordHash,
	)
	created, err := scanIdentity(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Identity{}, storage.ErrAlreadyExists
		}
		return models.Identity{}, err
	}
	return created, nil
}

// ListIdentities returns every identity ordered by email.
func (s *Store) ListIdentities(ctx context.Context) ([]models.Identity, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+identityColumns+` FROM identities ORDER BY email;`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var out []models.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, identity)
	}
	return out, rows.Err()
}

// FindCreatorProfileByIdentityID returns the creator profile linked to a login.
func (s *Store) FindCreatorProfileByIdentityID(ctx context.Context, identityID string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `SELECT id FROM creators WHERE identity_id = $1;`, identityID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("find creator profile: %w", err)
	}
	return id, nil
}

const (
	ticketColumns  = `id, title, status, creator_id, created_by_id, created_at`
	creatorColumns = `id, name, identity_id, created_by_id, created_at`
)

// ListTickets returns the tickets visible under scope, newest first.
func (s *Store) ListTickets(ctx context.Context, scope models.DataScope) ([]models.Ticket, error) {
	if scope.IsEmpty() {
		return []models.Ticket{}, nil
	}
	conds, args := scopeConditions(scope, "creator_id", "created_by_id", nil)
	query := `SELECT ` + ticketColumns + ` FROM tickets` + where(conds) + ` ORDER BY created_at DESC;`
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListCreators returns the creator profiles visible under scope, by name.
func (s *Store) ListCreators(ctx context.Context, scope models.DataScope) ([]models.Creator, error) {
	if scope.IsEmpty() {
		return []models.Creator{}, nil
	}
	conds, args := scopeConditions(scope, "id", "created_by_id", nil)
	query := `SELECT ` + creatorColumns + ` FROM creators` + where(conds) + ` ORDER BY name;`
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list creators: %w", err)
	}
	defer rows.Close()

	out := []models.Creator{}
	for rows.Next() {
		c, err := scanCreator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCreator inserts a creator profile.
func (s *Store) CreateCreator(ctx context.Context, creator models.Creator) (models.Creator, error) {
	if creator.ID == "" {
		creator.ID = uuid.NewString()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO creators (id, name, identity_id, created_by_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+creatorColumns+`;`,
		creator.ID, strings.TrimSpace(creator.Name), creator.IdentityID, creator.CreatedByID,
	)
	created, err := scanCreator(row)
	if err != nil {
		return models.Creator{}, mapWriteError("create creator", err)
	}
	return created, nil
}

// UpdateCreator renames a creator profile inside scope.
func (s *Store) UpdateCreator(ctx context.Context, id, name string, scope models.DataScope) (models.Creator, error) {
	if scope.IsEmpty() {
		return models.Creator{}, storage.ErrNotFound
	}
	conds, args := scopeConditions(scope, "id", "created_by_id", []any{strings.TrimSpace(name), id})
	conds = append([]string{"id = $2"}, conds...)
	row := s.pool.QueryRow(ctx, `UPDATE creators SET name = $1`+where(conds)+` RETURNING `+creatorColumns+`;`, args...)
	updated, err := scanCreator(row)
	if err != nil {
		return models.Creator{}, mapWriteError("update creator", err)
	}
	return updated, nil
}

// CreateTicket inserts a ticket.
func (s *Store) CreateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error) {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if ticket.Status == "" {
		ticket.Status = models.TicketOpen
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO tickets (id, title, status, creator_id, created_by_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+ticketColumns+`;`,
		ticket.ID, strings.TrimSpace(ticket.Title), string(ticket.Status), ticket.CreatorID, ticket.CreatedByID,
	)
	created, err := scanTicket(row)
	if err != nil {
		return models.Ticket{}, mapWriteError("create ticket", err)
	}
	return created, nil
}

// UpdateTicketStatus moves a ticket inside scope to status.
func (s *Store) UpdateTicketStatus(ctx context.Context, id string, status models.TicketStatus, scope models.DataScope) (models.Ticket, error) {
	if scope.IsEmpty() {
		return models.Ticket{}, storage.ErrNotFound
	}
	conds, args := scopeConditions(scope, "creator_id", "created_by_id", []any{string(status), id})
	conds = append([]string{"id = $2"}, conds...)
	row := s.pool.QueryRow(ctx, `UPDATE tickets SET status = $1`+where(conds)+` RETURNING `+ticketColumns+`;`, args...)
	updated, err := scanTicket(row)
	if err != nil {
		return models.Ticket{}, mapWriteError("update ticket", err)
	}
	return updated, nil
}

// DeleteTicket removes a ticket inside scope.
func (s *Store) DeleteTicket(ctx context.Context, id string, scope models.DataScope) error {
	if scope.IsEmpty() {
		return storage.ErrNotFound
	}
	conds, args := scopeConditions(scope, "creator_id", "created_by_id", []any{id})
	conds = append([]string{"id = $1"}, conds...)
	tag, err := s.pool.Exec(ctx, `DELETE FROM tickets`+where(conds)+`;`, args...)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scopeConditions renders a restricted scope as SQL conditions over the named
// columns. Placeholders are numbered after the args already bound.
func scopeConditions(scope models.DataScope, ownerColumn, createdByColumn string, args []any) ([]string, []any) {
	var conds []string
	if scope.Unrestricted {
		return conds, args
	}
	if scope.OwnerID != nil {
		args = append(args, *scope.OwnerID)
		conds = append(conds, fmt.Sprintf("%s = $%d", ownerColumn, len(args)))
	}
	if scope.CreatedByID != nil {
		args = append(args, *scope.CreatedByID)
		conds = append(conds, fmt.Sprintf("%s = $%d", createdByColumn, len(args)))
	}
	return conds, args
}

func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// mapWriteError translates row-less results and constraint violations into storage sentinels.
func mapWriteError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return storage.ErrAlreadyExists
		case "23503":
			return storage.ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var t models.Ticket
	var status string
	if err := row.Scan(&t.ID, &t.Title, &status, &t.CreatorID, &t.CreatedByID, &t.CreatedAt); err != nil {
		return models.Ticket{}, err
	}
	t.Status = models.TicketStatus(status)
	return t, nil
}

func scanCreator(row pgx.Row) (models.Creator, error) {
	var c models.Creator
	if err := row.Scan(&c.ID, &c.Name, &c.IdentityID, &c.CreatedByID, &c.CreatedAt); err != nil {
		return models.Creator{}, err
	}
	return c, nil
}

func scanIdentity(row pgx.Row) (models.Identity, error) {
	var identity models.Identity
	var role string
	if err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.DisplayName,
		&role,
		&identity.Active,
		&identity.PasswordHash,
		&identity.LastAuthenticatedAt,
		&identity.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Identity{}, storage.ErrNotFound
		}
		return models.Identity{}, err
	}
	identity.Role = models.Role(role)
	return identity, nil
}
