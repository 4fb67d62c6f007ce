package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/eros-desk/internal/auth"
	"github.com/hongminglow/eros-desk/internal/http/respond"
	"github.com/hongminglow/eros-desk/internal/models"
	"github.com/hongminglow/eros-desk/internal/storage"
)

var _ storage.Store = (*memoryStore)(nil)

type memoryStore struct {
	mu         sync.Mutex
	identities map[string]models.Identity
	profiles   map[string]string
	tickets    []models.Ticket
	creators   []models.Creator
	listErr    error
	profileErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{identities: map[string]models.Identity{}, profiles: map[string]string{}}
}

func (s *memoryStore) addIdentity(identity models.Identity, password string) models.Identity {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	identity.PasswordHash = string(hash)
	identity.Email = models.NormalizeEmail(identity.Email)
	s.mu.Lock()
	s.identities[identity.ID] = identity
	s.mu.Unlock()
	return identity
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, identity := range s.identities {
		if identity.Email == models.NormalizeEmail(email) {
			return identity, nil
		}
	}
	return models.Identity{}, storage.ErrNotFound
}

func (s *memoryStore) UpdateLastAuthenticatedAt(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[id]
	if !ok {
		return storage.ErrNotFound
	}
	identity.LastAuthenticatedAt = &at
	s.identities[id] = identity
	return nil
}

func (s *memoryStore) FindCreatorProfileByIdentityID(_ context.Context, identityID string) (string, error) {
	if s.profileErr != nil {
		return "", s.profileErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.profiles[identityID]; ok {
		return id, nil
	}
	return "", storage.ErrNotFound
}

func (s *memoryStore) CreateIdentity(_ context.Context, identity models.Identity) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.identities {
		if existing.Email == identity.Email {
			return models.Identity{}, storage.ErrAlreadyExists
		}
	}
	identity.ID = "id-" + identity.Email
	identity.CreatedAt = time.Now()
	s.identities[identity.ID] = identity
	return identity, nil
}

func (s *memoryStore) ListIdentities(context.Context) ([]models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Identity, 0, len(s.identities))
	for _, identity := range s.identities {
		out = append(out, identity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *memoryStore) ListTickets(_ context.Context, scope models.DataScope) ([]models.Ticket, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []models.Ticket{}
	for _, ticket := range s.tickets {
		if scope.Matches(ticket) {
			out = append(out, ticket)
		}
	}
	return out, nil
}

func (s *memoryStore) ListCreators(_ context.Context, scope models.DataScope) ([]models.Creator, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []models.Creator{}
	for _, creator := range s.creators {
		if scope.MatchesCreator(creator) {
			out = append(out, creator)
		}
	}
	return out, nil
}

func (s *memoryStore) CreateTicket(_ context.Context, ticket models.Ticket) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasCreator(ticket.CreatorID) {
		return models.Ticket{}, storage.ErrNotFound
	}
	ticket.ID = fmt.Sprintf("t%d", len(s.tickets)+1)
	ticket.CreatedAt = time.Now()
	s.tickets = append(s.tickets, ticket)
	return ticket, nil
}

func (s *memoryStore) UpdateTicketStatus(_ context.Context, id string, status models.TicketStatus, scope models.DataScope) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ticket := range s.tickets {
		if ticket.ID == id && scope.Matches(ticket) {
			s.tickets[i].Status = status
			return s.tickets[i], nil
		}
	}
	return models.Ticket{}, storage.ErrNotFound
}

func (s *memoryStore) DeleteTicket(_ context.Context, id string, scope models.DataScope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ticket := range s.tickets {
		if ticket.ID == id && scope.Matches(ticket) {
			s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *memoryStore) CreateCreator(_ context.Context, creator models.Creator) (models.Creator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if creator.IdentityID != nil {
		if _, ok := s.identities[*creator.IdentityID]; !ok {
			return models.Creator{}, storage.ErrNotFound
		}
		for _, existing := range s.creators {
			if existing.IdentityID != nil && *existing.IdentityID == *creator.IdentityID {
				return models.Creator{}, storage.ErrAlreadyExists
			}
		}
	}
	creator.ID = fmt.Sprintf("cr-%d", len(s.creators)+1)
	creator.CreatedAt = time.Now()
	s.creators = append(s.creators, creator)
	return creator, nil
}

func (s *memoryStore) UpdateCreator(_ context.Context, id, name string, scope models.DataScope) (models.Creator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, creator := range s.creators {
		if creator.ID == id && scope.MatchesCreator(creator) {
			s.creators[i].Name = name
			return s.creators[i], nil
		}
	}
	return models.Creator{}, storage.ErrNotFound
}

func (s *memoryStore) hasCreator(id string) bool {
	for _, creator := range s.creators {
		if creator.ID == id {
			return true
		}
	}
	return false
}

var errStoreDown = errors.New("connection refused")

func newGate(store *memoryStore) *auth.Gate {
	return auth.NewGate(auth.DefaultPermissionTable(), store, auth.DefaultGateOptions())
}

// serveAs runs handler with session attached to the request context.
func serveAs(t *testing.T, h http.Handler, session *models.Session, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if session != nil {
		req = req.WithContext(auth.WithSession(req.Context(), *session))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) (respond.Envelope, T) {
	t.Helper()
	var raw struct {
		respond.Envelope
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	var data T
	if len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, &data))
	}
	return respond.Envelope{Code: raw.Code, Message: raw.Message}, data
}

func sessionFor(id string, role models.Role) *models.Session {
	return &models.Session{IdentityID: id, Role: role, IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
}
