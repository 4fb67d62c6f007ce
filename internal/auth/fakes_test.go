package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/eros-desk/internal/models"
	"github.com/hongminglow/eros-desk/internal/storage"
)

var errStoreDown = errors.New("connection refused")

type memoryStore struct {
	mu         sync.Mutex
	identities map[string]models.Identity
	profiles   map[string]string
	lastAuth   map[string]time.Time
	findErr    error
	updateErr  error
	profileErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		identities: map[string]models.Identity{},
		profiles:   map[string]string{},
		lastAuth:   map[string]time.Time{},
	}
}

func (s *memoryStore) add(identity models.Identity, password string) models.Identity {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	identity.PasswordHash = string(hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[models.NormalizeEmail(identity.Email)] = identity
	return identity
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return models.Identity{}, s.findErr
	}
	identity, ok := s.identities[models.NormalizeEmail(email)]
	if !ok {
		return models.Identity{}, storage.ErrNotFound
	}
	return identity, nil
}

func (s *memoryStore) UpdateLastAuthenticatedAt(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.lastAuth[id] = at
	return nil
}

func (s *memoryStore) FindCreatorProfileByIdentityID(_ context.Context, identityID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileErr != nil {
		return "", s.profileErr
	}
	id, ok := s.profiles[identityID]
	if !ok {
		return "", storage.ErrNotFound
	}
	return id, nil
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: map[string]time.Time{}}
}

func (r *memoryRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.revoked[tokenID] = until
	return nil
}

func (r *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[tokenID]
	return ok, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
