// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
)

// Compile-time interface check.
var _ auth.CredentialStore = (*PrincipalStore)(nil)

// PrincipalStore is a concurrency-safe in-memory auth.CredentialStore.
type PrincipalStore struct {
	mu         sync.RWMutex
	byID       map[ulid.ULID]*auth.Principal
	byUsername map[string]ulid.ULID
}

// NewPrincipalStore creates an empty PrincipalStore.
func NewPrincipalStore() *PrincipalStore {
	return &PrincipalStore{
		byID:       make(map[ulid.ULID]*auth.Principal),
		byUsername: make(map[string]ulid.ULID),
	}
}

func usernameKey(username string) string {
	return strings.ToLower(username)
}

func principalNotFound(key string, value any) error {
	return oops.Code("PRINCIPAL_NOT_FOUND").With(key, value).Wrap(auth.ErrNotFound)
}

// GetByUsername retrieves a principal by username (case-insensitive).
func (s *PrincipalStore) GetByUsername(_ context.Context, username string) (*auth.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[usernameKey(username)]
	if !ok {
		return nil, principalNotFound("username", username)
	}
	return s.byID[id].Clone(), nil
}

// GetByID retrieves a principal by ID.
func (s *PrincipalStore) GetByID(_ context.Context, id ulid.ULID) (*auth.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, principalNotFound("id", id.String())
	}
	return p.Clone(), nil
}

// Create stores a new principal.
func (s *PrincipalStore) Create(_ context.Context, principal *auth.Principal) error {
	if principal == nil {
		return oops.Code("PRINCIPAL_INVALID").Errorf("principal cannot be nil")
	}
	if principal.PasswordHash == "" || principal.Salt == "" {
		return oops.Code("PRINCIPAL_INVALID").Errorf("password hash and salt are both required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := usernameKey(principal.Username)
	if _, taken := s.byUsername[key]; taken {
		return oops.Code("PRINCIPAL_USERNAME_TAKEN").
			With("username", principal.Username).
			Wrap(auth.ErrDuplicateUsername)
	}
	if _, exists := s.byID[principal.ID]; exists {
		return oops.Code("PRINCIPAL_CREATE_FAILED").
			With("id", principal.ID.String()).
			Errorf("principal ID already exists")
	}

	s.byID[principal.ID] = principal.Clone()
	s.byUsername[key] = principal.ID
	return nil
}

// UpdatePassword replaces the hash and salt in one critical section.
func (s *PrincipalStore) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash, salt string) error {
	if passwordHash == "" || salt == "" {
		return oops.Code("PRINCIPAL_INVALID").Errorf("password hash and salt are both required")
	}
	return s.update(id, func(p *auth.Principal) {
		p.PasswordHash = passwordHash
		p.Salt = salt
	})
}

// SetActive sets the active flag.
func (s *PrincipalStore) SetActive(_ context.Context, id ulid.ULID, active bool) error {
	return s.update(id, func(p *auth.Principal) { p.Active = active })
}

// TouchLastLogin records a successful login time.
func (s *PrincipalStore) TouchLastLogin(_ context.Context, id ulid.ULID, at time.Time) error {
	return s.update(id, func(p *auth.Principal) { p.LastLoginAt = &at })
}

func (s *PrincipalStore) update(id ulid.ULID, fn func(*auth.Principal)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return principalNotFound("id", id.String())
	}
	updated := p.Clone()
	fn(updated)
	s.byID[id] = updated
	return nil
}

// List returns all principals, newest first.
func (s *PrincipalStore) List(_ context.Context) ([]*auth.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*auth.Principal, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Compare(out[j].ID) > 0
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
