// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
)

// Compile-time interface check.
var _ auth.RoleRepository = (*RoleStore)(nil)

// RoleStore is a concurrency-safe in-memory auth.RoleRepository.
type RoleStore struct {
	mu     sync.RWMutex
	byID   map[ulid.ULID]auth.Role
	byName map[string]ulid.ULID
}

// NewRoleStore creates an empty RoleStore.
func NewRoleStore() *RoleStore {
	return &RoleStore{
		byID:   make(map[ulid.ULID]auth.Role),
		byName: make(map[string]ulid.ULID),
	}
}

// Create stores a new role.
func (s *RoleStore) Create(_ context.Context, role *auth.Role) error {
	if role == nil {
		return oops.Code("ROLE_INVALID").Errorf("role cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(role.Name)
	if _, taken := s.byName[key]; taken {
		return oops.Code("ROLE_NAME_TAKEN").With("name", role.Name).Wrap(auth.ErrDuplicateRoleName)
	}
	s.byID[role.ID] = *role
	s.byName[key] = role.ID
	return nil
}

// GetByID retrieves a role by ID.
func (s *RoleStore) GetByID(_ context.Context, id ulid.ULID) (*auth.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.byID[id]
	if !ok {
		return nil, oops.Code("ROLE_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return &role, nil
}

// GetByName retrieves a role by name (case-insensitive).
func (s *RoleStore) GetByName(_ context.Context, name string) (*auth.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, oops.Code("ROLE_NOT_FOUND").With("name", name).Wrap(auth.ErrNotFound)
	}
	role := s.byID[id]
	return &role, nil
}

// ListActive returns active roles ordered by permission level, then name.
func (s *RoleStore) ListActive(_ context.Context) ([]*auth.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*auth.Role, 0, len(s.byID))
	for _, role := range s.byID {
		if !role.Active {
			continue
		}
		r := role
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PermissionLevel != out[j].PermissionLevel {
			return out[i].PermissionLevel < out[j].PermissionLevel
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// SetActive sets a role's active flag. Roles are never deleted.
func (s *RoleStore) SetActive(_ context.Context, id ulid.ULID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.byID[id]
	if !ok {
		return oops.Code("ROLE_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	role.Active = active
	s.byID[id] = role
	return nil
}
