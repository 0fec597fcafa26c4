// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
)

// Permission tiers of the standard roles.
const (
	LevelEmployee      = 3
	LevelManager       = 7
	LevelAdministrator = 10
)

// Role name constraints.
const (
	MinRoleNameLength = 2
	MaxRoleNameLength = 100
)

// Role is a named permission level.
type Role struct {
	ID              ulid.ULID
	Name            string
	Description     string
	PermissionLevel int
	Active          bool
	CreatedAt       time.Time
}

// NewRole creates an active Role with a validated name and level.
func NewRole(name, description string, level int) (*Role, error) {
	name = strings.TrimSpace(name)
	if err := ValidateRoleName(name); err != nil {
		return nil, err
	}
	if err := ValidatePermissionLevel(level); err != nil {
		return nil, err
	}
	return &Role{
		ID:              ulid.Make(),
		Name:            name,
		Description:     strings.TrimSpace(description),
		PermissionLevel: level,
		Active:          true,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// ValidateRoleName checks role name length.
func ValidateRoleName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < MinRoleNameLength {
		return validationError("name", fmt.Sprintf("role name must be at least %d characters", MinRoleNameLength))
	}
	if n > MaxRoleNameLength {
		return validationError("name", fmt.Sprintf("role name must be at most %d characters", MaxRoleNameLength))
	}
	return nil
}

// ValidatePermissionLevel checks that level is within the access bounds.
func ValidatePermissionLevel(level int) error {
	if !access.ValidLevel(level) {
		return validationError("permission_level",
			fmt.Sprintf("permission level must be between %d and %d", access.MinLevel, access.MaxLevel))
	}
	return nil
}

// RoleRepository persists roles.
type RoleRepository interface {
	// Create stores a new role. A taken name wraps ErrDuplicateRoleName.
	Create(ctx context.Context, role *Role) error

	// GetByID retrieves a role by ID, active or not.
	GetByID(ctx context.Context, id ulid.ULID) (*Role, error)

	// GetByName retrieves a role by name (case-insensitive).
	GetByName(ctx context.Context, name string) (*Role, error)

	// ListActive returns active roles ordered by permission level, then name.
	ListActive(ctx context.Context) ([]*Role, error)
}
