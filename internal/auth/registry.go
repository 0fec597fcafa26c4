// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// RoleRegistry manages role definitions.
type RoleRegistry struct {
	roles  RoleRepository
	logger *slog.Logger
}

// NewRoleRegistry creates a new RoleRegistry.
func NewRoleRegistry(roles RoleRepository) (*RoleRegistry, error) {
	return NewRoleRegistryWithLogger(roles, nil)
}

// NewRoleRegistryWithLogger creates a new RoleRegistry with a logger.
// A nil logger discards output.
func NewRoleRegistryWithLogger(roles RoleRepository, logger *slog.Logger) (*RoleRegistry, error) {
	if roles == nil {
		return nil, oops.Code("ROLE_REGISTRY_INVALID").Errorf("role repository is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RoleRegistry{roles: roles, logger: logger}, nil
}

// CreateRole validates and stores a new active role.
func (r *RoleRegistry) CreateRole(ctx context.Context, name, description string, level int) (*Role, error) {
	role, err := NewRole(name, description, level)
	if err != nil {
		return nil, err
	}

	if _, err := r.roles.GetByName(ctx, role.Name); err == nil {
		return nil, roleNameTaken(role.Name)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, storeFailure("get role by name", err)
	}

	if err := r.roles.Create(ctx, role); err != nil {
		if errors.Is(err, ErrDuplicateRoleName) {
			return nil, roleNameTaken(role.Name)
		}
		return nil, storeFailure("create role", err)
	}

	r.logger.Info("role_created",
		"role_id", role.ID.String(),
		"name", role.Name,
		"permission_level", role.PermissionLevel)
	return role, nil
}

// ListActiveRoles returns active roles ordered by permission level.
func (r *RoleRegistry) ListActiveRoles(ctx context.Context) ([]*Role, error) {
	roles, err := r.roles.ListActive(ctx)
	if err != nil {
		return nil, storeFailure("list active roles", err)
	}
	return roles, nil
}

// GetRole retrieves a role by ID.
func (r *RoleRegistry) GetRole(ctx context.Context, id ulid.ULID) (*Role, error) {
	role, err := r.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeNotFound).With("role_id", id.String()).Wrap(ErrNotFound)
		}
		return nil, storeFailure("get role", err)
	}
	return role, nil
}

// GetRoleByName retrieves a role by name.
func (r *RoleRegistry) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	role, err := r.roles.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeNotFound).With("role_name", name).Wrap(ErrNotFound)
		}
		return nil, storeFailure("get role by name", err)
	}
	return role, nil
}

// EmployeeRole returns the single active role at LevelEmployee.
func (r *RoleRegistry) EmployeeRole(ctx context.Context) (*Role, error) {
	return employeeRole(ctx, r.roles)
}

func employeeRole(ctx context.Context, roles RoleRepository) (*Role, error) {
	active, err := roles.ListActive(ctx)
	if err != nil {
		return nil, storeFailure("list active roles", err)
	}

	var found *Role
	for _, role := range active {
		if role.PermissionLevel != LevelEmployee {
			continue
		}
		if found != nil {
			return nil, oops.Code(CodeEmployeeRole).
				With("first", found.Name).
				With("second", role.Name).
				Wrap(ErrEmployeeRoleAmbiguous)
		}
		found = role
	}
	if found == nil {
		return nil, oops.Code(CodeEmployeeRole).With("level", LevelEmployee).Wrap(ErrEmployeeRoleMissing)
	}
	return found, nil
}

func roleNameTaken(name string) error {
	return oops.Code(CodeRoleNameTaken).With("name", name).Wrap(ErrDuplicateRoleName)
}
