// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package authtest

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
	"github.com/dani6777-2/EcoTechSolutions/internal/auth/memory"
)

// Fixture is a Service over in-memory stores seeded with the standard roles.
type Fixture struct {
	Service     *auth.Service
	Registry    *auth.RoleRegistry
	Credentials *memory.PrincipalStore
	Roles       *memory.RoleStore
	Hasher      auth.PasswordHasher

	Administrator *auth.Role
	Manager       *auth.Role
	Employee      *auth.Role
}

// NewFixture builds a Fixture. opts are passed to auth.NewService.
func NewFixture(t *testing.T, opts ...auth.Option) *Fixture {
	t.Helper()

	f := &Fixture{
		Credentials: memory.NewPrincipalStore(),
		Roles:       memory.NewRoleStore(),
		Hasher:      auth.NewSHA256Hasher(),
	}

	svc, err := auth.NewService(f.Credentials, f.Roles, f.Hasher, opts...)
	require.NoError(t, err)
	f.Service = svc

	registry, err := auth.NewRoleRegistry(f.Roles)
	require.NoError(t, err)
	f.Registry = registry

	ctx := context.Background()
	f.Administrator, err = registry.CreateRole(ctx, "Administrador", "Full system access", auth.LevelAdministrator)
	require.NoError(t, err)
	f.Manager, err = registry.CreateRole(ctx, "Gerente", "Manages departments and projects", auth.LevelManager)
	require.NoError(t, err)
	f.Employee, err = registry.CreateRole(ctx, "Empleado", "Views projects", auth.LevelEmployee)
	require.NoError(t, err)

	return f
}

// CreatePrincipal provisions username in role and returns its ID.
func (f *Fixture) CreatePrincipal(t *testing.T, username, password string, role *auth.Role) ulid.ULID {
	t.Helper()
	id, err := f.Service.CreatePrincipal(context.Background(), username, password, role.ID)
	require.NoError(t, err)
	return id
}
