// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
	"github.com/dani6777-2/EcoTechSolutions/internal/auth/memory"
)

func TestRoleStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRoleStore()

	admin, err := auth.NewRole("Administrador", "full access", auth.LevelAdministrator)
	require.NoError(t, err)
	employee, err := auth.NewRole("Empleado", "", auth.LevelEmployee)
	require.NoError(t, err)
	manager, err := auth.NewRole("Gerente", "", auth.LevelManager)
	require.NoError(t, err)

	for _, r := range []*auth.Role{admin, employee, manager} {
		require.NoError(t, store.Create(ctx, r))
	}

	t.Run("duplicate name", func(t *testing.T) {
		dup, err := auth.NewRole("gerente", "", 5)
		require.NoError(t, err)
		assert.True(t, errors.Is(store.Create(ctx, dup), auth.ErrDuplicateRoleName))
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := store.GetByName(ctx, "EMPLEADO")
		require.NoError(t, err)
		assert.Equal(t, employee.ID, got.ID)

		got, err = store.GetByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, "Administrador", got.Name)

		_, err = store.GetByID(ctx, ulid.Make())
		assert.True(t, errors.Is(err, auth.ErrNotFound))
	})

	t.Run("list active ordered by level", func(t *testing.T) {
		require.NoError(t, store.SetActive(ctx, manager.ID, false))
		roles, err := store.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, roles, 2)
		assert.Equal(t, "Empleado", roles[0].Name)
		assert.Equal(t, "Administrador", roles[1].Name)

		// Inactive roles stay resolvable by ID.
		got, err := store.GetByID(ctx, manager.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})
}
