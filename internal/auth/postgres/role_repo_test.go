// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
	"github.com/dani6777-2/EcoTechSolutions/pkg/errutil"
)

var roleCols = []string{"id", "name", "description", "permission_level", "active", "created_at"}

func TestRoleRepository_Create(t *testing.T) {
	role, err := auth.NewRole("Gerente", "Manages projects", auth.LevelManager)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO roles`).
			WithArgs(role.ID.String(), "Gerente", "Manages projects", 7, true, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewRoleRepository(mock).Create(context.Background(), role))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate name", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO roles`).
			WithArgs(role.ID.String(), "Gerente", "Manages projects", 7, true, pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		err := NewRoleRepository(mock).Create(context.Background(), role)
		errutil.AssertCodeIs(t, err, "ROLE_NAME_TAKEN", auth.ErrDuplicateRoleName)
	})
}

func TestRoleRepository_Get(t *testing.T) {
	id := ulid.Make()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock := newMockPool(t)
	mock.ExpectQuery(`FROM roles WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows(roleCols).AddRow(id.String(), "Empleado", "", 3, false, created))
	mock.ExpectQuery(`FROM roles WHERE LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs("nadie").
		WillReturnRows(pgxmock.NewRows(roleCols))
	mock.ExpectQuery(`FROM roles WHERE LOWER\(name\)`).
		WithArgs("boom").
		WillReturnError(errors.New("connection refused"))

	repo := NewRoleRepository(mock)

	role, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Empleado", role.Name)
	assert.Equal(t, 3, role.PermissionLevel)
	assert.False(t, role.Active, "inactive roles are still returned by ID")

	_, err = repo.GetByName(context.Background(), "nadie")
	errutil.AssertCodeIs(t, err, "ROLE_NOT_FOUND", auth.ErrNotFound)

	_, err = repo.GetByName(context.Background(), "boom")
	errutil.AssertErrorCode(t, err, "ROLE_GET_BY_NAME_FAILED")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_ListActive(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := newMockPool(t)
	mock.ExpectQuery(`FROM roles WHERE active ORDER BY permission_level, name`).
		WillReturnRows(pgxmock.NewRows(roleCols).
			AddRow(ulid.Make().String(), "Empleado", "", 3, true, created).
			AddRow(ulid.Make().String(), "Administrador", "", 10, true, created))

	roles, err := NewRoleRepository(mock).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "Empleado", roles[0].Name)
	assert.Equal(t, 10, roles[1].PermissionLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_QueryErrorsKeepOperationCode(t *testing.T) {
	id := ulid.Make()
	mock := newMockPool(t)
	mock.ExpectQuery(`FROM roles WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnError(errors.New("connection refused"))
	mock.ExpectQuery(`FROM roles WHERE active`).
		WillReturnError(errors.New("connection refused"))

	repo := NewRoleRepository(mock)

	_, err := repo.GetByID(context.Background(), id)
	errutil.AssertErrorCode(t, err, "ROLE_GET_BY_ID_FAILED")
	assert.False(t, errors.Is(err, auth.ErrNotFound))

	_, err = repo.ListActive(context.Background())
	errutil.AssertErrorCode(t, err, "ROLE_LIST_FAILED")

	assert.NoError(t, mock.ExpectationsWereMet())
}
