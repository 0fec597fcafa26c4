// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
)

const roleColumns = `id, name, description, permission_level, active, created_at`

// RoleRepository implements auth.RoleRepository using PostgreSQL.
type RoleRepository struct {
	pool Querier
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool Querier) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// Create stores a new role.
func (r *RoleRepository) Create(ctx context.Context, role *auth.Role) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO roles (id, name, description, permission_level, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, role.ID.String(), role.Name, role.Description, role.PermissionLevel, role.Active, role.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("ROLE_NAME_TAKEN").
				With("name", role.Name).
				Wrap(errors.Join(auth.ErrDuplicateRoleName, err))
		}
		return oops.Code("ROLE_CREATE_FAILED").
			With("operation", "insert role").
			With("name", role.Name).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a role by ID, active or not.
func (r *RoleRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Role, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+roleColumns+`
		FROM roles
		WHERE id = $1
	`, id.String())

	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ROLE_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ROLE_GET_BY_ID_FAILED").
			With("operation", "get role by id").
			With("id", id.String()).
			Wrap(err)
	}
	return role, nil
}

// GetByName retrieves a role by name (case-insensitive).
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*auth.Role, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+roleColumns+`
		FROM roles
		WHERE LOWER(name) = LOWER($1)
	`, name)

	role, err := scanRole(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ROLE_NOT_FOUND").With("name", name).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ROLE_GET_BY_NAME_FAILED").
			With("operation", "get role by name").
			With("name", name).
			Wrap(err)
	}
	return role, nil
}

// ListActive returns active roles ordered by permission level, then name.
func (r *RoleRepository) ListActive(ctx context.Context) ([]*auth.Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+roleColumns+`
		FROM roles
		WHERE active
		ORDER BY permission_level, name
	`)
	if err != nil {
		return nil, oops.Code("ROLE_LIST_FAILED").With("operation", "list active roles").Wrap(err)
	}
	defer rows.Close()

	var roles []*auth.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, oops.Code("ROLE_LIST_FAILED").With("operation", "scan role").Wrap(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROLE_LIST_FAILED").With("operation", "iterate roles").Wrap(err)
	}
	return roles, nil
}

// scanRole scans a single row into a Role. Scan errors are returned
// unwrapped for the caller to code.
func scanRole(row pgx.Row) (*auth.Role, error) {
	var (
		idStr       string
		name        string
		description string
		level       int
		active      bool
		createdAt   time.Time
	)
	if err := row.Scan(&idStr, &name, &description, &level, &active, &createdAt); err != nil {
		return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ROLE_INVALID_ID").With("id", idStr).Wrap(err)
	}
	return &auth.Role{
		ID:              id,
		Name:            name,
		Description:     description,
		PermissionLevel: level,
		Active:          active,
		CreatedAt:       createdAt,
	}, nil
}

// Compile-time interface check.
var _ auth.RoleRepository = (*RoleRepository)(nil)
