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

const principalColumns = `id, username, password_hash, salt, role_id, active, created_at, last_login_at`

// PrincipalRepository implements auth.CredentialStore using PostgreSQL.
type PrincipalRepository struct {
	pool Querier
}

// NewPrincipalRepository creates a new PrincipalRepository.
func NewPrincipalRepository(pool Querier) *PrincipalRepository {
	return &PrincipalRepository{pool: pool}
}

// GetByUsername retrieves a principal by username (case-insensitive).
func (r *PrincipalRepository) GetByUsername(ctx context.Context, username string) (*auth.Principal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+principalColumns+`
		FROM principals
		WHERE LOWER(username) = LOWER($1)
	`, username)

	principal, err := scanPrincipal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_BY_USERNAME_FAILED").
			With("operation", "get principal by username").
			With("username", username).
			Wrap(err)
	}
	return principal, nil
}

// GetByID retrieves a principal by ID.
func (r *PrincipalRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Principal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+principalColumns+`
		FROM principals
		WHERE id = $1
	`, id.String())

	principal, err := scanPrincipal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_BY_ID_FAILED").
			With("operation", "get principal by id").
			With("id", id.String()).
			Wrap(err)
	}
	return principal, nil
}

// Create stores a new principal.
func (r *PrincipalRepository) Create(ctx context.Context, principal *auth.Principal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO principals (
			id, username, password_hash, salt, role_id, active, created_at, last_login_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		principal.ID.String(),
		principal.Username,
		principal.PasswordHash,
		principal.Salt,
		principal.RoleID.String(),
		principal.Active,
		principal.CreatedAt,
		principal.LastLoginAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return oops.Code("PRINCIPAL_USERNAME_TAKEN").
				With("username", principal.Username).
				Wrap(errors.Join(auth.ErrDuplicateUsername, err))
		case isForeignKeyViolation(err):
			return oops.Code("PRINCIPAL_ROLE_NOT_FOUND").
				With("role_id", principal.RoleID.String()).
				Wrap(errors.Join(auth.ErrNotFound, err))
		}
		return oops.Code("PRINCIPAL_CREATE_FAILED").
			With("operation", "insert principal").
			With("username", principal.Username).
			Wrap(err)
	}
	return nil
}

// UpdatePassword replaces the hash and salt in a single statement.
func (r *PrincipalRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash, salt string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE principals SET password_hash = $2, salt = $3
		WHERE id = $1
	`, id.String(), passwordHash, salt)
	if err != nil {
		return oops.Code("PRINCIPAL_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// SetActive sets the active flag.
func (r *PrincipalRepository) SetActive(ctx context.Context, id ulid.ULID, active bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE principals SET active = $2
		WHERE id = $1
	`, id.String(), active)
	if err != nil {
		return oops.Code("PRINCIPAL_SET_ACTIVE_FAILED").
			With("operation", "set active").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// TouchLastLogin records a successful login time.
func (r *PrincipalRepository) TouchLastLogin(ctx context.Context, id ulid.ULID, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE principals SET last_login_at = $2
		WHERE id = $1
	`, id.String(), at)
	if err != nil {
		return oops.Code("PRINCIPAL_TOUCH_LOGIN_FAILED").
			With("operation", "touch last login").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// List returns all principals, newest first.
func (r *PrincipalRepository) List(ctx context.Context) ([]*auth.Principal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+principalColumns+`
		FROM principals
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, oops.Code("PRINCIPAL_LIST_FAILED").
			With("operation", "list principals").
			Wrap(err)
	}
	defer rows.Close()

	var principals []*auth.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, oops.Code("PRINCIPAL_LIST_FAILED").With("operation", "scan principal").Wrap(err)
		}
		principals = append(principals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PRINCIPAL_LIST_FAILED").
			With("operation", "iterate principals").
			Wrap(err)
	}
	return principals, nil
}

// scanPrincipal scans a single row into a Principal.
// Scan errors, pgx.ErrNoRows included, are returned unwrapped.
func scanPrincipal(row pgx.Row) (*auth.Principal, error) {
	var (
		idStr        string
		username     string
		passwordHash string
		salt         string
		roleIDStr    string
		active       bool
		createdAt    time.Time
		lastLoginAt  *time.Time
	)

	err := row.Scan(&idStr, &username, &passwordHash, &salt, &roleIDStr, &active, &createdAt, &lastLoginAt)
	if err != nil {
		return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("PRINCIPAL_INVALID_ID").With("id", idStr).Wrap(err)
	}
	roleID, err := ulid.Parse(roleIDStr)
	if err != nil {
		return nil, oops.Code("PRINCIPAL_INVALID_ROLE_ID").With("role_id", roleIDStr).Wrap(err)
	}

	return &auth.Principal{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Salt:         salt,
		RoleID:       roleID,
		Active:       active,
		CreatedAt:    createdAt,
		LastLoginAt:  lastLoginAt,
	}, nil
}

// Compile-time interface check.
var _ auth.CredentialStore = (*PrincipalRepository)(nil)
