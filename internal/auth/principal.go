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
	"github.com/samber/oops"
)

// Username and password constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 100
	MinPasswordLength = 6
)

// Principal is an account that can authenticate.
type Principal struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	Salt         string
	RoleID       ulid.ULID
	Active       bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// NewPrincipal creates an active Principal with a validated username and a
// complete hash/salt pair.
func NewPrincipal(username string, roleID ulid.ULID, passwordHash, salt string) (*Principal, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if roleID.IsZero() {
		return nil, oops.Code("PRINCIPAL_INVALID").Errorf("role ID cannot be zero")
	}
	if passwordHash == "" || salt == "" {
		return nil, oops.Code("PRINCIPAL_INVALID").Errorf("password hash and salt are both required")
	}
	return &Principal{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		Salt:         salt,
		RoleID:       roleID,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Clone returns a deep copy of p.
func (p *Principal) Clone() *Principal {
	c := *p
	if p.LastLoginAt != nil {
		at := *p.LastLoginAt
		c.LastLoginAt = &at
	}
	return &c
}

// Summary returns p without its secrets.
func (p *Principal) Summary() PrincipalSummary {
	s := PrincipalSummary{
		ID:        p.ID,
		Username:  p.Username,
		RoleID:    p.RoleID,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
	}
	if p.LastLoginAt != nil {
		at := *p.LastLoginAt
		s.LastLoginAt = &at
	}
	return s
}

// PrincipalSummary is a principal listing entry. It never carries the hash or salt.
type PrincipalSummary struct {
	ID          ulid.ULID
	Username    string
	RoleID      ulid.ULID
	RoleName    string
	Active      bool
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

// Identity is an authenticated principal with its role resolved at
// authentication time.
type Identity struct {
	PrincipalID     ulid.ULID
	Username        string
	RoleID          ulid.ULID
	RoleName        string
	PermissionLevel int
	// LastLoginAt is the previous successful login, nil on first login.
	LastLoginAt *time.Time
}

// ValidateUsername checks username length and surrounding whitespace.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return validationError("username", "username cannot be empty")
	}
	if strings.TrimSpace(username) != username {
		return validationError("username", "username cannot start or end with whitespace")
	}
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength {
		return validationError("username", fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	}
	if n > MaxUsernameLength {
		return validationError("username", fmt.Sprintf("username must be at most %d characters", MaxUsernameLength))
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if password == "" {
		return validationError("password", "password cannot be empty")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return validationError("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// ValidatePasswordConfirmation checks password and that confirmation repeats it.
func ValidatePasswordConfirmation(password, confirmation string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if password != confirmation {
		return validationError("password_confirmation", "passwords do not match")
	}
	return nil
}

// CredentialStore persists principals.
//
// Missing rows produce errors wrapping ErrNotFound. Username lookups and the
// uniqueness rule are case-insensitive. Each mutation is a single atomic
// write, so a hash/salt pair is never observed half-updated.
type CredentialStore interface {
	// GetByUsername retrieves a principal by username.
	GetByUsername(ctx context.Context, username string) (*Principal, error)

	// GetByID retrieves a principal by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Principal, error)

	// Create stores a new principal. A taken username wraps ErrDuplicateUsername.
	Create(ctx context.Context, principal *Principal) error

	// UpdatePassword replaces the hash and salt together.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash, salt string) error

	// SetActive sets the active flag.
	SetActive(ctx context.Context, id ulid.ULID, active bool) error

	// TouchLastLogin records a successful login time.
	TouchLastLogin(ctx context.Context, id ulid.ULID, at time.Time) error

	// List returns all principals, newest first.
	List(ctx context.Context) ([]*Principal, error)
}
