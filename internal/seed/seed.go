// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package seed

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
)

// Result reports what Apply did.
type Result struct {
	RolesCreated       []string
	RolesExisting      []string
	PrincipalsCreated  []string
	PrincipalsExisting []string
}

// Seeder applies manifests. Applying the same manifest twice changes
// nothing the second time.
type Seeder struct {
	service     *auth.Service
	registry    *auth.RoleRegistry
	credentials auth.CredentialStore
	logger      *slog.Logger
	passwords   map[string]string
	getenv      func(string) string
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Seeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPassword supplies the password for username, taking precedence over
// the principal's password_env.
func WithPassword(username, password string) Option {
	return func(s *Seeder) {
		if password != "" {
			s.passwords[strings.ToLower(username)] = password
		}
	}
}

// WithGetenv replaces os.Getenv for password lookups.
func WithGetenv(getenv func(string) string) Option {
	return func(s *Seeder) {
		if getenv != nil {
			s.getenv = getenv
		}
	}
}

// NewSeeder creates a Seeder.
func NewSeeder(service *auth.Service, registry *auth.RoleRegistry, credentials auth.CredentialStore, opts ...Option) (*Seeder, error) {
	if service == nil || registry == nil || credentials == nil {
		return nil, oops.Code("SEED_INVALID").Errorf("service, registry and credential store are required")
	}
	s := &Seeder{
		service:     service,
		registry:    registry,
		credentials: credentials,
		logger:      slog.New(slog.DiscardHandler),
		passwords:   make(map[string]string),
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Apply creates the roles and principals of m that do not exist yet.
// Existing entries are left untouched; differences are logged.
func (s *Seeder) Apply(ctx context.Context, m *Manifest) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, spec := range m.Roles {
		created, err := s.applyRole(ctx, spec)
		if err != nil {
			return result, err
		}
		if created {
			result.RolesCreated = append(result.RolesCreated, spec.Name)
		} else {
			result.RolesExisting = append(result.RolesExisting, spec.Name)
		}
	}

	for _, spec := range m.Principals {
		created, err := s.applyPrincipal(ctx, spec)
		if err != nil {
			return result, err
		}
		if created {
			result.PrincipalsCreated = append(result.PrincipalsCreated, spec.Username)
		} else {
			result.PrincipalsExisting = append(result.PrincipalsExisting, spec.Username)
		}
	}
	return result, nil
}

func (s *Seeder) applyRole(ctx context.Context, spec RoleSpec) (bool, error) {
	existing, err := s.registry.GetRoleByName(ctx, spec.Name)
	switch {
	case err == nil:
		if existing.PermissionLevel != spec.PermissionLevel {
			s.logger.Warn("seed role level mismatch",
				"role", existing.Name,
				"expected", spec.PermissionLevel,
				"actual", existing.PermissionLevel)
		}
		if !existing.Active {
			s.logger.Warn("seed role is inactive", "role", existing.Name)
		}
		return false, nil
	case !errors.Is(err, auth.ErrNotFound):
		return false, oops.Code("SEED_FAILED").With("role", spec.Name).Wrap(err)
	}

	if _, err := s.registry.CreateRole(ctx, spec.Name, spec.Description, spec.PermissionLevel); err != nil {
		if errors.Is(err, auth.ErrDuplicateRoleName) {
			return false, nil
		}
		return false, oops.Code("SEED_FAILED").With("role", spec.Name).Wrap(err)
	}
	s.logger.Info("seed role created", "role", spec.Name, "permission_level", spec.PermissionLevel)
	return true, nil
}

func (s *Seeder) applyPrincipal(ctx context.Context, spec PrincipalSpec) (bool, error) {
	role, err := s.registry.GetRoleByName(ctx, spec.Role)
	if err != nil {
		return false, oops.Code("SEED_FAILED").
			With("username", spec.Username).
			With("role", spec.Role).
			Wrap(err)
	}

	existing, err := s.credentials.GetByUsername(ctx, spec.Username)
	if err == nil {
		if existing.RoleID != role.ID {
			s.logger.Warn("seed principal role mismatch",
				"username", existing.Username,
				"expected_role", role.Name,
				"actual_role_id", existing.RoleID.String())
		}
		return false, nil
	}
	if !errors.Is(err, auth.ErrNotFound) {
		return false, oops.Code("SEED_FAILED").With("username", spec.Username).Wrap(err)
	}

	password := s.passwordFor(spec)
	if password == "" {
		return false, oops.Code("SEED_PASSWORD_MISSING").
			With("username", spec.Username).
			With("password_env", spec.PasswordEnv).
			Errorf("no password supplied for %q", spec.Username)
	}

	if _, err := s.service.CreatePrincipal(ctx, spec.Username, password, role.ID); err != nil {
		if errors.Is(err, auth.ErrDuplicateUsername) {
			return false, nil
		}
		return false, oops.Code("SEED_FAILED").With("username", spec.Username).Wrap(err)
	}
	s.logger.Info("seed principal created", "username", spec.Username, "role", role.Name)
	return true, nil
}

func (s *Seeder) passwordFor(spec PrincipalSpec) string {
	if password, ok := s.passwords[strings.ToLower(spec.Username)]; ok {
		return password
	}
	if spec.PasswordEnv == "" {
		return ""
	}
	return s.getenv(spec.PasswordEnv)
}
