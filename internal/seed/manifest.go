// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package seed provisions the initial roles and principals described by a
// YAML manifest.
package seed

import (
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
)

// AdminPasswordEnv holds the password of the default admin principal.
const AdminPasswordEnv = "ECOTECH_ADMIN_PASSWORD"

// Manifest lists the roles and principals to provision.
type Manifest struct {
	Roles      []RoleSpec      `yaml:"roles" jsonschema:"minItems=1"`
	Principals []PrincipalSpec `yaml:"principals,omitempty"`
}

// RoleSpec describes one role.
type RoleSpec struct {
	Name            string `yaml:"name" jsonschema:"minLength=2,maxLength=100"`
	Description     string `yaml:"description,omitempty"`
	PermissionLevel int    `yaml:"permission_level" jsonschema:"minimum=1,maximum=10"`
}

// PrincipalSpec describes one principal. Passwords never live in the
// manifest; PasswordEnv names the environment variable holding it.
type PrincipalSpec struct {
	Username    string `yaml:"username" jsonschema:"minLength=3,maxLength=100"`
	Role        string `yaml:"role" jsonschema:"minLength=2,maxLength=100"`
	PasswordEnv string `yaml:"password_env,omitempty" jsonschema:"pattern=^[A-Za-z_][A-Za-z0-9_]*$"`
}

// DefaultManifest returns the standard roles and the admin principal.
func DefaultManifest() *Manifest {
	return &Manifest{
		Roles: []RoleSpec{
			{Name: "Administrador", Description: "Acceso completo al sistema", PermissionLevel: auth.LevelAdministrator},
			{Name: "Gerente", Description: "Gestiona departamentos, proyectos y empleados", PermissionLevel: auth.LevelManager},
			{Name: "Empleado", Description: "Consulta proyectos y cambia su contraseña", PermissionLevel: auth.LevelEmployee},
		},
		Principals: []PrincipalSpec{
			{Username: access.AdminUsername, Role: "Administrador", PasswordEnv: AdminPasswordEnv},
		},
	}
}

// Parse validates data against the manifest schema, decodes it and checks
// the rules the schema cannot express.
func Parse(data []byte) (*Manifest, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, oops.Code("SEED_INVALID").Wrap(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names, levels and uniqueness. Role and username
// comparisons ignore case, matching the stores.
func (m *Manifest) Validate() error {
	if len(m.Roles) == 0 {
		return oops.Code("SEED_INVALID").Errorf("manifest must define at least one role")
	}

	roles := make(map[string]bool, len(m.Roles))
	for i, r := range m.Roles {
		if err := auth.ValidateRoleName(strings.TrimSpace(r.Name)); err != nil {
			return oops.Code("SEED_INVALID").With("role_index", i).Wrap(err)
		}
		if err := auth.ValidatePermissionLevel(r.PermissionLevel); err != nil {
			return oops.Code("SEED_INVALID").With("role", r.Name).Wrap(err)
		}
		key := strings.ToLower(strings.TrimSpace(r.Name))
		if roles[key] {
			return oops.Code("SEED_INVALID").With("role", r.Name).Errorf("role %q is listed twice", r.Name)
		}
		roles[key] = true
	}

	usernames := make(map[string]bool, len(m.Principals))
	for i, p := range m.Principals {
		if err := auth.ValidateUsername(p.Username); err != nil {
			return oops.Code("SEED_INVALID").With("principal_index", i).Wrap(err)
		}
		key := strings.ToLower(strings.TrimSpace(p.Username))
		if usernames[key] {
			return oops.Code("SEED_INVALID").With("username", p.Username).Errorf("principal %q is listed twice", p.Username)
		}
		usernames[key] = true
		if strings.TrimSpace(p.Role) == "" {
			return oops.Code("SEED_INVALID").With("username", p.Username).Errorf("principal %q has no role", p.Username)
		}
	}
	return nil
}

// Marshal renders m as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, oops.Code("SEED_INVALID").Wrap(err)
	}
	return data, nil
}
