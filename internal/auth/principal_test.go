// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
	"github.com/dani6777-2/EcoTechSolutions/pkg/errutil"
)

func TestNewPrincipal(t *testing.T) {
	roleID := ulid.Make()

	p, err := auth.NewPrincipal("alice", roleID, "hash", "salt")
	require.NoError(t, err)
	assert.False(t, p.ID.IsZero())
	assert.True(t, p.Active)
	assert.Nil(t, p.LastLoginAt)
	assert.Equal(t, roleID, p.RoleID)

	_, err = auth.NewPrincipal("alice", roleID, "hash", "")
	errutil.AssertErrorCode(t, err, "PRINCIPAL_INVALID")
	_, err = auth.NewPrincipal("alice", roleID, "", "salt")
	errutil.AssertErrorCode(t, err, "PRINCIPAL_INVALID")
	_, err = auth.NewPrincipal("alice", ulid.ULID{}, "hash", "salt")
	errutil.AssertErrorCode(t, err, "PRINCIPAL_INVALID")
	_, err = auth.NewPrincipal("al", roleID, "hash", "salt")
	assert.Equal(t, "username", auth.ValidationField(err))
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"minimum length", "abc", false},
		{"unicode counted by rune", "josé", false},
		{"maximum length", strings.Repeat("a", auth.MaxUsernameLength), false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", auth.MaxUsernameLength+1), true},
		{"blank", "   ", true},
		{"trailing space", "alice ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Equal(t, "username", auth.ValidationField(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePasswordConfirmation(t *testing.T) {
	require.NoError(t, auth.ValidatePasswordConfirmation("secret1", "secret1"))

	err := auth.ValidatePasswordConfirmation("secret1", "secret2")
	assert.Equal(t, "password_confirmation", auth.ValidationField(err))

	err = auth.ValidatePasswordConfirmation("12345", "12345")
	assert.Equal(t, "password", auth.ValidationField(err))
}

func TestPrincipal_CloneAndSummary(t *testing.T) {
	at := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	p, err := auth.NewPrincipal("alice", ulid.Make(), "hash", "salt")
	require.NoError(t, err)
	p.LastLoginAt = &at

	c := p.Clone()
	*c.LastLoginAt = at.Add(time.Hour)
	assert.True(t, at.Equal(*p.LastLoginAt), "clone does not share the timestamp")

	s := p.Summary()
	assert.Equal(t, p.ID, s.ID)
	assert.Equal(t, "alice", s.Username)
	assert.True(t, at.Equal(*s.LastLoginAt))
}

func TestNewRole(t *testing.T) {
	r, err := auth.NewRole("  Gerente ", " manages ", auth.LevelManager)
	require.NoError(t, err)
	assert.Equal(t, "Gerente", r.Name)
	assert.Equal(t, "manages", r.Description)
	assert.True(t, r.Active)

	_, err = auth.NewRole("G", "", 5)
	assert.Equal(t, "name", auth.ValidationField(err))
	_, err = auth.NewRole("Gerente", "", 0)
	assert.Equal(t, "permission_level", auth.ValidationField(err))
	_, err = auth.NewRole("Gerente", "", 11)
	assert.Equal(t, "permission_level", auth.ValidationField(err))
}
