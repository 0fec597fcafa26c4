// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package accesstest provides test helpers for access control.
package accesstest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
)

// Uniform returns a resolver where every default operation requires level.
func Uniform(t *testing.T, level int) *access.Resolver {
	t.Helper()
	table := access.DefaultThresholds()
	for op := range table {
		table[op] = level
	}
	r, err := access.NewResolverWithThresholds(table)
	require.NoError(t, err)
	return r
}

// AllowAll returns a resolver under which every level may invoke every
// default operation.
func AllowAll(t *testing.T) *access.Resolver {
	return Uniform(t, access.MinLevel)
}

// DenyAllBelowMax returns a resolver under which only MaxLevel may invoke
// anything.
func DenyAllBelowMax(t *testing.T) *access.Resolver {
	return Uniform(t, access.MaxLevel)
}
