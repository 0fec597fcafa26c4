// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package access_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
	"github.com/dani6777-2/EcoTechSolutions/pkg/errutil"
)

func TestResolver_DefaultThresholds(t *testing.T) {
	r := access.NewResolver()

	tests := []struct {
		op    access.Operation
		level int
	}{
		{access.OpViewProjects, 3},
		{access.OpChangeOwnPassword, 3},
		{access.OpManageDepartments, 7},
		{access.OpManageProjects, 7},
		{access.OpManageEmployees, 7},
		{access.OpManageUsers, 10},
		{access.OpManageRoles, 10},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			threshold, ok := r.Threshold(tt.op)
			require.True(t, ok)
			assert.Equal(t, tt.level, threshold)
			assert.True(t, r.Allowed(tt.level, tt.op), "level equal to threshold is allowed")
			assert.False(t, r.Allowed(tt.level-1, tt.op), "level below threshold is denied")
		})
	}
}

func TestResolver_Capabilities(t *testing.T) {
	r := access.NewResolver()

	assert.Empty(t, r.Capabilities(1))
	assert.Equal(t, []access.Operation{access.OpChangeOwnPassword, access.OpViewProjects}, r.Capabilities(3))
	assert.Equal(t, []access.Operation{
		access.OpChangeOwnPassword,
		access.OpManageDepartments,
		access.OpManageEmployees,
		access.OpManageProjects,
		access.OpViewProjects,
	}, r.Capabilities(7))
	assert.Equal(t, r.Operations(), r.Capabilities(10))
}

func TestResolver_CapabilitiesAreMonotonic(t *testing.T) {
	r := access.NewResolver()

	for level := access.MinLevel; level < access.MaxLevel; level++ {
		lower := r.Capabilities(level)
		higher := r.Capabilities(level + 1)
		for _, op := range lower {
			assert.Contains(t, higher, op, "level %d lost %s at level %d", level, op, level+1)
		}
	}
}

func TestResolver_UnknownOperationDenied(t *testing.T) {
	r := access.NewResolver()

	assert.False(t, r.Allowed(access.MaxLevel, access.Operation("launch_rockets")))

	err := r.Require(access.MaxLevel, access.Operation("launch_rockets"))
	errutil.AssertCodeIs(t, err, "ACCESS_PERMISSION_DENIED", access.ErrPermissionDenied)
	errutil.AssertErrorContext(t, err, "known_operation", false)
}

func TestResolver_Require(t *testing.T) {
	r := access.NewResolver()

	require.NoError(t, r.Require(10, access.OpManageUsers))

	err := r.Require(7, access.OpManageUsers)
	errutil.AssertCodeIs(t, err, "ACCESS_PERMISSION_DENIED", access.ErrPermissionDenied)
	errutil.AssertErrorContext(t, err, "operation", "manage_users")
	errutil.AssertErrorContext(t, err, "required_level", 10)
}

func TestNewResolverWithThresholds(t *testing.T) {
	t.Run("custom table", func(t *testing.T) {
		r, err := access.NewResolverWithThresholds(map[access.Operation]int{
			access.OpViewProjects: 1,
			"export_reports":      5,
		})
		require.NoError(t, err)
		assert.True(t, r.Allowed(1, access.OpViewProjects))
		assert.False(t, r.Allowed(4, "export_reports"))
		assert.False(t, r.Allowed(10, access.OpManageUsers), "operations outside the table are denied")
	})

	t.Run("rejects empty table", func(t *testing.T) {
		_, err := access.NewResolverWithThresholds(nil)
		errutil.AssertErrorCode(t, err, "ACCESS_INVALID_THRESHOLDS")
	})

	t.Run("rejects out of range level", func(t *testing.T) {
		_, err := access.NewResolverWithThresholds(map[access.Operation]int{access.OpManageUsers: 11})
		errutil.AssertErrorCode(t, err, "ACCESS_INVALID_THRESHOLDS")
		errutil.AssertErrorContext(t, err, "level", 11)
	})

	t.Run("rejects empty tag", func(t *testing.T) {
		_, err := access.NewResolverWithThresholds(map[access.Operation]int{"": 3})
		errutil.AssertErrorCode(t, err, "ACCESS_INVALID_THRESHOLDS")
	})
}

func TestResolver_TableIsCopied(t *testing.T) {
	table := access.DefaultThresholds()
	r, err := access.NewResolverWithThresholds(table)
	require.NoError(t, err)

	table[access.OpManageUsers] = 1
	assert.False(t, r.Allowed(1, access.OpManageUsers))

	ops := r.Operations()
	ops[0] = "mutated"
	assert.NotEqual(t, access.Operation("mutated"), r.Operations()[0])
}

func TestParseOperation(t *testing.T) {
	op, err := access.ParseOperation("  Manage_Users ")
	require.NoError(t, err)
	assert.Equal(t, access.OpManageUsers, op)

	_, err = access.ParseOperation("fly")
	errutil.AssertErrorCode(t, err, "ACCESS_UNKNOWN_OPERATION")
	assert.False(t, errors.Is(err, access.ErrPermissionDenied))
}
