// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package access decides which operations a permission level may invoke.
//
// Permission levels are integers from MinLevel to MaxLevel. Each Operation has a
// minimum level and a level qualifies when it is greater than or equal to that
// minimum. Call sites never compare levels themselves; they ask a Resolver.
//
// Role tiers used by the default table:
//   - 3: employee (view projects, change own password)
//   - 7: manager (manage departments, projects, employees)
//   - 10: administrator (manage users and roles)
package access

import (
	"sort"
	"strings"

	"github.com/samber/oops"
)

// Operation names a privileged action.
type Operation string

// Operation tags known to the default threshold table.
const (
	OpViewProjects      Operation = "view_projects"
	OpChangeOwnPassword Operation = "change_own_password"
	OpManageDepartments Operation = "manage_departments"
	OpManageProjects    Operation = "manage_projects"
	OpManageEmployees   Operation = "manage_employees"
	OpManageUsers       Operation = "manage_users"
	OpManageRoles       Operation = "manage_roles"
)

// Permission level bounds.
const (
	MinLevel = 1
	MaxLevel = 10
)

// DefaultThresholds returns a fresh copy of the default operation table.
func DefaultThresholds() map[Operation]int {
	return map[Operation]int{
		OpViewProjects:      3,
		OpChangeOwnPassword: 3,
		OpManageDepartments: 7,
		OpManageProjects:    7,
		OpManageEmployees:   7,
		OpManageUsers:       10,
		OpManageRoles:       10,
	}
}

// String returns the operation tag.
func (o Operation) String() string {
	return string(o)
}

// ParseOperation normalizes s and returns the matching operation from the
// default table.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := DefaultThresholds()[op]; !ok {
		return "", oops.Code("ACCESS_UNKNOWN_OPERATION").With("operation", s).Errorf("unknown operation %q", s)
	}
	return op, nil
}

// ValidLevel reports whether level lies within MinLevel..MaxLevel.
func ValidLevel(level int) bool {
	return level >= MinLevel && level <= MaxLevel
}

func sortedOperations(ops []Operation) {
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
}
