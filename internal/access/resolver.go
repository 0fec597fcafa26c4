// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package access

import (
	"errors"

	"github.com/samber/oops"
)

// ErrPermissionDenied is returned when a level is below an operation's threshold.
var ErrPermissionDenied = errors.New("permission denied")

// Resolver answers permission questions against a fixed threshold table.
//
// The table is immutable after construction, so a Resolver is safe for
// concurrent use without locking.
type Resolver struct {
	thresholds map[Operation]int
	ops        []Operation
}

// NewResolver returns a resolver over DefaultThresholds.
func NewResolver() *Resolver {
	r, err := NewResolverWithThresholds(DefaultThresholds())
	if err != nil {
		panic(err) // default table is static
	}
	return r
}

// NewResolverWithThresholds returns a resolver over a custom table.
// Every threshold must be a valid permission level.
func NewResolverWithThresholds(thresholds map[Operation]int) (*Resolver, error) {
	if len(thresholds) == 0 {
		return nil, oops.Code("ACCESS_INVALID_THRESHOLDS").Errorf("threshold table is empty")
	}

	table := make(map[Operation]int, len(thresholds))
	ops := make([]Operation, 0, len(thresholds))
	for op, level := range thresholds {
		if op == "" {
			return nil, oops.Code("ACCESS_INVALID_THRESHOLDS").Errorf("operation tag cannot be empty")
		}
		if !ValidLevel(level) {
			return nil, oops.Code("ACCESS_INVALID_THRESHOLDS").
				With("operation", op.String()).
				With("level", level).
				Errorf("threshold for %s must be between %d and %d", op, MinLevel, MaxLevel)
		}
		table[op] = level
		ops = append(ops, op)
	}
	sortedOperations(ops)

	return &Resolver{thresholds: table, ops: ops}, nil
}

// Threshold returns the minimum level for op.
func (r *Resolver) Threshold(op Operation) (int, bool) {
	level, ok := r.thresholds[op]
	return level, ok
}

// Allowed reports whether level may invoke op. Unknown operations are denied.
func (r *Resolver) Allowed(level int, op Operation) bool {
	threshold, ok := r.thresholds[op]
	if !ok {
		return false
	}
	return level >= threshold
}

// Require returns a PermissionDenied error unless level may invoke op.
func (r *Resolver) Require(level int, op Operation) error {
	if r.Allowed(level, op) {
		return nil
	}
	threshold, known := r.thresholds[op]
	return oops.Code("ACCESS_PERMISSION_DENIED").
		With("operation", op.String()).
		With("level", level).
		With("required_level", threshold).
		With("known_operation", known).
		Wrap(ErrPermissionDenied)
}

// Capabilities returns every operation level may invoke, sorted by tag.
func (r *Resolver) Capabilities(level int) []Operation {
	caps := make([]Operation, 0, len(r.ops))
	for _, op := range r.ops {
		if level >= r.thresholds[op] {
			caps = append(caps, op)
		}
	}
	return caps
}

// Operations returns every operation in the table, sorted by tag.
func (r *Resolver) Operations() []Operation {
	ops := make([]Operation, len(r.ops))
	copy(ops, r.ops)
	return ops
}
