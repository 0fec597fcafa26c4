// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package authtest provides testify mocks and fixtures for the auth package.
package authtest

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
)

// Compile-time interface checks.
var (
	_ auth.CredentialStore = (*MockCredentialStore)(nil)
	_ auth.RoleRepository  = (*MockRoleRepository)(nil)
	_ auth.FailureLimiter  = (*MockFailureLimiter)(nil)
)

// MockCredentialStore is a testify mock of auth.CredentialStore.
type MockCredentialStore struct {
	mock.Mock
}

// GetByUsername implements auth.CredentialStore.
func (m *MockCredentialStore) GetByUsername(ctx context.Context, username string) (*auth.Principal, error) {
	args := m.Called(ctx, username)
	p, _ := args.Get(0).(*auth.Principal)
	return p, args.Error(1)
}

// GetByID implements auth.CredentialStore.
func (m *MockCredentialStore) GetByID(ctx context.Context, id ulid.ULID) (*auth.Principal, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*auth.Principal)
	return p, args.Error(1)
}

// Create implements auth.CredentialStore.
func (m *MockCredentialStore) Create(ctx context.Context, principal *auth.Principal) error {
	return m.Called(ctx, principal).Error(0)
}

// UpdatePassword implements auth.CredentialStore.
func (m *MockCredentialStore) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash, salt string) error {
	return m.Called(ctx, id, passwordHash, salt).Error(0)
}

// SetActive implements auth.CredentialStore.
func (m *MockCredentialStore) SetActive(ctx context.Context, id ulid.ULID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

// TouchLastLogin implements auth.CredentialStore.
func (m *MockCredentialStore) TouchLastLogin(ctx context.Context, id ulid.ULID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// List implements auth.CredentialStore.
func (m *MockCredentialStore) List(ctx context.Context) ([]*auth.Principal, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*auth.Principal)
	return list, args.Error(1)
}

// MockRoleRepository is a testify mock of auth.RoleRepository.
type MockRoleRepository struct {
	mock.Mock
}

// Create implements auth.RoleRepository.
func (m *MockRoleRepository) Create(ctx context.Context, role *auth.Role) error {
	return m.Called(ctx, role).Error(0)
}

// GetByID implements auth.RoleRepository.
func (m *MockRoleRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Role, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*auth.Role)
	return r, args.Error(1)
}

// GetByName implements auth.RoleRepository.
func (m *MockRoleRepository) GetByName(ctx context.Context, name string) (*auth.Role, error) {
	args := m.Called(ctx, name)
	r, _ := args.Get(0).(*auth.Role)
	return r, args.Error(1)
}

// ListActive implements auth.RoleRepository.
func (m *MockRoleRepository) ListActive(ctx context.Context) ([]*auth.Role, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*auth.Role)
	return list, args.Error(1)
}

// MockFailureLimiter is a testify mock of auth.FailureLimiter.
type MockFailureLimiter struct {
	mock.Mock
}

// Blocked implements auth.FailureLimiter.
func (m *MockFailureLimiter) Blocked(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// RecordFailure implements auth.FailureLimiter.
func (m *MockFailureLimiter) RecordFailure(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

// Reset implements auth.FailureLimiter.
func (m *MockFailureLimiter) Reset(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}
