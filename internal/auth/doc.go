// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package auth provides authentication and account management for EcoTech.
//
// # Domain Types
//
// Domain types should be created using their constructors:
//   - NewPrincipal - creates a Principal with a validated username and a complete hash/salt pair
//   - NewRole - creates a Role with a validated name and permission level
//
// Direct struct initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated types from these constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - authentication, principal provisioning, password changes, activation
//   - LoginSession - one login dialogue with a bounded number of failed attempts
//   - RoleRegistry - role creation and lookup
//
// Permission checks are delegated to access.Resolver. Errors wrap the package
// sentinels; use KindOf to classify them and MessagePolicy to render them for
// end users.
package auth
