// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package memory provides in-process implementations of the auth stores.
//
// Stores copy principals and roles on every read and write, so callers never
// share mutable state with the store.
package memory
