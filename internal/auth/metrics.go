// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LoginAttempts counts authentication attempts by outcome kind.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ecotech_auth_login_attempts_total",
		Help: "Total number of authentication attempts by outcome",
	},
	[]string{"outcome"},
)

// LoginLockouts counts login sessions that exhausted their attempts.
var LoginLockouts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ecotech_auth_login_lockouts_total",
		Help: "Total number of login sessions locked after too many failures",
	},
)

// PasswordChanges counts password writes by mode ("self", "reset", "upgrade").
var PasswordChanges = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ecotech_auth_password_changes_total",
		Help: "Total number of password hash writes",
	},
	[]string{"mode"},
)

// PrincipalStateChanges counts activation and deactivation writes.
var PrincipalStateChanges = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ecotech_auth_principal_state_changes_total",
		Help: "Total number of principal activation state changes",
	},
	[]string{"active"},
)

// AuthorizationChecks counts Authorize decisions.
var AuthorizationChecks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ecotech_auth_authorization_checks_total",
		Help: "Total number of permission checks by operation and result",
	},
	[]string{"operation", "result"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(LoginLockouts)
	reg.MustRegister(PasswordChanges)
	reg.MustRegister(PrincipalStateChanges)
	reg.MustRegister(AuthorizationChecks)
}

func recordLoginOutcome(err error) {
	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	LoginAttempts.WithLabelValues(outcome).Inc()
}

func recordAuthorization(op string, allowed bool) {
	result := "allowed"
	if !allowed {
		result = "denied"
	}
	AuthorizationChecks.WithLabelValues(op, result).Inc()
}
