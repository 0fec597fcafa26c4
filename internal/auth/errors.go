// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
)

// Sentinel errors. Returned errors are oops errors wrapping one of these, so
// callers classify them with errors.Is or KindOf.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound              = errors.New("not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrTooManyAttempts       = errors.New("too many failed login attempts")
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateUsername     = errors.New("username already exists")
	ErrDuplicateRoleName     = errors.New("role name already exists")
	ErrEmployeeRoleMissing   = errors.New("no active employee role")
	ErrEmployeeRoleAmbiguous = errors.New("more than one active employee role")
	ErrSessionClosed         = errors.New("login session already completed")
	// ErrRoleMissing is returned when a principal references a role that no
	// longer exists.
	ErrRoleMissing           = errors.New("principal's role does not exist")
)

// Error codes attached to returned errors.
const (
	CodeNotFound           = "AUTH_NOT_FOUND"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAccountInactive    = "AUTH_ACCOUNT_INACTIVE"
	CodeTooManyAttempts    = "AUTH_TOO_MANY_ATTEMPTS"
	CodeValidation         = "AUTH_VALIDATION"
	CodeUsernameTaken      = "AUTH_USERNAME_TAKEN"
	CodeRoleNameTaken      = "AUTH_ROLE_NAME_TAKEN"
	CodeEmployeeRole       = "AUTH_EMPLOYEE_ROLE_UNRESOLVED"
	CodeSessionClosed      = "AUTH_SESSION_CLOSED"
	CodeRoleMissing        = "AUTH_ROLE_MISSING"
	CodeStoreFailed        = "AUTH_STORE_FAILED"
)

// ValidationError describes an input rejected before any store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationError(field, reason string) error {
	return oops.Code(CodeValidation).
		With("field", field).
		Wrap(&ValidationError{Field: field, Reason: reason})
}

// ValidationField returns the field named by a validation error, or "" when
// err is not one.
func ValidationField(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

// storeFailure wraps an unexpected repository error.
func storeFailure(operation string, err error) error {
	return oops.Code(CodeStoreFailed).With("operation", operation).Wrap(err)
}

// Kind classifies an error into the externally visible failure taxonomy.
type Kind int

// Failure kinds.
const (
	KindNone Kind = iota
	KindNotFound
	KindAccountInactive
	KindInvalidCredentials
	KindTooManyAttempts
	KindValidation
	KindDuplicateUsername
	KindDuplicateRoleName
	KindPermissionDenied
	KindSelfProtection
	KindConfirmationRequired
	KindPrecondition
	KindSessionClosed
	KindInfrastructure
)

var kindNames = map[Kind]string{
	KindNone:                 "none",
	KindNotFound:             "not_found",
	KindAccountInactive:      "account_inactive",
	KindInvalidCredentials:   "invalid_credentials",
	KindTooManyAttempts:      "too_many_attempts",
	KindValidation:           "validation",
	KindDuplicateUsername:    "duplicate_username",
	KindDuplicateRoleName:    "duplicate_role_name",
	KindPermissionDenied:     "permission_denied",
	KindSelfProtection:       "self_protection",
	KindConfirmationRequired: "confirmation_required",
	KindPrecondition:         "precondition",
	KindSessionClosed:        "session_closed",
	KindInfrastructure:       "infrastructure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindOf maps err to its Kind. Errors that wrap none of the known sentinels
// are infrastructure failures.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAccountInactive):
		return KindAccountInactive
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrTooManyAttempts):
		return KindTooManyAttempts
	case errors.Is(err, ErrDuplicateUsername):
		return KindDuplicateUsername
	case errors.Is(err, ErrDuplicateRoleName):
		return KindDuplicateRoleName
	case errors.Is(err, access.ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, access.ErrSelfProtection):
		return KindSelfProtection
	case errors.Is(err, access.ErrConfirmationRequired):
		return KindConfirmationRequired
	case errors.Is(err, ErrEmployeeRoleMissing), errors.Is(err, ErrEmployeeRoleAmbiguous),
		errors.Is(err, ErrRoleMissing):
		return KindPrecondition
	case errors.Is(err, ErrSessionClosed):
		return KindSessionClosed
	default:
		return KindInfrastructure
	}
}

// countsAsAttempt reports whether a failed authentication consumes one of
// the session's login attempts.
func countsAsAttempt(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindAccountInactive, KindInvalidCredentials, KindTooManyAttempts:
		return true
	default:
		return false
	}
}
