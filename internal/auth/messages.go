// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package auth

import "errors"

// MessagePolicy turns errors into text safe to show an end user.
type MessagePolicy struct {
	// DiscloseReason distinguishes unknown user, inactive account, and wrong
	// password. When false all three read "authentication failed".
	DiscloseReason bool
}

// DefaultMessagePolicy discloses the failure reason.
func DefaultMessagePolicy() MessagePolicy {
	return MessagePolicy{DiscloseReason: true}
}

// Message returns the user-facing text for err. Infrastructure details are
// never exposed.
func (p MessagePolicy) Message(err error) string {
	kind := KindOf(err)
	switch kind {
	case KindNone:
		return ""
	case KindNotFound, KindAccountInactive, KindInvalidCredentials:
		if !p.DiscloseReason {
			return "authentication failed"
		}
	}

	switch kind {
	case KindNotFound:
		return "user not found"
	case KindAccountInactive:
		return "account is inactive"
	case KindInvalidCredentials:
		return "incorrect password"
	case KindTooManyAttempts:
		return "too many failed attempts, try again later"
	case KindValidation:
		var ve *ValidationError
		if errors.As(err, &ve) {
			return ve.Reason
		}
		return "invalid input"
	case KindDuplicateUsername:
		return "username is already taken"
	case KindDuplicateRoleName:
		return "role name is already taken"
	case KindPermissionDenied:
		return "you do not have permission to do that"
	case KindSelfProtection:
		return "you cannot deactivate your own account"
	case KindConfirmationRequired:
		return "this action requires confirmation"
	case KindPrecondition:
		return "the system is not configured for this action"
	case KindSessionClosed:
		return "this login session has ended"
	default:
		return "the service is temporarily unavailable, try again later"
	}
}
