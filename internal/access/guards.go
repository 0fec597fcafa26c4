// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package access

import (
	"errors"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// AdminUsername is the account whose deactivation needs explicit confirmation.
const AdminUsername = "admin"

// Guard errors.
var (
	ErrSelfProtection       = errors.New("a principal cannot deactivate its own account")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// CheckSelfDeactivation rejects a requester deactivating itself.
// It applies regardless of the requester's level.
func CheckSelfDeactivation(requesterID, targetID ulid.ULID) error {
	if requesterID == targetID {
		return oops.Code("ACCESS_SELF_PROTECTION").
			With("principal_id", targetID.String()).
			Wrap(ErrSelfProtection)
	}
	return nil
}

// CheckDeactivation applies the guards for deactivating targetID.
// Deactivating the admin account requires confirmed to be true.
func CheckDeactivation(requesterID, targetID ulid.ULID, targetUsername string, confirmed bool) error {
	if err := CheckSelfDeactivation(requesterID, targetID); err != nil {
		return err
	}
	if strings.EqualFold(targetUsername, AdminUsername) && !confirmed {
		return oops.Code("ACCESS_CONFIRMATION_REQUIRED").
			With("principal_id", targetID.String()).
			With("username", targetUsername).
			Wrap(ErrConfirmationRequired)
	}
	return nil
}
