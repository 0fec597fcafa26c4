// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package errutil_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"

	"github.com/dani6777-2/EcoTechSolutions/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("principal_id", "123").Errorf("test error")
	errutil.AssertErrorContext(t, err, "principal_id", "123")
}

func TestAssertCodeIs_WrappedSentinel(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := oops.Code("WRAPPED").Wrap(sentinel)
	errutil.AssertCodeIs(t, err, "WRAPPED", sentinel)
}
