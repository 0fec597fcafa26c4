// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package errutil carries helpers for logging and asserting oops errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// Attrs extracts loggable attributes from err. For oops errors the code and
// context are included; other errors contribute only their message.
func Attrs(err error) []any {
	if err == nil {
		return nil
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err.Error()}
	}
	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}

// LogError logs err at error level with its structured context.
func LogError(logger *slog.Logger, msg string, err error, extra ...any) {
	logger.Error(msg, append(Attrs(err), extra...)...)
}

// LogWarn logs err at warn level with its structured context.
func LogWarn(logger *slog.Logger, msg string, err error, extra ...any) {
	logger.Warn(msg, append(Attrs(err), extra...)...)
}
