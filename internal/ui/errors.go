// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"

	"github.com/jeranaias/gearsync-tui/internal/api"
)

// humanize turns an API error into the inline message shown next to the
// form that caused it. Unknown errors fall back to the error text itself so
// a failure is never silently swallowed.
func humanize(err error) string {
	if err == nil {
		return ""
	}

	var vErr *api.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}

	switch {
	case errors.Is(err, api.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, api.ErrUnauthenticated):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, api.ErrInvalidOTP):
		return "That code is invalid or has expired. Check your email and try again."
	case errors.Is(err, api.ErrInvalidResetToken):
		return "The reset link has expired. Start over to request a new code."
	case errors.Is(err, api.ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, api.ErrWrongPassword):
		return "Current password is incorrect."
	case errors.Is(err, api.ErrWeakPassword):
		return "Password does not meet requirements."
	case errors.Is(err, api.ErrNetworkFailure):
		return "Could not reach the server. Check your connection and try again."
	}
	return err.Error()
}
