// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the backend's failure modes. Call sites match with
// errors.Is; the wrapped *APIError keeps the backend's message for display.
var (
	// ErrInvalidCredentials indicates a rejected login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated indicates the bearer token was missing, expired,
	// or revoked. Callers must clear the session and return to login.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrValidationFailed indicates the backend rejected form input.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidOTP indicates the one-time code was wrong or expired.
	ErrInvalidOTP = errors.New("invalid or expired verification code")

	// ErrInvalidResetToken indicates the reset token was rejected.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrPasswordMismatch indicates newPassword and confirmPassword differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrWrongPassword indicates the current password was incorrect.
	ErrWrongPassword = errors.New("current password is incorrect")

	// ErrWeakPassword indicates the new password failed the backend policy.
	ErrWeakPassword = errors.New("password does not meet requirements")

	// ErrNetworkFailure indicates a transport-level failure with no HTTP
	// response. Distinct from any 4xx: it must never clear a valid session.
	ErrNetworkFailure = errors.New("could not reach the server")
)

// APIError is an HTTP-level error response from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gearsync api error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("gearsync api error (HTTP %d): %s", e.Status, e.Message)
}

// ValidationError carries the backend's per-field messages for a 400
// response. It unwraps to ErrValidationFailed so callers can branch on the
// category and still render field detail.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// Error implements the error interface, joining field messages in a stable
// order.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, ErrValidationFailed) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// errorBody is the backend's error payload shape.
type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

// message returns the best available human-readable message.
func (b errorBody) message() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// failureMap resolves a non-2xx status to the operation's sentinel error.
// Statuses not listed fall back to a bare *APIError (surfaced verbatim).
type failureMap map[int]error

// authRequired is the shared mapping for bearer-authenticated endpoints.
var authRequired = failureMap{
	401: ErrUnauthenticated,
	403: ErrUnauthenticated,
}
