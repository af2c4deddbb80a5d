// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resetflow implements the three-step forgot-password flow:
// request a one-time code, verify it, then set a new password.
//
// The flow is transient and scoped to one instance; it is never persisted
// and is discarded on completion, cancel, or navigation away. Every step
// validates its input locally before spending a network round trip.
package resetflow

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/jeranaias/gearsync-tui/internal/api"
)

const (
	// MinPasswordLen is the minimum accepted password length. The backend
	// enforces 5; kept in lockstep rather than silently strengthened.
	MinPasswordLen = 5

	// OTPLength is the exact number of digits in the emailed code.
	OTPLength = 6
)

// Local validation errors. These are raised before any network call; a
// submission failing one of them performs zero round trips.
var (
	ErrInvalidEmail     = errors.New("enter a valid email address")
	ErrInvalidOTPFormat = errors.New("the code is 6 digits")
	ErrPasswordTooShort = errors.New("password must be at least 5 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrWrongStep        = errors.New("action not valid for the current step")
	ErrFlowCorrupted    = errors.New("reset flow lost its token; start over")
)

// Step is the flow's current state.
type Step int

const (
	// StepRequestOTP awaits the account email.
	StepRequestOTP Step = iota

	// StepVerifyOTP awaits the emailed 6-digit code.
	StepVerifyOTP

	// StepNewPassword awaits the replacement password.
	StepNewPassword

	// StepDone is terminal: the password was reset.
	StepDone
)

// String returns a short name for logs and tests.
func (s Step) String() string {
	switch s {
	case StepRequestOTP:
		return "request-otp"
	case StepVerifyOTP:
		return "verify-otp"
	case StepNewPassword:
		return "new-password"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// Client is the slice of the API surface the flow needs.
type Client interface {
	ForgotPassword(ctx context.Context, email string) (api.StatusResult, error)
	VerifyOTP(ctx context.Context, email, otp string) (api.OTPVerification, error)
	ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) (api.StatusResult, error)
}

// Flow drives one password reset.
//
// Invariant: resetToken is non-empty iff the step is StepNewPassword or
// StepDone. A backend rejection keeps the current step; the user can retry
// the same step indefinitely (lockout, if any, is the backend's business).
type Flow struct {
	client Client

	step       Step
	email      string
	resetToken string

	// expiresIn is the advisory reset-token validity from verify-otp.
	expiresIn int
}

var validate = validator.New()

// New starts a flow at StepRequestOTP.
func New(client Client) *Flow {
	return &Flow{client: client}
}

// Step returns the current step.
func (f *Flow) Step() Step { return f.step }

// Email returns the email the code was requested for.
func (f *Flow) Email() string { return f.email }

// TokenExpiresInMinutes returns the advisory token validity (0 if unknown).
func (f *Flow) TokenExpiresInMinutes() int { return f.expiresIn }

// SubmitEmail requests the one-time code. On success the flow advances to
// StepVerifyOTP and returns the backend's message (which may be generic
// regardless of whether the account exists).
func (f *Flow) SubmitEmail(ctx context.Context, email string) (string, error) {
	if f.step != StepRequestOTP {
		return "", ErrWrongStep
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}

	result, err := f.client.ForgotPassword(ctx, email)
	if err != nil {
		return "", err
	}
	f.email = email
	f.step = StepVerifyOTP
	return result.Message, nil
}

// SubmitOTP verifies the emailed code. On success the flow holds the reset
// token and advances to StepNewPassword.
func (f *Flow) SubmitOTP(ctx context.Context, otp string) (string, error) {
	if f.step != StepVerifyOTP {
		return "", ErrWrongStep
	}
	if err := validate.Var(otp, "required,len=6,numeric"); err != nil {
		return "", ErrInvalidOTPFormat
	}

	result, err := f.client.VerifyOTP(ctx, f.email, otp)
	if err != nil {
		return "", err
	}
	if result.ResetToken == "" {
		// Success-shaped response without a token is unusable.
		return "", ErrFlowCorrupted
	}
	f.resetToken = result.ResetToken
	f.expiresIn = result.ExpiresInMinutes
	f.step = StepNewPassword
	return result.Message, nil
}

// Back returns from the verify step to the email step, discarding nothing
// but the pending code entry.
func (f *Flow) Back() error {
	if f.step != StepVerifyOTP {
		return ErrWrongStep
	}
	f.step = StepRequestOTP
	return nil
}

// SubmitNewPassword completes the flow. A missing reset token at this point
// means the flow is corrupted: it restarts at StepRequestOTP without a
// network call.
func (f *Flow) SubmitNewPassword(ctx context.Context, newPassword, confirmPassword string) (string, error) {
	if f.step != StepNewPassword {
		return "", ErrWrongStep
	}
	if len(newPassword) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}
	if newPassword != confirmPassword {
		return "", ErrPasswordMismatch
	}
	if f.resetToken == "" {
		f.restart()
		return "", ErrFlowCorrupted
	}

	result, err := f.client.ResetPassword(ctx, f.resetToken, newPassword, confirmPassword)
	if err != nil {
		return "", err
	}
	f.step = StepDone
	return result.Message, nil
}

// restart wipes the flow back to its initial state.
func (f *Flow) restart() {
	f.step = StepRequestOTP
	f.email = ""
	f.resetToken = ""
	f.expiresIn = 0
}
