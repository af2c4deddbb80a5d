// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/jeranaias/gearsync-tui/internal/model"
)

// =============================================================================
// AUTH REQUEST/RESPONSE TYPES
// =============================================================================

// LoginRequest carries the login credentials. Never persisted.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new account. Role defaults to CUSTOMER when
// omitted; whether self-registration as staff is honored is a backend trust
// decision, not enforced here.
type RegisterRequest struct {
	FirstName   string     `json:"firstName" validate:"required"`
	LastName    string     `json:"lastName" validate:"required"`
	PhoneNumber string     `json:"phoneNumber" validate:"required,min=7"`
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=5"`
	Role        model.Role `json:"role,omitempty"`
}

// LoginResult is the successful login payload.
type LoginResult struct {
	Token        string     `json:"token"`
	Role         model.Role `json:"role"`
	IsFirstLogin bool       `json:"isFirstLogin,omitempty"`
}

// StatusResult is the generic success/message payload several auth
// endpoints return.
type StatusResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OTPVerification is the successful verify-otp payload. The reset token is
// opaque and short-lived; ExpiresInMinutes is advisory for the UI.
type OTPVerification struct {
	ResetToken       string `json:"resetToken"`
	Message          string `json:"message,omitempty"`
	ExpiresInMinutes int    `json:"expiresInMinutes,omitempty"`
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// Login exchanges credentials for a session. The caller persists the result;
// this client holds no session state.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", req, &out, failureMap{
		400: ErrInvalidCredentials,
		401: ErrInvalidCredentials,
	})
	return out, err
}

// Register creates an account and returns the created user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodPost, "/auth/register", req, &out, failureMap{
		400: ErrValidationFailed,
	})
	return out, err
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out, authRequired)
	return out, err
}

// RefreshToken exchanges the current token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &out, authRequired)
	return out.Token, err
}

// Logout tells the backend to invalidate the token. Callers treat failures
// as best-effort: the local session is cleared regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, authRequired)
}

// ChangePassword rotates the password of the authenticated user.
func (c *Client) ChangePassword(ctx context.Context, current, newPassword string) (StatusResult, error) {
	req := struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}{current, newPassword}

	var out StatusResult
	err := c.do(ctx, http.MethodPost, "/auth/change-password", req, &out, failureMap{
		400: ErrWeakPassword,
		401: ErrUnauthenticated,
		403: ErrWrongPassword,
	})
	return out, err
}

// ForgotPassword asks the backend to email a one-time code. The backend may
// mask unknown emails behind a generic success message; the client never
// infers account existence from the response.
func (c *Client) ForgotPassword(ctx context.Context, email string) (StatusResult, error) {
	req := struct {
		Email string `json:"email"`
	}{email}

	var out StatusResult
	err := c.do(ctx, http.MethodPost, "/auth/forgot-password", req, &out, failureMap{
		404: ErrValidationFailed,
	})
	return out, err
}

// VerifyOTP trades a correct one-time code for a reset token.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (OTPVerification, error) {
	req := struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}{email, otp}

	var out OTPVerification
	err := c.do(ctx, http.MethodPost, "/auth/verify-otp", req, &out, failureMap{
		400: ErrInvalidOTP,
		401: ErrInvalidOTP,
		410: ErrInvalidOTP,
	})
	return out, err
}

// ResetPassword completes the reset flow using the token from VerifyOTP.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) (StatusResult, error) {
	req := struct {
		ResetToken      string `json:"resetToken"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}{resetToken, newPassword, confirmPassword}

	var out StatusResult
	err := c.do(ctx, http.MethodPost, "/auth/reset-password", req, &out, failureMap{
		400: ErrPasswordMismatch,
		401: ErrInvalidResetToken,
		410: ErrInvalidResetToken,
	})
	return out, err
}
