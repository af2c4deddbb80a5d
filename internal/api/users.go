// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/jeranaias/gearsync-tui/internal/model"
)

// ProfileUpdate carries the editable profile fields; empty fields are left
// unchanged by the backend.
type ProfileUpdate struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// UpdateProfile edits the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdate) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodPut, "/users/me", req, &out, authRequired)
	return out, err
}

// DeleteAccount removes the authenticated user's account. The caller clears
// the session afterwards.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/users/me", nil, nil, authRequired)
}
