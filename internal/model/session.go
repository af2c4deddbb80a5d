// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Session is the client-held proof of authentication: an opaque bearer token
// plus the role the backend authorized for it.
//
// Invariant: Token and Role are set together or not at all. A value with one
// of the two missing is treated everywhere as the empty (unauthenticated)
// session.
type Session struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// Empty reports whether the session is unauthenticated.
func (s Session) Empty() bool {
	return s.Token == "" || !s.Role.Valid()
}

// Normalize collapses partial sessions to the empty session so the
// both-or-neither invariant holds regardless of where the value came from.
func (s Session) Normalize() Session {
	if s.Empty() {
		return Session{}
	}
	return s
}
