// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session is the single source of truth for the authenticated
// session (bearer token + role).
//
// The store persists across restarts, restores at startup, and is cleared on
// logout or when the backend rejects the token. It is handed to collaborators
// by reference; there is no package-level singleton, so tests substitute an
// in-memory store.
package session
