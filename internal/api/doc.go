// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the GearSync backend.
//
// The client is stateless with respect to authentication: it reads the
// current bearer token through a TokenSource on every request and never
// touches the session store itself. Callers persist session changes.
package api
