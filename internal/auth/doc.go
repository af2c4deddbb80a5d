// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth owns the session lifecycle on top of the session store and
// the API client: login, logout, startup self-healing, the lazily fetched
// profile, and the role-based route guard the UI consults on every
// navigation.
package auth
