// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core data types shared across the GearSync
// client: roles, sessions, users, and the service-management entities
// returned by the backend REST API.
package model
