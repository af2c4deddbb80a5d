// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies which part of the application a session may access.
//
// The backend transmits roles as upper-case strings. Keeping the type closed
// (only the three constants below are valid) removes typos and casing drift
// as a source of routing bugs.
type Role string

const (
	// RoleCustomer books appointments and tracks their own projects.
	RoleCustomer Role = "CUSTOMER"

	// RoleEmployee works assigned appointments and logs time.
	RoleEmployee Role = "EMPLOYEE"

	// RoleAdmin manages users, services, and assignments.
	RoleAdmin Role = "ADMIN"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleCustomer, RoleEmployee, RoleAdmin}
}

// Valid reports whether r is one of the closed set of roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// String returns the wire representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole normalizes and validates a role string from the wire or from
// persisted storage. Casing is normalized so that stored values written by
// older clients still parse.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// UnmarshalJSON validates the role during decoding so malformed payloads
// surface at the API boundary instead of deep inside the UI.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
