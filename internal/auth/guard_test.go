// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"testing"

	"github.com/jeranaias/gearsync-tui/internal/model"
)

func TestDecideMatrix(t *testing.T) {
	session := func(role model.Role) model.Session {
		return model.Session{Token: "tok", Role: role}
	}

	cases := []struct {
		name     string
		req      Requirement
		sess     model.Session
		decision Decision
		target   Route
	}{
		{
			name:     "no session redirects to login",
			req:      RequireRole(model.RoleCustomer),
			sess:     model.Session{},
			decision: RedirectLogin,
			target:   RouteLogin,
		},
		{
			name:     "matching role is allowed",
			req:      RequireRole(model.RoleAdmin),
			sess:     session(model.RoleAdmin),
			decision: Allow,
		},
		{
			name:     "wrong role lands on own dashboard",
			req:      RequireRole(model.RoleAdmin),
			sess:     session(model.RoleCustomer),
			decision: RedirectDashboard,
			target:   RouteCustomerDashboard,
		},
		{
			name:     "employee visiting admin goes home",
			req:      RequireRole(model.RoleAdmin),
			sess:     session(model.RoleEmployee),
			decision: RedirectDashboard,
			target:   RouteEmployeeDashboard,
		},
		{
			name:     "auth-only accepts any role",
			req:      RequireAuthenticated(),
			sess:     session(model.RoleEmployee),
			decision: Allow,
		},
		{
			name:     "auth-only rejects signed-out",
			req:      RequireAuthenticated(),
			sess:     model.Session{},
			decision: RedirectLogin,
			target:   RouteLogin,
		},
		{
			name:     "token without role is treated as signed out",
			req:      RequireRole(model.RoleCustomer),
			sess:     model.Session{Token: "tok"},
			decision: RedirectLogin,
			target:   RouteLogin,
		},
		{
			name:     "role without token is treated as signed out",
			req:      RequireRole(model.RoleCustomer),
			sess:     model.Session{Role: model.RoleCustomer},
			decision: RedirectLogin,
			target:   RouteLogin,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.req.Decide(tc.sess)
			if got.Decision != tc.decision {
				t.Errorf("Decision = %v, want %v", got.Decision, tc.decision)
			}
			if got.Target != tc.target {
				t.Errorf("Target = %q, want %q", got.Target, tc.target)
			}
		})
	}
}

func TestDashboardRoute(t *testing.T) {
	cases := []struct {
		role model.Role
		want Route
	}{
		{model.RoleCustomer, RouteCustomerDashboard},
		{model.RoleEmployee, RouteEmployeeDashboard},
		{model.RoleAdmin, RouteAdminDashboard},
		{"", RouteLogin},
	}
	for _, tc := range cases {
		if got := DashboardRoute(tc.role); got != tc.want {
			t.Errorf("DashboardRoute(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}
