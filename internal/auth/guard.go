// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"github.com/jeranaias/gearsync-tui/internal/model"
)

// =============================================================================
// ROUTES
// =============================================================================

// Route names a navigable screen. The guard deals in routes so the UI layer
// can map them onto whatever screen models it runs.
type Route string

const (
	RouteLogin             Route = "login"
	RouteRegister          Route = "register"
	RouteForgotPassword    Route = "forgot-password"
	RouteChangePassword    Route = "change-password"
	RouteCustomerDashboard Route = "customer-dashboard"
	RouteEmployeeDashboard Route = "employee-dashboard"
	RouteAdminDashboard    Route = "admin-dashboard"
	RouteHelp              Route = "help"
)

// DashboardRoute maps a role to its home dashboard.
func DashboardRoute(role model.Role) Route {
	switch role {
	case model.RoleAdmin:
		return RouteAdminDashboard
	case model.RoleEmployee:
		return RouteEmployeeDashboard
	case model.RoleCustomer:
		return RouteCustomerDashboard
	}
	return RouteLogin
}

// =============================================================================
// GUARD
// =============================================================================

// Requirement is the static annotation on a protected route: either a
// specific role, or merely "authenticated".
type Requirement struct {
	role     model.Role
	authOnly bool
}

// RequireRole gates a route to exactly one role.
func RequireRole(role model.Role) Requirement {
	return Requirement{role: role}
}

// RequireAuthenticated gates a route to any signed-in user.
func RequireAuthenticated() Requirement {
	return Requirement{authOnly: true}
}

// Decision is the guard's outcome for one navigation.
type Decision int

const (
	// Allow renders the protected content.
	Allow Decision = iota

	// RedirectLogin sends an unauthenticated visitor to the login screen.
	RedirectLogin

	// RedirectDashboard sends a signed-in user with the wrong role to
	// their own dashboard. A role mismatch is a redirect to where the user
	// does belong, never a dead-end error page.
	RedirectDashboard
)

// Verdict pairs a Decision with the route to redirect to (meaningful for
// the two redirect decisions).
type Verdict struct {
	Decision Decision
	Target   Route
}

// Decide evaluates the requirement against the current session. It must be
// called on every navigation with a fresh session read: a session can be
// invalidated mid-visit, and the next guarded render has to observe that.
func (r Requirement) Decide(sess model.Session) Verdict {
	sess = sess.Normalize()
	if sess.Empty() {
		return Verdict{Decision: RedirectLogin, Target: RouteLogin}
	}
	if r.authOnly || sess.Role == r.role {
		return Verdict{Decision: Allow}
	}
	return Verdict{Decision: RedirectDashboard, Target: DashboardRoute(sess.Role)}
}
