// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"time"

	"github.com/jeranaias/gearsync-tui/internal/api"
	"github.com/jeranaias/gearsync-tui/internal/auth"
	"github.com/jeranaias/gearsync-tui/internal/model"
)

// navigateMsg switches the app to another route (guard-checked).
type navigateMsg struct {
	Route auth.Route
}

// unauthenticatedMsg reports that a guarded call 401'd mid-session.
type unauthenticatedMsg struct{}

// logoutMsg asks the app to log out.
type logoutMsg struct{}

// routedMsg is implemented by async results that belong to one screen.
// The app drops results whose owning screen has been navigated away from,
// so a late response never mutates an unrelated view.
type routedMsg interface {
	route() auth.Route
}

// loginDoneMsg carries the login outcome back to the login screen.
type loginDoneMsg struct {
	result api.LoginResult
	err    error
}

func (loginDoneMsg) route() auth.Route { return auth.RouteLogin }

// registerDoneMsg carries the registration outcome.
type registerDoneMsg struct {
	user model.User
	err  error
}

func (registerDoneMsg) route() auth.Route { return auth.RouteRegister }

// resetStepDoneMsg carries one forgot-password step outcome.
type resetStepDoneMsg struct {
	message string
	err     error
}

func (resetStepDoneMsg) route() auth.Route { return auth.RouteForgotPassword }

// changePasswordDoneMsg carries the change-password outcome.
type changePasswordDoneMsg struct {
	result api.StatusResult
	err    error
}

func (changePasswordDoneMsg) route() auth.Route { return auth.RouteChangePassword }

// dashboardLoadedMsg carries the dashboard lists (fresh or cached).
type dashboardLoadedMsg struct {
	owner        auth.Route
	appointments []model.Appointment
	projects     []model.Project
	user         model.User
	stale        bool
	fetchedAt    time.Time
	err          error
}

func (m dashboardLoadedMsg) route() auth.Route { return m.owner }
