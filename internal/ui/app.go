// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the GearSync terminal interface: login, register,
// the forgot-password wizard, the role dashboards, and change-password.
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gearsync-tui/internal/api"
	"github.com/jeranaias/gearsync-tui/internal/auth"
	"github.com/jeranaias/gearsync-tui/internal/cache"
	"github.com/jeranaias/gearsync-tui/internal/config"
	"github.com/jeranaias/gearsync-tui/internal/model"
	"github.com/jeranaias/gearsync-tui/internal/ui/styles"
)

// Deps carries the wired collaborators into the UI tree. Everything is
// passed by handle; the UI owns no second copy of the session.
type Deps struct {
	Cfg      config.Config
	Client   *api.Client
	Provider *auth.Provider
	Cache    *cache.Store
	Theme    styles.Theme
}

// screen is one navigable view. Screens receive only their own messages;
// the app drops async results addressed to a screen that is no longer
// current.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View(width int) string
	Route() auth.Route
}

// requirements annotates the protected routes. Routes absent from this map
// are public.
var requirements = map[auth.Route]auth.Requirement{
	auth.RouteCustomerDashboard: auth.RequireRole(model.RoleCustomer),
	auth.RouteEmployeeDashboard: auth.RequireRole(model.RoleEmployee),
	auth.RouteAdminDashboard:    auth.RequireRole(model.RoleAdmin),
	auth.RouteChangePassword:    auth.RequireAuthenticated(),
}

// App is the root bubbletea model: a tiny client-side router plus the
// global key handling.
type App struct {
	deps    Deps
	current screen
	width   int
	height  int
}

// NewApp starts on the route appropriate for the restored session.
func NewApp(deps Deps) App {
	app := App{deps: deps}
	start := auth.RouteLogin
	if role := deps.Provider.Role(); role.Valid() {
		start = auth.DashboardRoute(role)
	}
	app.current = app.build(start)
	return app
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.current.Init()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+h":
			return a.navigate(auth.RouteHelp)
		case "ctrl+l":
			if a.deps.Provider.Authenticated() {
				return a.logout()
			}
		}

	case navigateMsg:
		return a.navigate(msg.Route)

	case unauthenticatedMsg:
		// A guarded call 401'd mid-session: clear once, then redirect.
		a.deps.Provider.HandleUnauthenticated()
		return a.navigate(auth.RouteLogin)

	case logoutMsg:
		return a.logout()

	case routedMsg:
		// Async result for a screen that has since been left: drop it.
		if msg.route() != a.current.Route() {
			return a, nil
		}
	}

	next, cmd := a.current.Update(msg)
	a.current = next
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	body := a.current.View(a.width)
	footer := a.deps.Theme.Help.Render(a.footerText())
	return lipgloss.JoinVertical(lipgloss.Left, body, "", footer)
}

// footerText shows the global keys for the current auth state.
func (a App) footerText() string {
	if a.deps.Provider.Authenticated() {
		return "ctrl+l logout • ctrl+h help • ctrl+c quit"
	}
	return "ctrl+h help • ctrl+c quit"
}

// navigate runs the route guard against a fresh session read on every
// transition. Guard decisions are never cached across renders.
func (a App) navigate(route auth.Route) (tea.Model, tea.Cmd) {
	if req, protected := requirements[route]; protected {
		switch verdict := req.Decide(a.deps.Provider.Session()); verdict.Decision {
		case auth.RedirectLogin, auth.RedirectDashboard:
			route = verdict.Target
		}
	}
	a.current = a.build(route)
	return a, a.current.Init()
}

// logout clears the session and local cache, then lands on login.
func (a App) logout() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithTimeout(context.Background(), a.deps.Cfg.API.Timeout())
	defer cancel()
	a.deps.Provider.Logout(ctx)
	if a.deps.Cache != nil {
		_ = a.deps.Cache.Purge(context.Background())
	}
	return a.navigate(auth.RouteLogin)
}

// build constructs the screen for a route.
func (a App) build(route auth.Route) screen {
	switch route {
	case auth.RouteRegister:
		return newRegisterScreen(a.deps)
	case auth.RouteForgotPassword:
		return newForgotScreen(a.deps)
	case auth.RouteChangePassword:
		return newChangePasswordScreen(a.deps)
	case auth.RouteCustomerDashboard:
		return newDashboardScreen(a.deps, auth.RouteCustomerDashboard)
	case auth.RouteEmployeeDashboard:
		return newDashboardScreen(a.deps, auth.RouteEmployeeDashboard)
	case auth.RouteAdminDashboard:
		return newDashboardScreen(a.deps, auth.RouteAdminDashboard)
	case auth.RouteHelp:
		return newHelpScreen(a.deps)
	default:
		return newLoginScreen(a.deps)
	}
}
