// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/gearsync-tui/internal/auth"
)

// helpText is rendered with glamour so the help page reads like a doc, not
// a wall of key names.
const helpText = `# GearSync

A terminal client for the GearSync service shop.

## Global keys

| Key | Action |
| --- | ------ |
| ctrl+c | quit |
| ctrl+h | this help |
| ctrl+l | log out |

## Signing in

Sign in with your shop account. First-time logins with a temporary password
are taken straight to the password change form.

Forgot your password? From the sign-in screen press **ctrl+f**: you will be
emailed a 6-digit code, valid for a few minutes, that unlocks setting a new
password.

## Dashboards

Your dashboard matches your role (customer, employee, or admin). Press
**r** to refresh and **tab** to switch between appointments and projects.
If the server is unreachable, the last fetched lists are shown with an
*offline* label.
`

// helpScreen renders the static help page. Returning navigates back to
// wherever the session allows.
type helpScreen struct {
	deps Deps
	body string
}

func newHelpScreen(deps Deps) *helpScreen {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)
	if err != nil {
		return &helpScreen{deps: deps, body: helpText}
	}
	body, err := renderer.Render(helpText)
	if err != nil {
		body = helpText
	}
	return &helpScreen{deps: deps, body: body}
}

func (s *helpScreen) Route() auth.Route { return auth.RouteHelp }

func (s *helpScreen) Init() tea.Cmd { return nil }

func (s *helpScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			target := auth.RouteLogin
			if role := s.deps.Provider.Role(); role.Valid() {
				target = auth.DashboardRoute(role)
			}
			return s, func() tea.Msg { return navigateMsg{Route: target} }
		}
	}
	return s, nil
}

func (s *helpScreen) View(width int) string {
	return s.body + "\n" + s.deps.Theme.Help.Render("esc back")
}
