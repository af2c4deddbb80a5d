// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gearsync-tui/internal/auth"
)

// loginScreen is the email/password form.
type loginScreen struct {
	deps   Deps
	inputs []textinput.Model
	focus  int

	// loading disables resubmission while a request is in flight.
	loading bool
	errText string
}

func newLoginScreen(deps Deps) *loginScreen {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &loginScreen{
		deps:   deps,
		inputs: []textinput.Model{email, password},
	}
}

func (s *loginScreen) Route() auth.Route { return auth.RouteLogin }

func (s *loginScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *loginScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			s.setFocus(s.focus + 1)
			return s, nil
		case "shift+tab", "up":
			s.setFocus(s.focus - 1)
			return s, nil
		case "enter":
			if s.loading {
				return s, nil
			}
			return s, s.submit()
		case "ctrl+r":
			return s, func() tea.Msg { return navigateMsg{Route: auth.RouteRegister} }
		case "ctrl+f":
			return s, func() tea.Msg { return navigateMsg{Route: auth.RouteForgotPassword} }
		}

	case loginDoneMsg:
		s.loading = false
		if msg.err != nil {
			s.errText = humanize(msg.err)
			return s, nil
		}
		target := auth.DashboardRoute(msg.result.Role)
		if msg.result.IsFirstLogin {
			// First login: force a password change before the dashboard.
			target = auth.RouteChangePassword
		}
		return s, func() tea.Msg { return navigateMsg{Route: target} }
	}

	return s, s.updateInputs(msg)
}

func (s *loginScreen) submit() tea.Cmd {
	email := strings.TrimSpace(s.inputs[0].Value())
	password := s.inputs[1].Value()
	if email == "" || password == "" {
		s.errText = "email and password are required"
		return nil
	}

	s.loading = true
	s.errText = ""
	deps := s.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deps.Cfg.API.Timeout())
		defer cancel()
		result, err := deps.Provider.Login(ctx, email, password)
		return loginDoneMsg{result: result, err: err}
	}
}

func (s *loginScreen) setFocus(i int) {
	n := len(s.inputs)
	s.focus = ((i % n) + n) % n
	for j := range s.inputs {
		if j == s.focus {
			s.inputs[j].Focus()
		} else {
			s.inputs[j].Blur()
		}
	}
}

func (s *loginScreen) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(s.inputs))
	for i := range s.inputs {
		s.inputs[i], cmds[i] = s.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (s *loginScreen) View(width int) string {
	t := s.deps.Theme
	var b strings.Builder

	b.WriteString(t.Title.Render("GearSync — Sign in"))
	b.WriteString("\n")
	for i, label := range []string{"Email", "Password"} {
		style := t.Label
		if i == s.focus {
			style = t.Focused
		}
		b.WriteString(style.Render(label) + "\n")
		b.WriteString(s.inputs[i].View() + "\n")
	}

	if s.loading {
		b.WriteString("\n" + t.Muted.Render("Signing in..."))
	}
	if s.errText != "" {
		b.WriteString("\n" + t.Error.Render(s.errText))
	}
	b.WriteString("\n\n" + t.Help.Render("enter sign in • ctrl+r register • ctrl+f forgot password"))
	return b.String()
}
