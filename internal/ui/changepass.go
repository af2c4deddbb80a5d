// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gearsync-tui/internal/api"
	"github.com/jeranaias/gearsync-tui/internal/auth"
	"github.com/jeranaias/gearsync-tui/internal/resetflow"
)

const (
	cpCurrent = iota
	cpNew
	cpConfirm
	cpFieldCount
)

// changePasswordScreen is the in-session password change. It is also the
// forced landing page on a first login with a temporary password.
type changePasswordScreen struct {
	deps   Deps
	inputs []textinput.Model
	focus  int

	loading  bool
	errText  string
	doneText string
}

func newChangePasswordScreen(deps Deps) *changePasswordScreen {
	mk := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 128
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
		return in
	}

	inputs := make([]textinput.Model, cpFieldCount)
	inputs[cpCurrent] = mk("current password")
	inputs[cpNew] = mk("new password")
	inputs[cpConfirm] = mk("confirm new password")
	inputs[cpCurrent].Focus()

	return &changePasswordScreen{deps: deps, inputs: inputs}
}

func (s *changePasswordScreen) Route() auth.Route { return auth.RouteChangePassword }

func (s *changePasswordScreen) Init() tea.Cmd { return textinput.Blink }

func (s *changePasswordScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
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
		case "esc":
			role := s.deps.Provider.Role()
			return s, func() tea.Msg { return navigateMsg{Route: auth.DashboardRoute(role)} }
		}

	case changePasswordDoneMsg:
		s.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthenticated) {
				return s, func() tea.Msg { return unauthenticatedMsg{} }
			}
			s.errText = humanize(msg.err)
			return s, nil
		}
		s.doneText = msg.result.Message
		if s.doneText == "" {
			s.doneText = "Password changed."
		}
		s.errText = ""
		for i := range s.inputs {
			s.inputs[i].SetValue("")
		}
		return s, nil
	}

	return s, s.updateInputs(msg)
}

// submit applies the same local checks as the reset flow so a bad entry
// never reaches the wire.
func (s *changePasswordScreen) submit() tea.Cmd {
	current := s.inputs[cpCurrent].Value()
	next := s.inputs[cpNew].Value()
	confirm := s.inputs[cpConfirm].Value()

	switch {
	case current == "":
		s.errText = "current password is required"
		return nil
	case len(next) < resetflow.MinPasswordLen:
		s.errText = humanize(resetflow.ErrPasswordTooShort)
		return nil
	case next != confirm:
		s.errText = humanize(resetflow.ErrPasswordMismatch)
		return nil
	}

	s.loading = true
	s.errText = ""
	deps := s.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deps.Cfg.API.Timeout())
		defer cancel()
		result, err := deps.Client.ChangePassword(ctx, current, next)
		return changePasswordDoneMsg{result: result, err: err}
	}
}

func (s *changePasswordScreen) setFocus(i int) {
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

func (s *changePasswordScreen) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(s.inputs))
	for i := range s.inputs {
		s.inputs[i], cmds[i] = s.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (s *changePasswordScreen) View(width int) string {
	t := s.deps.Theme
	var b strings.Builder

	b.WriteString(t.Title.Render("GearSync — Change password"))
	b.WriteString("\n")
	for i, label := range []string{"Current password", "New password", "Confirm new password"} {
		style := t.Label
		if i == s.focus {
			style = t.Focused
		}
		b.WriteString(style.Render(label) + "\n")
		b.WriteString(s.inputs[i].View() + "\n")
	}

	if s.loading {
		b.WriteString("\n" + t.Muted.Render("Updating..."))
	}
	if s.errText != "" {
		b.WriteString("\n" + t.Error.Render(s.errText))
	}
	if s.doneText != "" {
		b.WriteString("\n" + t.Success.Render(s.doneText))
	}
	b.WriteString("\n\n" + t.Help.Render("enter submit • esc dashboard"))
	return b.String()
}
