// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"

	"github.com/jeranaias/gearsync-tui/internal/api"
	"github.com/jeranaias/gearsync-tui/internal/auth"
)

// registerFields indexes the input slice.
const (
	regFirstName = iota
	regLastName
	regPhone
	regEmail
	regPassword
	regFieldCount
)

var registerValidate = validator.New()

// registerScreen is the self-registration form. Registration always creates
// a CUSTOMER; staff accounts are created by an admin.
type registerScreen struct {
	deps   Deps
	inputs []textinput.Model
	focus  int

	loading  bool
	errText  string
	doneText string
}

func newRegisterScreen(deps Deps) *registerScreen {
	mk := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 128
		return in
	}

	inputs := make([]textinput.Model, regFieldCount)
	inputs[regFirstName] = mk("first name")
	inputs[regLastName] = mk("last name")
	inputs[regPhone] = mk("phone number")
	inputs[regEmail] = mk("email")
	inputs[regPassword] = mk("password")
	inputs[regPassword].EchoMode = textinput.EchoPassword
	inputs[regPassword].EchoCharacter = '•'
	inputs[regFirstName].Focus()

	return &registerScreen{deps: deps, inputs: inputs}
}

func (s *registerScreen) Route() auth.Route { return auth.RouteRegister }

func (s *registerScreen) Init() tea.Cmd { return textinput.Blink }

func (s *registerScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
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
			return s, func() tea.Msg { return navigateMsg{Route: auth.RouteLogin} }
		}

	case registerDoneMsg:
		s.loading = false
		if msg.err != nil {
			// Entered values are kept; only the message changes.
			s.errText = humanize(msg.err)
			return s, nil
		}
		s.doneText = "Account created for " + msg.user.Email + ". Press esc to sign in."
		s.errText = ""
		return s, nil
	}

	return s, s.updateInputs(msg)
}

// submit validates locally before spending a round trip, mirroring the
// backend's field rules.
func (s *registerScreen) submit() tea.Cmd {
	req := api.RegisterRequest{
		FirstName:   strings.TrimSpace(s.inputs[regFirstName].Value()),
		LastName:    strings.TrimSpace(s.inputs[regLastName].Value()),
		PhoneNumber: strings.TrimSpace(s.inputs[regPhone].Value()),
		Email:       strings.TrimSpace(s.inputs[regEmail].Value()),
		Password:    s.inputs[regPassword].Value(),
	}

	if err := registerValidate.Struct(req); err != nil {
		s.errText = registerErrText(err)
		return nil
	}

	s.loading = true
	s.errText = ""
	deps := s.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deps.Cfg.API.Timeout())
		defer cancel()
		user, err := deps.Provider.Register(ctx, req)
		return registerDoneMsg{user: user, err: err}
	}
}

// registerErrText maps validator failures onto field-level messages.
func registerErrText(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return "Please fill in all fields."
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f.Field() {
		case "Email":
			parts = append(parts, "enter a valid email")
		case "Password":
			parts = append(parts, "password must be at least 5 characters")
		case "PhoneNumber":
			parts = append(parts, "enter a valid phone number")
		default:
			parts = append(parts, strings.ToLower(f.Field())+" is required")
		}
	}
	return strings.Join(parts, "; ")
}

func (s *registerScreen) setFocus(i int) {
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

func (s *registerScreen) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(s.inputs))
	for i := range s.inputs {
		s.inputs[i], cmds[i] = s.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (s *registerScreen) View(width int) string {
	t := s.deps.Theme
	var b strings.Builder

	b.WriteString(t.Title.Render("GearSync — Create account"))
	b.WriteString("\n")
	labels := []string{"First name", "Last name", "Phone number", "Email", "Password"}
	for i, label := range labels {
		style := t.Label
		if i == s.focus {
			style = t.Focused
		}
		b.WriteString(style.Render(label) + "\n")
		b.WriteString(s.inputs[i].View() + "\n")
	}

	if s.loading {
		b.WriteString("\n" + t.Muted.Render("Creating account..."))
	}
	if s.errText != "" {
		b.WriteString("\n" + t.Error.Render(s.errText))
	}
	if s.doneText != "" {
		b.WriteString("\n" + t.Success.Render(s.doneText))
	}
	b.WriteString("\n\n" + t.Help.Render("enter submit • esc back to sign in"))
	return b.String()
}
