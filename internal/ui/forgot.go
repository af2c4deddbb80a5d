// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gearsync-tui/internal/auth"
	"github.com/jeranaias/gearsync-tui/internal/resetflow"
)

// forgotScreen renders the three-step password reset. The flow object owns
// the step machine and the reset token; the screen only collects input and
// shows outcomes. Leaving the screen discards the flow entirely.
type forgotScreen struct {
	deps Deps
	flow *resetflow.Flow

	email    textinput.Model
	otp      textinput.Model
	password textinput.Model
	confirm  textinput.Model
	focus    int

	loading  bool
	errText  string
	infoText string
}

func newForgotScreen(deps Deps) *forgotScreen {
	email := textinput.New()
	email.Placeholder = "account email"
	email.CharLimit = 128
	email.Focus()

	otp := textinput.New()
	otp.Placeholder = "6-digit code"
	otp.CharLimit = resetflow.OTPLength

	password := textinput.New()
	password.Placeholder = "new password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	confirm := textinput.New()
	confirm.Placeholder = "confirm password"
	confirm.CharLimit = 128
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'

	return &forgotScreen{
		deps:     deps,
		flow:     resetflow.New(deps.Client),
		email:    email,
		otp:      otp,
		password: password,
		confirm:  confirm,
	}
}

func (s *forgotScreen) Route() auth.Route { return auth.RouteForgotPassword }

func (s *forgotScreen) Init() tea.Cmd { return textinput.Blink }

func (s *forgotScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			s.cycleFocus(1)
			return s, nil
		case "shift+tab", "up":
			s.cycleFocus(-1)
			return s, nil
		case "enter":
			if s.loading {
				return s, nil
			}
			return s, s.submit()
		case "esc":
			// Verify step backs up to the email step; anywhere else leaves
			// the wizard. The flow (and any token) dies with the screen.
			if s.flow.Step() == resetflow.StepVerifyOTP {
				_ = s.flow.Back()
				s.errText = ""
				s.infoText = ""
				s.syncFocus()
				return s, nil
			}
			return s, func() tea.Msg { return navigateMsg{Route: auth.RouteLogin} }
		}

	case resetStepDoneMsg:
		s.loading = false
		if msg.err != nil {
			s.errText = humanize(msg.err)
			s.syncFocus()
			return s, nil
		}
		s.errText = ""
		s.infoText = msg.message
		s.syncFocus()
		return s, nil
	}

	return s, s.updateInputs(msg)
}

// submit dispatches the current step to the flow. Format errors are raised
// by the flow before any network call and come back on the same message.
func (s *forgotScreen) submit() tea.Cmd {
	flow := s.flow
	timeout := s.deps.Cfg.API.Timeout()

	var run func(ctx context.Context) (string, error)
	switch flow.Step() {
	case resetflow.StepRequestOTP:
		email := strings.TrimSpace(s.email.Value())
		run = func(ctx context.Context) (string, error) { return flow.SubmitEmail(ctx, email) }
	case resetflow.StepVerifyOTP:
		otp := strings.TrimSpace(s.otp.Value())
		run = func(ctx context.Context) (string, error) { return flow.SubmitOTP(ctx, otp) }
	case resetflow.StepNewPassword:
		pw, confirm := s.password.Value(), s.confirm.Value()
		run = func(ctx context.Context) (string, error) { return flow.SubmitNewPassword(ctx, pw, confirm) }
	default:
		return func() tea.Msg { return navigateMsg{Route: auth.RouteLogin} }
	}

	s.loading = true
	s.errText = ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		message, err := run(ctx)
		return resetStepDoneMsg{message: message, err: err}
	}
}

// activeInputs returns the inputs for the current step, in focus order.
func (s *forgotScreen) activeInputs() []*textinput.Model {
	switch s.flow.Step() {
	case resetflow.StepRequestOTP:
		return []*textinput.Model{&s.email}
	case resetflow.StepVerifyOTP:
		return []*textinput.Model{&s.otp}
	case resetflow.StepNewPassword:
		return []*textinput.Model{&s.password, &s.confirm}
	}
	return nil
}

func (s *forgotScreen) cycleFocus(delta int) {
	inputs := s.activeInputs()
	if len(inputs) == 0 {
		return
	}
	n := len(inputs)
	s.focus = ((s.focus+delta)%n + n) % n
	s.syncFocus()
}

// syncFocus reapplies focus after the step (and thus the input set) changed.
func (s *forgotScreen) syncFocus() {
	inputs := s.activeInputs()
	if s.focus >= len(inputs) {
		s.focus = 0
	}
	for _, in := range []*textinput.Model{&s.email, &s.otp, &s.password, &s.confirm} {
		in.Blur()
	}
	for i, in := range inputs {
		if i == s.focus {
			in.Focus()
		}
	}
}

func (s *forgotScreen) updateInputs(msg tea.Msg) tea.Cmd {
	inputs := s.activeInputs()
	cmds := make([]tea.Cmd, len(inputs))
	for i, in := range inputs {
		*in, cmds[i] = in.Update(msg)
	}
	return tea.Batch(cmds...)
}

func (s *forgotScreen) View(width int) string {
	t := s.deps.Theme
	var b strings.Builder

	b.WriteString(t.Title.Render("GearSync — Reset password"))
	b.WriteString("\n")
	b.WriteString(t.Subtitle.Render(s.stepLabel()) + "\n\n")

	switch s.flow.Step() {
	case resetflow.StepRequestOTP:
		b.WriteString(t.Label.Render("Email") + "\n" + s.email.View() + "\n")
	case resetflow.StepVerifyOTP:
		b.WriteString(t.Muted.Render("A 6-digit code was sent to "+s.flow.Email()) + "\n\n")
		b.WriteString(t.Label.Render("Code") + "\n" + s.otp.View() + "\n")
	case resetflow.StepNewPassword:
		if mins := s.flow.TokenExpiresInMinutes(); mins > 0 {
			b.WriteString(t.Muted.Render(fmt.Sprintf("Code accepted. Set a new password within %d minutes.", mins)) + "\n\n")
		}
		for i, pair := range []struct {
			label string
			in    *textinput.Model
		}{{"New password", &s.password}, {"Confirm password", &s.confirm}} {
			style := t.Label
			if i == s.focus {
				style = t.Focused
			}
			b.WriteString(style.Render(pair.label) + "\n" + pair.in.View() + "\n")
		}
	case resetflow.StepDone:
		b.WriteString(t.Success.Render("Password updated. Press esc to sign in.") + "\n")
	}

	if s.loading {
		b.WriteString("\n" + t.Muted.Render("Working..."))
	}
	if s.errText != "" {
		b.WriteString("\n" + t.Error.Render(s.errText))
	}
	if s.infoText != "" && s.flow.Step() != resetflow.StepDone {
		b.WriteString("\n" + t.Success.Render(s.infoText))
	}
	b.WriteString("\n\n" + t.Help.Render(s.helpLine()))
	return b.String()
}

func (s *forgotScreen) stepLabel() string {
	switch s.flow.Step() {
	case resetflow.StepRequestOTP:
		return "Step 1 of 3: request a code"
	case resetflow.StepVerifyOTP:
		return "Step 2 of 3: verify the code"
	case resetflow.StepNewPassword:
		return "Step 3 of 3: choose a new password"
	}
	return "Done"
}

func (s *forgotScreen) helpLine() string {
	if s.flow.Step() == resetflow.StepVerifyOTP {
		return "enter verify • esc back to email"
	}
	return "enter submit • esc back to sign in"
}
