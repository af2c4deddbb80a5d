// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles centralizes the lipgloss styles for the GearSync TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme bundles the styles every screen draws with.
type Theme struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Input     lipgloss.Style
	Focused   lipgloss.Style
	Button    lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style
	StatCard  lipgloss.Style
	TableHead lipgloss.Style
	Stale     lipgloss.Style
	Help      lipgloss.Style
}

// New builds a theme for the named variant ("dark" or "light"), degrading
// gracefully on terminals without color support.
func New(name string) Theme {
	profile := termenv.ColorProfile()
	plain := profile == termenv.Ascii

	accent := lipgloss.Color("39")  // blue
	danger := lipgloss.Color("203") // red
	good := lipgloss.Color("42")    // green
	dim := lipgloss.Color("245")
	if name == "light" {
		accent = lipgloss.Color("27")
		dim = lipgloss.Color("240")
	}

	t := Theme{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Subtitle:  lipgloss.NewStyle().Bold(true),
		Label:     lipgloss.NewStyle().Foreground(dim),
		Input:     lipgloss.NewStyle(),
		Focused:   lipgloss.NewStyle().Foreground(accent),
		Button:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Error:     lipgloss.NewStyle().Foreground(danger),
		Success:   lipgloss.NewStyle().Foreground(good),
		Muted:     lipgloss.NewStyle().Foreground(dim),
		StatCard:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2).MarginRight(1),
		TableHead: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Stale:     lipgloss.NewStyle().Foreground(dim).Italic(true),
		Help:      lipgloss.NewStyle().Foreground(dim),
	}

	if plain {
		// Strip colors; keep layout.
		t.Title = lipgloss.NewStyle().Bold(true).MarginBottom(1)
		t.Focused = lipgloss.NewStyle().Bold(true)
		t.Error = lipgloss.NewStyle().Bold(true)
		t.Success = lipgloss.NewStyle()
		t.Muted = lipgloss.NewStyle()
	}
	return t
}
