// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/gearsync-tui/internal/api"
	"github.com/jeranaias/gearsync-tui/internal/auth"
	"github.com/jeranaias/gearsync-tui/internal/model"
)

// dashboardTab selects which list the table shows.
type dashboardTab int

const (
	tabAppointments dashboardTab = iota
	tabProjects
)

// dashboardScreen renders the role dashboard: stat cards over a list table.
// The same screen serves all three roles; the route decides which endpoints
// feed it. When the backend is unreachable it falls back to the last cached
// lists, clearly labeled with their fetch time.
type dashboardScreen struct {
	deps  Deps
	route auth.Route

	tab   dashboardTab
	table table.Model

	appointments []model.Appointment
	projects     []model.Project
	user         model.User

	loading   bool
	stale     bool
	fetchedAt time.Time
	errText   string
}

func newDashboardScreen(deps Deps, route auth.Route) *dashboardScreen {
	return &dashboardScreen{deps: deps, route: route, loading: true}
}

func (s *dashboardScreen) Route() auth.Route { return s.route }

func (s *dashboardScreen) Init() tea.Cmd { return s.load() }

// load fetches both lists plus the profile. On a network failure it serves
// the cached copies instead; any other error is surfaced as-is. A 401 here
// means the token died mid-session and is routed to the global handler.
func (s *dashboardScreen) load() tea.Cmd {
	deps := s.deps
	route := s.route
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deps.Cfg.API.Timeout())
		defer cancel()

		appointments, projects, err := fetchLists(ctx, deps.Client, route)
		if err == nil {
			user, _ := deps.Provider.CurrentUser(ctx)
			if deps.Cache != nil {
				_ = deps.Cache.PutList(ctx, cacheKey(route, "appointments"), appointments)
				_ = deps.Cache.PutList(ctx, cacheKey(route, "projects"), projects)
			}
			return dashboardLoadedMsg{
				owner:        route,
				appointments: appointments,
				projects:     projects,
				user:         user,
				fetchedAt:    time.Now(),
			}
		}

		if errors.Is(err, api.ErrNetworkFailure) && deps.Cache != nil {
			var cachedAppointments []model.Appointment
			var cachedProjects []model.Project
			at, missA := deps.Cache.GetList(ctx, cacheKey(route, "appointments"), &cachedAppointments)
			_, missP := deps.Cache.GetList(ctx, cacheKey(route, "projects"), &cachedProjects)
			if missA == nil || missP == nil {
				return dashboardLoadedMsg{
					owner:        route,
					appointments: cachedAppointments,
					projects:     cachedProjects,
					stale:        true,
					fetchedAt:    at,
					err:          err,
				}
			}
		}
		return dashboardLoadedMsg{owner: route, err: err}
	}
}

// fetchLists picks the endpoints for the dashboard's role. Customers and
// admins read the scoped list endpoints; employees read their assignments.
func fetchLists(ctx context.Context, client *api.Client, route auth.Route) ([]model.Appointment, []model.Project, error) {
	if route == auth.RouteEmployeeDashboard {
		appointments, err := client.AssignedAppointments(ctx)
		if err != nil {
			return nil, nil, err
		}
		projects, err := client.AssignedProjects(ctx)
		if err != nil {
			return nil, nil, err
		}
		return appointments, projects, nil
	}

	appointments, err := client.Appointments(ctx)
	if err != nil {
		return nil, nil, err
	}
	projects, err := client.Projects(ctx)
	if err != nil {
		return nil, nil, err
	}
	return appointments, projects, nil
}

// cacheKey scopes cached lists per dashboard so roles never see each
// other's leftovers.
func cacheKey(route auth.Route, list string) string {
	return string(route) + "/" + list
}

func (s *dashboardScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if !s.loading {
				s.loading = true
				s.errText = ""
				return s, s.load()
			}
			return s, nil
		case "tab":
			if s.tab == tabAppointments {
				s.tab = tabProjects
			} else {
				s.tab = tabAppointments
			}
			s.rebuildTable()
			return s, nil
		case "ctrl+p":
			return s, func() tea.Msg { return navigateMsg{Route: auth.RouteChangePassword} }
		}

	case dashboardLoadedMsg:
		s.loading = false
		if msg.err != nil && !msg.stale {
			if errors.Is(msg.err, api.ErrUnauthenticated) {
				return s, func() tea.Msg { return unauthenticatedMsg{} }
			}
			s.errText = humanize(msg.err)
			return s, nil
		}
		s.appointments = msg.appointments
		s.projects = msg.projects
		if msg.user.Email != "" {
			s.user = msg.user
		}
		s.stale = msg.stale
		s.fetchedAt = msg.fetchedAt
		if msg.stale {
			s.errText = humanize(msg.err)
		} else {
			s.errText = ""
		}
		s.rebuildTable()
		return s, nil
	}

	if s.loading {
		return s, nil
	}
	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return s, cmd
}

// rebuildTable regenerates the table for the active tab.
func (s *dashboardScreen) rebuildTable() {
	var columns []table.Column
	var rows []table.Row

	if s.tab == tabAppointments {
		columns = []table.Column{
			{Title: "ID", Width: 5},
			{Title: "Service", Width: 24},
			{Title: "Vehicle", Width: 20},
			{Title: "Scheduled", Width: 17},
			{Title: "Status", Width: 14},
		}
		for _, a := range s.appointments {
			vehicle := strings.TrimSpace(a.VehicleMake + " " + a.VehicleModel)
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", a.ID),
				clip(a.ServiceName, 24),
				clip(vehicle, 20),
				a.ScheduledAt.Format("2006-01-02 15:04"),
				a.Status,
			})
		}
	} else {
		columns = []table.Column{
			{Title: "ID", Width: 5},
			{Title: "Project", Width: 26},
			{Title: "Progress", Width: 9},
			{Title: "Status", Width: 14},
			{Title: "Assigned", Width: 18},
		}
		for _, p := range s.projects {
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", p.ID),
				clip(p.Name, 26),
				fmt.Sprintf("%d%%", p.Progress),
				p.Status,
				clip(p.AssignedEmployee, 18),
			})
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 12)),
	)
	st := table.DefaultStyles()
	st.Header = s.deps.Theme.TableHead
	t.SetStyles(st)
	s.table = t
}

// clip truncates to a display width, ellipsizing wide runes correctly.
func clip(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func (s *dashboardScreen) View(width int) string {
	t := s.deps.Theme
	var b strings.Builder

	b.WriteString(t.Title.Render("GearSync — " + s.title()))
	b.WriteString("\n")
	if s.user.Name != "" {
		b.WriteString(t.Muted.Render("Signed in as "+s.user.Name) + "\n")
	}

	if s.loading {
		b.WriteString("\n" + t.Muted.Render("Loading...") + "\n")
		return b.String()
	}

	b.WriteString("\n" + s.statCards() + "\n")

	label := "Appointments"
	if s.tab == tabProjects {
		label = "Projects"
	}
	b.WriteString(t.Subtitle.Render(label) + "\n")
	b.WriteString(s.table.View() + "\n")

	if s.stale {
		b.WriteString(t.Stale.Render(fmt.Sprintf("offline — showing data from %s", s.fetchedAt.Format("Jan 2 15:04"))) + "\n")
	}
	if s.errText != "" {
		b.WriteString(t.Error.Render(s.errText) + "\n")
	}
	b.WriteString("\n" + t.Help.Render("r refresh • tab switch list • ctrl+p change password"))
	return b.String()
}

// statCards renders the derived totals above the table.
func (s *dashboardScreen) statCards() string {
	t := s.deps.Theme
	aStats := model.AppointmentStats(s.appointments)
	pStats := model.ProjectStats(s.projects)

	cards := []string{
		t.StatCard.Render(fmt.Sprintf("Appointments\n%d total", aStats.Total)),
		t.StatCard.Render(fmt.Sprintf("In progress\n%d", aStats.InProgress+pStats.InProgress)),
		t.StatCard.Render(fmt.Sprintf("Completed\n%d", aStats.Completed+pStats.Completed)),
		t.StatCard.Render(fmt.Sprintf("Projects\n%d total", pStats.Total)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (s *dashboardScreen) title() string {
	switch s.route {
	case auth.RouteEmployeeDashboard:
		return "Employee dashboard"
	case auth.RouteAdminDashboard:
		return "Admin dashboard"
	}
	return "My garage"
}
