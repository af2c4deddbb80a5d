// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jeranaias/gearsync-tui/internal/model"
)

// =============================================================================
// CUSTOMER OPERATIONS
// =============================================================================

// Appointments lists the customer's own appointments.
func (c *Client) Appointments(ctx context.Context) ([]model.Appointment, error) {
	var out []model.Appointment
	err := c.do(ctx, http.MethodGet, "/customer/appointments", nil, &out, authRequired)
	return out, err
}

// BookAppointment books a new service appointment.
func (c *Client) BookAppointment(ctx context.Context, req model.AppointmentRequest) (model.Appointment, error) {
	var out model.Appointment
	err := c.do(ctx, http.MethodPost, "/customer/appointments", req, &out, withAuth(failureMap{
		400: ErrValidationFailed,
	}))
	return out, err
}

// CancelAppointment cancels one of the customer's appointments.
func (c *Client) CancelAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/customer/appointments/%d", id), nil, nil, authRequired)
}

// Projects lists the customer's projects.
func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := c.do(ctx, http.MethodGet, "/customer/projects", nil, &out, authRequired)
	return out, err
}

// Project fetches one project by ID.
func (c *Client) Project(ctx context.Context, id int64) (model.Project, error) {
	var out model.Project
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/customer/projects/%d", id), nil, &out, authRequired)
	return out, err
}

// Vehicles lists the customer's registered vehicles.
func (c *Client) Vehicles(ctx context.Context) ([]model.Vehicle, error) {
	var out []model.Vehicle
	err := c.do(ctx, http.MethodGet, "/customer/vehicles", nil, &out, authRequired)
	return out, err
}

// AddVehicle registers a vehicle under the customer's account.
func (c *Client) AddVehicle(ctx context.Context, req model.VehicleRequest) (model.Vehicle, error) {
	var out model.Vehicle
	err := c.do(ctx, http.MethodPost, "/customer/vehicles", req, &out, withAuth(failureMap{
		400: ErrValidationFailed,
	}))
	return out, err
}

// ServiceTypes lists the services the shop offers.
func (c *Client) ServiceTypes(ctx context.Context) ([]model.ServiceType, error) {
	var out []model.ServiceType
	err := c.do(ctx, http.MethodGet, "/service/view/all", nil, &out, authRequired)
	return out, err
}

// =============================================================================
// EMPLOYEE OPERATIONS
// =============================================================================

// AssignedAppointments lists appointments assigned to the employee.
func (c *Client) AssignedAppointments(ctx context.Context) ([]model.Appointment, error) {
	var out []model.Appointment
	err := c.do(ctx, http.MethodGet, "/employee/appointments", nil, &out, authRequired)
	return out, err
}

// AssignedProjects lists projects assigned to the employee.
func (c *Client) AssignedProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := c.do(ctx, http.MethodGet, "/employee/projects", nil, &out, authRequired)
	return out, err
}

// UpdateAppointmentStatus advances an assigned appointment.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, id int64, req model.StatusUpdate) (model.Appointment, error) {
	var out model.Appointment
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/employee/appointments/%d/status", id), req, &out, withAuth(failureMap{
		400: ErrValidationFailed,
	}))
	return out, err
}

// UpdateProjectStatus advances an assigned project.
func (c *Client) UpdateProjectStatus(ctx context.Context, id int64, req model.StatusUpdate) (model.Project, error) {
	var out model.Project
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/employee/projects/%d/status", id), req, &out, withAuth(failureMap{
		400: ErrValidationFailed,
	}))
	return out, err
}

// TimeLogs lists the time entries recorded against a project.
func (c *Client) TimeLogs(ctx context.Context, projectID int64) ([]model.TimeLog, error) {
	var out []model.TimeLog
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/employee/projects/%d/timelogs", projectID), nil, &out, authRequired)
	return out, err
}

// LogTime records a new time entry against a project.
func (c *Client) LogTime(ctx context.Context, projectID int64, req model.TimeLogRequest) (model.TimeLog, error) {
	var out model.TimeLog
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/employee/projects/%d/timelogs", projectID), req, &out, withAuth(failureMap{
		400: ErrValidationFailed,
	}))
	return out, err
}

// =============================================================================
// ADMIN OPERATIONS
// =============================================================================

// Employees lists staff accounts.
func (c *Client) Employees(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := c.do(ctx, http.MethodGet, "/admin/employees", nil, &out, authRequired)
	return out, err
}

// AddEmployee creates a staff account.
func (c *Client) AddEmployee(ctx context.Context, req RegisterRequest) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodPost, "/admin/employees", req, &out, withAuth(failureMap{
		400: ErrValidationFailed,
	}))
	return out, err
}

// AddServiceType creates a new offered service.
func (c *Client) AddServiceType(ctx context.Context, req model.ServiceType) (model.ServiceType, error) {
	var out model.ServiceType
	err := c.do(ctx, http.MethodPost, "/admin/service/add", req, &out, withAuth(failureMap{
		400: ErrValidationFailed,
	}))
	return out, err
}

// AssignEmployee assigns a staff member to a project.
func (c *Client) AssignEmployee(ctx context.Context, projectID, employeeID int64) error {
	req := struct {
		EmployeeID int64 `json:"employeeId"`
	}{employeeID}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/projects/%d/assign", projectID), req, nil, withAuth(failureMap{
		400: ErrValidationFailed,
	}))
}

// withAuth merges an operation-specific failure map with the shared
// unauthenticated mapping.
func withAuth(extra failureMap) failureMap {
	merged := failureMap{}
	for status, err := range authRequired {
		merged[status] = err
	}
	for status, err := range extra {
		merged[status] = err
	}
	return merged
}
