// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// SERVICE-MANAGEMENT ENTITIES
// =============================================================================

// Appointment is a booked vehicle service appointment.
type Appointment struct {
	ID               int64     `json:"id"`
	Status           string    `json:"status"`
	ScheduledAt      time.Time `json:"scheduledDateTime"`
	ServiceName      string    `json:"serviceName,omitempty"`
	CustomerNotes    string    `json:"customerNotes,omitempty"`
	EmployeeNotes    string    `json:"employeeNotes,omitempty"`
	EstimatedCost    float64   `json:"estimatedCost,omitempty"`
	FinalCost        float64   `json:"finalCost,omitempty"`
	Progress         int       `json:"progressPercentage,omitempty"`
	CustomerName     string    `json:"customerName,omitempty"`
	VehicleMake      string    `json:"vehicleMake,omitempty"`
	VehicleModel     string    `json:"vehicleModel,omitempty"`
	VehicleYear      string    `json:"vehicleYear,omitempty"`
	AssignedEmployee string    `json:"assignedEmployeeName,omitempty"`
}

// AppointmentRequest books a new appointment.
type AppointmentRequest struct {
	VehicleID       int64     `json:"vehicleId" validate:"required"`
	ServiceID       int64     `json:"serviceId" validate:"required"`
	AppointmentDate time.Time `json:"appointmentDate" validate:"required"`
	Notes           string    `json:"notes,omitempty"`
}

// Project is a longer-running piece of work on a vehicle.
type Project struct {
	ID               int64      `json:"id"`
	Name             string     `json:"projectName"`
	Description      string     `json:"description,omitempty"`
	Status           string     `json:"status"`
	Progress         int        `json:"progressPercentage,omitempty"`
	EstimatedCost    float64    `json:"estimatedCost,omitempty"`
	ActualCost       float64    `json:"actualCost,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	CompletionDate   *time.Time `json:"completionDate,omitempty"`
	CustomerName     string     `json:"customerName,omitempty"`
	VehicleMake      string     `json:"vehicleMake,omitempty"`
	VehicleModel     string     `json:"vehicleModel,omitempty"`
	AssignedEmployee string     `json:"assignedEmployeeName,omitempty"`
}

// TimeLog is a block of time an employee logged against a project or
// appointment.
type TimeLog struct {
	ID          int64      `json:"id"`
	Description string     `json:"description,omitempty"`
	StartedAt   time.Time  `json:"startTime"`
	EndedAt     *time.Time `json:"endTime,omitempty"`
	Minutes     int        `json:"durationMinutes,omitempty"`
	EmployeeID  int64      `json:"employeeId,omitempty"`
}

// TimeLogRequest records a new time entry.
type TimeLogRequest struct {
	Description string     `json:"description" validate:"required"`
	StartedAt   time.Time  `json:"startTime" validate:"required"`
	EndedAt     *time.Time `json:"endTime,omitempty"`
}

// ServiceType is a service offered by the shop (oil change, brake job, ...).
type ServiceType struct {
	ID              int64   `json:"id"`
	Name            string  `json:"serviceName"`
	Description     string  `json:"description,omitempty"`
	BasePrice       float64 `json:"basePrice,omitempty"`
	DurationMinutes int     `json:"estimatedDurationMinutes,omitempty"`
	Category        string  `json:"category,omitempty"`
}

// Vehicle is a customer-owned vehicle.
type Vehicle struct {
	ID           int64  `json:"id"`
	Registration string `json:"registrationNumber,omitempty"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	VIN          string `json:"vinNumber,omitempty"`
}

// VehicleRequest registers a new vehicle.
type VehicleRequest struct {
	Make         string `json:"make" validate:"required"`
	Model        string `json:"model" validate:"required"`
	Year         int    `json:"year" validate:"required,gte=1900"`
	LicensePlate string `json:"licensePlate" validate:"required"`
	VIN          string `json:"vin,omitempty"`
}

// StatusUpdate changes the status of an assigned appointment or project.
type StatusUpdate struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes,omitempty"`
}

// =============================================================================
// DERIVED DASHBOARD STATS
// =============================================================================

// Stats summarizes a fetched list for the dashboard stat cards. It is derived
// entirely client-side; the backend only serves the raw lists.
type Stats struct {
	Total      int
	ByStatus   map[string]int
	InProgress int
	Completed  int
}

// statusCompleted and statusInProgress are the backend's status spellings the
// stat cards single out.
const (
	statusCompleted  = "COMPLETED"
	statusInProgress = "IN_PROGRESS"
)

// AppointmentStats derives stat-card numbers from an appointment list.
func AppointmentStats(items []Appointment) Stats {
	s := Stats{ByStatus: make(map[string]int)}
	for _, a := range items {
		s.Total++
		s.ByStatus[a.Status]++
	}
	s.Completed = s.ByStatus[statusCompleted]
	s.InProgress = s.ByStatus[statusInProgress]
	return s
}

// ProjectStats derives stat-card numbers from a project list.
func ProjectStats(items []Project) Stats {
	s := Stats{ByStatus: make(map[string]int)}
	for _, p := range items {
		s.Total++
		s.ByStatus[p.Status]++
	}
	s.Completed = s.ByStatus[statusCompleted]
	s.InProgress = s.ByStatus[statusInProgress]
	return s
}
