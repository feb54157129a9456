package dto

import "time"

// ProjectResponse is the project shape.
type ProjectResponse struct {
	ID               string    `json:"id"`
	ServiceRequestID string    `json:"service_request_id"`
	ClientID         string    `json:"client_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Status           string    `json:"status"`
	EmployeeIDs      []string  `json:"employee_ids"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AssignEmployeeRequest adds an employee to a project team.
type AssignEmployeeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid4"`
}

// UnassignEmployeeRequest removes an employee from a project team.
type UnassignEmployeeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid4"`
}

// UpdateProjectStatusRequest moves a project to a new status.
type UpdateProjectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED"`
}
