package domain

import "time"

// ProjectStatus enumerates execution states for projects.
type ProjectStatus string

const (
	ProjectStatusNotStarted ProjectStatus = "NOT_STARTED"
	ProjectStatusInProgress ProjectStatus = "IN_PROGRESS"
	ProjectStatusCompleted  ProjectStatus = "COMPLETED"
)

// Valid reports whether the status is one of the known values.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusNotStarted, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project is the unit of delivery work created when a service request is
// approved. ServiceRequestID is unique: exactly one project per approved
// request. EmployeeIDs is the assignment set, without duplicates.
type Project struct {
	ID               string
	Name             string
	Description      string
	ServiceRequestID string
	ClientID         string
	EmployeeIDs      []string
	Status           ProjectStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasEmployee reports whether the given user id is in the assignment set.
func (p *Project) HasEmployee(id string) bool {
	for _, e := range p.EmployeeIDs {
		if e == id {
			return true
		}
	}
	return false
}
