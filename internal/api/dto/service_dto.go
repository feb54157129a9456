package dto

import "time"

// ServiceInputRequest is shared by create and update.
type ServiceInputRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// ServiceResponse is the catalog entry shape.
type ServiceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateServiceRequestRequest files a service request.
type CreateServiceRequestRequest struct {
	ServiceID string `json:"service_id" validate:"required,uuid4"`
	Message   string `json:"message" validate:"max=2000"`
}

// ServiceRequestResponse is the request shape.
type ServiceRequestResponse struct {
	ID          string     `json:"id"`
	ServiceID   string     `json:"service_id"`
	ServiceName string     `json:"service_name"`
	ClientID    string     `json:"client_id"`
	Message     string     `json:"message,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}
