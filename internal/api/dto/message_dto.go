package dto

import "time"

// SendMessageRequest posts a message to another user.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid4"`
	Body        string `json:"body" validate:"required,min=1,max=5000"`
}

// MessageResponse is the message shape.
type MessageResponse struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContactResponse is a directory entry visible to the caller.
type ContactResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// StatsResponse is the admin dashboard overview.
type StatsResponse struct {
	TotalEmployees    int64 `json:"total_employees"`
	TotalClients      int64 `json:"total_clients"`
	TotalServices     int64 `json:"total_services"`
	TotalProjects     int64 `json:"total_projects"`
	PendingRequests   int64 `json:"pending_requests"`
	ActiveProjects    int64 `json:"active_projects"`
	CompletedProjects int64 `json:"completed_projects"`
}
