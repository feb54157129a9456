package events

import (
	"time"

	"github.com/spec-kit/project-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestSubmitted     EventType = "request_submitted"
	EventRequestApproved      EventType = "request_approved"
	EventRequestRejected      EventType = "request_rejected"
	EventProjectAssigned      EventType = "project_assigned"
	EventProjectUnassigned    EventType = "project_unassigned"
	EventProjectStatusChanged EventType = "project_status_changed"
	EventMessageSent          EventType = "message_sent"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	ActorRole domain.Role `json:"actor_role"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	RequestID   string `json:"request_id"`
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	ClientID    string `json:"client_id"`
}

// RequestDecidedPayload payload for approvals and rejections.
type RequestDecidedPayload struct {
	RequestID string `json:"request_id"`
	ClientID  string `json:"client_id"`
	// ProjectID is set only on approval.
	ProjectID string `json:"project_id,omitempty"`
}

// AssignmentPayload payload.
type AssignmentPayload struct {
	ProjectID  string `json:"project_id"`
	EmployeeID string `json:"employee_id"`
}

// ProjectStatusChangedPayload payload.
type ProjectStatusChangedPayload struct {
	ProjectID string               `json:"project_id"`
	OldStatus domain.ProjectStatus `json:"old_status"`
	NewStatus domain.ProjectStatus `json:"new_status"`
}

// MessageSentPayload payload.
type MessageSentPayload struct {
	MessageID   string `json:"message_id"`
	RecipientID string `json:"recipient_id"`
}
