package domain

import "time"

// RequestStatus enumerates service-request lifecycle states. PENDING is
// the only non-terminal state; APPROVED and REJECTED are final.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// ServiceRequest is a client's request to engage a Service. ServiceName
// is snapshotted at submission time so later catalog edits do not rewrite
// request history.
type ServiceRequest struct {
	ID          string
	ServiceID   string
	ServiceName string
	ClientID    string
	Message     string
	Status      RequestStatus
	CreatedAt   time.Time
	DecidedAt   *time.Time
}
