package domain

import "time"

// Service is an offerable unit of work catalogued by an administrator.
type Service struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
