package domain

import "time"

// Message is a plain append-only note between two users. It has no state
// machine; delivery scoping is enforced at send time via contact rules.
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Body        string
	CreatedAt   time.Time
}
