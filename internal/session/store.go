// Package session holds the authoritative token -> (user, role, expiry)
// mapping. Credentials resolve only while a live record exists; logout or
// TTL lapse removes the record and the token stops resolving immediately.
package session

import (
	"context"
	"errors"

	"github.com/spec-kit/project-desk/internal/domain"
)

// ErrNotFound is returned when a session is absent or expired.
var ErrNotFound = errors.New("session not found")

// Store persists sessions. Create must honor the session's ExpiresAt;
// Get must never return an expired session; Delete is idempotent.
type Store interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
