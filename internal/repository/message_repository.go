package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/project-desk/internal/domain"
)

// MessageRepository encapsulates the append-only message log.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListForUser(ctx context.Context, userID string) ([]domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository instantiates repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (sender_id, recipient_id, body)
        VALUES ($1, $2, $3)
        RETURNING id::text, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.SenderID,
		msg.RecipientID,
		msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt)
}

// ListForUser returns the user's sent and received messages in
// chronological order.
func (r *messageRepository) ListForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	const query = `
        SELECT id::text, sender_id::text, recipient_id::text, body, created_at
        FROM messages
        WHERE sender_id=$1 OR recipient_id=$1
        ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.RecipientID,
			&msg.Body,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
