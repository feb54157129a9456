package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/project-desk/internal/domain"
)

// ErrNotPending is returned when a terminal-state request is asked to
// transition again. The caller distinguishes it from a missing row.
var ErrNotPending = errors.New("service request is not pending")

// RequestRepository encapsulates service-request persistence. Approve and
// Reject use conditional updates keyed on the PENDING status, so
// concurrent decisions on the same request serialize in the database and
// exactly one wins.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	List(ctx context.Context) ([]domain.ServiceRequest, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.ServiceRequest, error)
	// Approve flips the request to APPROVED and inserts the project in
	// one transaction; both effects commit or neither does.
	Approve(ctx context.Context, requestID string, project *domain.Project) error
	Reject(ctx context.Context, requestID string) error
	CountByStatus(ctx context.Context, status domain.RequestStatus) (int64, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (service_id, service_name, client_id, message, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id::text, created_at`
	return r.pool.QueryRow(ctx, query,
		req.ServiceID,
		req.ServiceName,
		req.ClientID,
		req.Message,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt)
}

const requestColumns = `id::text, service_id::text, service_name, client_id::text, message, status, created_at, decided_at`

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id=$1`

	var req domain.ServiceRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.ServiceID,
		&req.ServiceName,
		&req.ClientID,
		&req.Message,
		&req.Status,
		&req.CreatedAt,
		&req.DecidedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context) ([]domain.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) ListByClient(ctx context.Context, clientID string) ([]domain.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE client_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) Approve(ctx context.Context, requestID string, project *domain.Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `
        UPDATE service_requests SET status=$2, decided_at=NOW()
        WHERE id=$1 AND status=$3`,
		requestID, domain.RequestStatusApproved, domain.RequestStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.classifyMiss(ctx, tx, requestID)
	}

	const insertProject = `
        INSERT INTO projects (name, description, service_request_id, client_id, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id::text, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertProject,
		project.Name,
		project.Description,
		project.ServiceRequestID,
		project.ClientID,
		project.Status,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *requestRepository) Reject(ctx context.Context, requestID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `
        UPDATE service_requests SET status=$2, decided_at=NOW()
        WHERE id=$1 AND status=$3`,
		requestID, domain.RequestStatusRejected, domain.RequestStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.classifyMiss(ctx, tx, requestID)
	}
	return tx.Commit(ctx)
}

// classifyMiss tells "no such request" apart from "already decided" after
// a conditional update matched nothing.
func (r *requestRepository) classifyMiss(ctx context.Context, tx pgx.Tx, requestID string) error {
	var status domain.RequestStatus
	err := tx.QueryRow(ctx, `SELECT status FROM service_requests WHERE id=$1`, requestID).Scan(&status)
	if err != nil {
		return err
	}
	return ErrNotPending
}

func (r *requestRepository) CountByStatus(ctx context.Context, status domain.RequestStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM service_requests WHERE status=$1`, status).Scan(&count)
	return count, err
}

func scanRequests(rows pgx.Rows) ([]domain.ServiceRequest, error) {
	var result []domain.ServiceRequest
	for rows.Next() {
		var req domain.ServiceRequest
		if err := rows.Scan(
			&req.ID,
			&req.ServiceID,
			&req.ServiceName,
			&req.ClientID,
			&req.Message,
			&req.Status,
			&req.CreatedAt,
			&req.DecidedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
