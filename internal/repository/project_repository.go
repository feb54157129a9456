package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/project-desk/internal/domain"
)

// ErrAlreadyAssigned is returned when the employee is already in the
// project's assignment set.
var ErrAlreadyAssigned = errors.New("employee already in assignment set")

// ErrStatusChanged is returned when a conditional status update lost a
// race: the row no longer carries the expected current status.
var ErrStatusChanged = errors.New("project status changed concurrently")

// ProjectRepository encapsulates project persistence. Assignment-set
// mutations are single conditional statements so concurrent admins cannot
// produce duplicates or lost updates.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Project, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.Project, error)
	AddEmployee(ctx context.Context, projectID, employeeID string) (*domain.Project, error)
	RemoveEmployee(ctx context.Context, projectID, employeeID string) (*domain.Project, error)
	SetStatus(ctx context.Context, projectID string, status domain.ProjectStatus) (*domain.Project, error)
	SetStatusIf(ctx context.Context, projectID string, expect, status domain.ProjectStatus) (*domain.Project, error)
	HasActiveForUser(ctx context.Context, userID string) (bool, error)
	HasAnyForClient(ctx context.Context, clientID string) (bool, error)
	RemoveEmployeeEverywhere(ctx context.Context, employeeID string) error
	CountByStatus(ctx context.Context, status domain.ProjectStatus) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectColumns = `id::text, name, description, service_request_id::text, client_id::text,
               employee_ids::text[], status, created_at, updated_at`

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *projectRepository) List(ctx context.Context) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (r *projectRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE client_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (r *projectRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE $1::uuid = ANY(employee_ids) ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

// AddEmployee appends atomically; the NOT ANY predicate makes duplicate
// adds match zero rows instead of corrupting the set.
func (r *projectRepository) AddEmployee(ctx context.Context, projectID, employeeID string) (*domain.Project, error) {
	query := `
        UPDATE projects
        SET employee_ids = array_append(employee_ids, $2::uuid), updated_at = NOW()
        WHERE id=$1 AND NOT ($2::uuid = ANY(employee_ids))
        RETURNING ` + projectColumns

	project, err := r.fetchSingle(ctx, query, projectID, employeeID)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	// Zero rows: either the project is missing or the employee is
	// already assigned.
	if _, getErr := r.GetByID(ctx, projectID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrAlreadyAssigned
}

// RemoveEmployee removes if present; removing an absent member is a
// successful no-op.
func (r *projectRepository) RemoveEmployee(ctx context.Context, projectID, employeeID string) (*domain.Project, error) {
	query := `
        UPDATE projects
        SET employee_ids = array_remove(employee_ids, $2::uuid), updated_at = NOW()
        WHERE id=$1
        RETURNING ` + projectColumns
	return r.fetchSingle(ctx, query, projectID, employeeID)
}

func (r *projectRepository) SetStatus(ctx context.Context, projectID string, status domain.ProjectStatus) (*domain.Project, error) {
	query := `
        UPDATE projects SET status=$2, updated_at=NOW()
        WHERE id=$1
        RETURNING ` + projectColumns
	return r.fetchSingle(ctx, query, projectID, status)
}

// SetStatusIf applies the transition only when the row still carries the
// expected current status, so racing writers cannot leapfrog the order.
func (r *projectRepository) SetStatusIf(ctx context.Context, projectID string, expect, status domain.ProjectStatus) (*domain.Project, error) {
	query := `
        UPDATE projects SET status=$3, updated_at=NOW()
        WHERE id=$1 AND status=$2
        RETURNING ` + projectColumns

	project, err := r.fetchSingle(ctx, query, projectID, expect, status)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, projectID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStatusChanged
}

// HasActiveForUser reports whether any non-COMPLETED project references
// the user as client or assignee. Drives the user-deletion guard.
func (r *projectRepository) HasActiveForUser(ctx context.Context, userID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM projects
            WHERE status <> $2 AND (client_id=$1 OR $1::uuid = ANY(employee_ids))
        )`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, domain.ProjectStatusCompleted).Scan(&exists)
	return exists, err
}

// HasAnyForClient reports whether any project at all names the user as
// its client. projects.client_id is a foreign key, so such users cannot
// be deleted.
func (r *projectRepository) HasAnyForClient(ctx context.Context, clientID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE client_id=$1)`, clientID).Scan(&exists)
	return exists, err
}

// RemoveEmployeeEverywhere pulls the employee out of every assignment set
// (used when deleting an employee whose remaining references are all on
// completed projects).
func (r *projectRepository) RemoveEmployeeEverywhere(ctx context.Context, employeeID string) error {
	_, err := r.pool.Exec(ctx, `
        UPDATE projects SET employee_ids = array_remove(employee_ids, $1::uuid), updated_at=NOW()
        WHERE $1::uuid = ANY(employee_ids)`, employeeID)
	return err
}

func (r *projectRepository) CountByStatus(ctx context.Context, status domain.ProjectStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE status=$1`, status).Scan(&count)
	return count, err
}

func (r *projectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}

func (r *projectRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Project, error) {
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.ServiceRequestID,
		&project.ClientID,
		&project.EmployeeIDs,
		&project.Status,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}

func scanProjects(rows pgx.Rows) ([]domain.Project, error) {
	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.ServiceRequestID,
			&project.ClientID,
			&project.EmployeeIDs,
			&project.Status,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}
