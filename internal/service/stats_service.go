package service

import (
	"context"

	"github.com/spec-kit/project-desk/internal/auth"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/repository"
	apperrors "github.com/spec-kit/project-desk/pkg/util"
)

// StatsService is a read-only projection over the stores for the admin
// dashboard. No write-side invariants live here.
type StatsService struct {
	users    repository.UserRepository
	services repository.ServiceRepository
	requests repository.RequestRepository
	projects repository.ProjectRepository
}

// StatsDependencies bundles repositories for the stats service.
type StatsDependencies struct {
	UserRepo    repository.UserRepository
	ServiceRepo repository.ServiceRepository
	RequestRepo repository.RequestRepository
	ProjectRepo repository.ProjectRepository
}

// NewStatsService constructs the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	return &StatsService{
		users:    deps.UserRepo,
		services: deps.ServiceRepo,
		requests: deps.RequestRepo,
		projects: deps.ProjectRepo,
	}
}

// Overview aggregates dashboard counters.
type Overview struct {
	TotalEmployees    int64 `json:"total_employees"`
	TotalClients      int64 `json:"total_clients"`
	TotalServices     int64 `json:"total_services"`
	TotalProjects     int64 `json:"total_projects"`
	PendingRequests   int64 `json:"pending_requests"`
	ActiveProjects    int64 `json:"active_projects"`
	CompletedProjects int64 `json:"completed_projects"`
}

// AdminOverview computes counts for the admin dashboard.
func (s *StatsService) AdminOverview(ctx context.Context, principal *auth.Principal) (*Overview, error) {
	if err := auth.Authorize(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}

	var (
		overview Overview
		err      error
	)
	if overview.TotalEmployees, err = s.users.CountByRole(ctx, domain.RoleEmployee); err != nil {
		return nil, apperrors.MapError(err)
	}
	if overview.TotalClients, err = s.users.CountByRole(ctx, domain.RoleClient); err != nil {
		return nil, apperrors.MapError(err)
	}
	if overview.TotalServices, err = s.services.Count(ctx); err != nil {
		return nil, apperrors.MapError(err)
	}
	if overview.TotalProjects, err = s.projects.Count(ctx); err != nil {
		return nil, apperrors.MapError(err)
	}
	if overview.PendingRequests, err = s.requests.CountByStatus(ctx, domain.RequestStatusPending); err != nil {
		return nil, apperrors.MapError(err)
	}
	if overview.ActiveProjects, err = s.projects.CountByStatus(ctx, domain.ProjectStatusInProgress); err != nil {
		return nil, apperrors.MapError(err)
	}
	if overview.CompletedProjects, err = s.projects.CountByStatus(ctx, domain.ProjectStatusCompleted); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &overview, nil
}
