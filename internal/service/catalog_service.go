package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-desk/internal/auth"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/repository"
	apperrors "github.com/spec-kit/project-desk/pkg/util"
)

// CatalogService manages the registry of offerable services. Writes are
// ADMIN-only; reads are open to any authenticated caller.
type CatalogService struct {
	services repository.ServiceRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(services repository.ServiceRepository) *CatalogService {
	return &CatalogService{services: services}
}

// ServiceInput describes creation and update payloads.
type ServiceInput struct {
	Name        string
	Description string
}

// CreateService registers a new offerable service.
func (s *CatalogService) CreateService(ctx context.Context, principal *auth.Principal, input ServiceInput) (*domain.Service, error) {
	if err := auth.Authorize(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	svc := &domain.Service{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return svc, nil
}

// UpdateService edits name and description. Requests keep their snapshot
// of the name taken at submission time, so history is unaffected.
func (s *CatalogService) UpdateService(ctx context.Context, principal *auth.Principal, id string, input ServiceInput) (*domain.Service, error) {
	if err := auth.Authorize(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		svc.Name = name
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		svc.Description = desc
	}
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return svc, nil
}

// ListServices returns the catalog for any authenticated caller.
func (s *CatalogService) ListServices(ctx context.Context, principal *auth.Principal) ([]domain.Service, error) {
	if err := auth.Authorize(principal); err != nil {
		return nil, err
	}
	services, err := s.services.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return services, nil
}
