package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-desk/internal/auth"
	"github.com/spec-kit/project-desk/internal/config"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/events"
	"github.com/spec-kit/project-desk/internal/observability"
	"github.com/spec-kit/project-desk/internal/repository"
	apperrors "github.com/spec-kit/project-desk/pkg/util"
)

// WorkflowService owns the service-request and project state machines.
// All writes pass the authorization guard and the entity-state invariants
// before any mutation; the repositories guarantee that each write is a
// single serialized statement or transaction.
type WorkflowService struct {
	requests   repository.RequestRepository
	projects   repository.ProjectRepository
	catalog    repository.ServiceRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	strict     bool
}

// WorkflowDependencies bundles repositories for the workflow service.
type WorkflowDependencies struct {
	RequestRepo repository.RequestRepository
	ProjectRepo repository.ProjectRepository
	ServiceRepo repository.ServiceRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// NewWorkflowService constructs the service.
func NewWorkflowService(cfg config.WorkflowConfig, deps WorkflowDependencies) *WorkflowService {
	return &WorkflowService{
		requests:   deps.RequestRepo,
		projects:   deps.ProjectRepo,
		catalog:    deps.ServiceRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		strict:     cfg.StrictStatusOrder,
	}
}

// SubmitRequest files a PENDING service request for the calling client.
// The service name is snapshotted so later catalog edits never rewrite
// request history.
func (s *WorkflowService) SubmitRequest(ctx context.Context, principal *auth.Principal, serviceID, message string) (*domain.ServiceRequest, error) {
	if err := auth.Authorize(principal, domain.RoleClient); err != nil {
		return nil, err
	}
	svc, err := s.catalog.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": serviceID})
		}
		return nil, apperrors.MapError(err)
	}

	req := &domain.ServiceRequest{
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		ClientID:    principal.User.ID,
		Message:     strings.TrimSpace(message),
		Status:      domain.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, principal, events.EventRequestSubmitted, events.RequestSubmittedPayload{
		RequestID:   req.ID,
		ServiceID:   req.ServiceID,
		ServiceName: req.ServiceName,
		ClientID:    req.ClientID,
	})
	return req, nil
}

// ListRequests returns requests visible to the caller: all for ADMIN,
// own for CLIENT.
func (s *WorkflowService) ListRequests(ctx context.Context, principal *auth.Principal) ([]domain.ServiceRequest, error) {
	if err := auth.Authorize(principal, domain.RoleAdmin, domain.RoleClient); err != nil {
		return nil, err
	}
	var (
		requests []domain.ServiceRequest
		err      error
	)
	switch principal.Role {
	case domain.RoleAdmin:
		requests, err = s.requests.List(ctx)
	default:
		requests, err = s.requests.ListByClient(ctx, principal.User.ID)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

// ApproveRequest flips a PENDING request to APPROVED and creates its
// project in a single transaction. The created project is returned as
// the authoritative entity. Approving a non-PENDING request fails with
// INVALID_TRANSITION; concurrent approvals admit exactly one winner.
func (s *WorkflowService) ApproveRequest(ctx context.Context, principal *auth.Principal, requestID string) (*domain.Project, error) {
	if err := auth.Authorize(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	if req.Status != domain.RequestStatusPending {
		return nil, apperrors.NewInvalidTransition("request already decided", map[string]any{
			"request_id": requestID,
			"status":     req.Status,
		})
	}

	project := &domain.Project{
		Name:             "Project - " + req.ServiceName,
		Description:      "Created from approved service request",
		ServiceRequestID: req.ID,
		ClientID:         req.ClientID,
		EmployeeIDs:      []string{},
		Status:           domain.ProjectStatusNotStarted,
	}
	if err := s.requests.Approve(ctx, requestID, project); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotPending):
			return nil, apperrors.NewInvalidTransition("request already decided", map[string]any{
				"request_id": requestID,
			})
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
		default:
			return nil, apperrors.MapError(err)
		}
	}

	observability.RequestDecisionsTotal.WithLabelValues("approved").Inc()
	s.publish(ctx, principal, events.EventRequestApproved, events.RequestDecidedPayload{
		RequestID: requestID,
		ClientID:  req.ClientID,
		ProjectID: project.ID,
	})
	return project, nil
}

// RejectRequest flips a PENDING request to REJECTED. No project is
// created; the terminal state never transitions again.
func (s *WorkflowService) RejectRequest(ctx context.Context, principal *auth.Principal, requestID string) (*domain.ServiceRequest, error) {
	if err := auth.Authorize(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.requests.Reject(ctx, requestID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotPending):
			return nil, apperrors.NewInvalidTransition("request already decided", map[string]any{
				"request_id": requestID,
			})
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
		default:
			return nil, apperrors.MapError(err)
		}
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	observability.RequestDecisionsTotal.WithLabelValues("rejected").Inc()
	s.publish(ctx, principal, events.EventRequestRejected, events.RequestDecidedPayload{
		RequestID: requestID,
		ClientID:  req.ClientID,
	})
	return req, nil
}

// AssignEmployee adds an employee to a project's assignment set. The
// target must resolve to an EMPLOYEE-role user; a duplicate add is
// rejected with ALREADY_ASSIGNED, never silently accepted.
func (s *WorkflowService) AssignEmployee(ctx context.Context, principal *auth.Principal, projectID, employeeID string) (*domain.Project, error) {
	if err := auth.Authorize(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}
	employee, err := s.users.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnknownEmployee(employeeID)
		}
		return nil, apperrors.MapError(err)
	}
	if employee.Role != domain.RoleEmployee {
		return nil, apperrors.NewUnknownEmployee(employeeID)
	}

	project, err := s.projects.AddEmployee(ctx, projectID, employeeID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyAssigned):
			return nil, apperrors.NewAlreadyAssigned(projectID, employeeID)
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		default:
			return nil, apperrors.MapError(err)
		}
	}

	observability.AssignmentChangesTotal.WithLabelValues("assign").Inc()
	s.publish(ctx, principal, events.EventProjectAssigned, events.AssignmentPayload{
		ProjectID:  projectID,
		EmployeeID: employeeID,
	})
	return project, nil
}

// UnassignEmployee removes an employee from the assignment set. Removing
// an absent member is a successful no-op. Status is never touched.
func (s *WorkflowService) UnassignEmployee(ctx context.Context, principal *auth.Principal, projectID, employeeID string) (*domain.Project, error) {
	if err := auth.Authorize(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}
	project, err := s.projects.RemoveEmployee(ctx, projectID, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.MapError(err)
	}

	observability.AssignmentChangesTotal.WithLabelValues("unassign").Inc()
	s.publish(ctx, principal, events.EventProjectUnassigned, events.AssignmentPayload{
		ProjectID:  projectID,
		EmployeeID: employeeID,
	})
	return project, nil
}

// forwardTransitions is the strict-mode order: forward only, COMPLETED
// terminal.
var forwardTransitions = map[domain.ProjectStatus][]domain.ProjectStatus{
	domain.ProjectStatusNotStarted: {domain.ProjectStatusInProgress},
	domain.ProjectStatusInProgress: {domain.ProjectStatusCompleted},
	domain.ProjectStatusCompleted:  {},
}

func isForwardTransition(current, next domain.ProjectStatus) bool {
	for _, candidate := range forwardTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// UpdateProjectStatus lets an assigned employee drive the project
// lifecycle. In strict mode only forward transitions are allowed; in
// permissive mode any of the three values may be set.
func (s *WorkflowService) UpdateProjectStatus(ctx context.Context, principal *auth.Principal, projectID string, newStatus domain.ProjectStatus) (*domain.Project, error) {
	if err := auth.Authorize(principal, domain.RoleEmployee); err != nil {
		return nil, err
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid project status", map[string]any{"status": newStatus})
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.MapError(err)
	}
	if !project.HasEmployee(principal.User.ID) {
		return nil, apperrors.NewForbidden("not assigned to this project")
	}

	oldStatus := project.Status
	var updated *domain.Project
	if s.strict {
		if !isForwardTransition(oldStatus, newStatus) {
			return nil, apperrors.NewInvalidTransition("status may only advance", map[string]any{
				"project_id": projectID,
				"from":       oldStatus,
				"to":         newStatus,
			})
		}
		updated, err = s.projects.SetStatusIf(ctx, projectID, oldStatus, newStatus)
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperrors.NewConflict("project status changed concurrently", map[string]any{
				"project_id": projectID,
			})
		}
	} else {
		updated, err = s.projects.SetStatus(ctx, projectID, newStatus)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.MapError(err)
	}

	observability.ProjectTransitionsTotal.WithLabelValues(string(newStatus)).Inc()
	s.publish(ctx, principal, events.EventProjectStatusChanged, events.ProjectStatusChangedPayload{
		ProjectID: projectID,
		OldStatus: oldStatus,
		NewStatus: updated.Status,
	})
	return updated, nil
}

// ListProjects returns projects visible to the caller: all for ADMIN,
// owned for CLIENT, assigned for EMPLOYEE.
func (s *WorkflowService) ListProjects(ctx context.Context, principal *auth.Principal) ([]domain.Project, error) {
	if err := auth.Authorize(principal); err != nil {
		return nil, err
	}
	var (
		projects []domain.Project
		err      error
	)
	switch principal.Role {
	case domain.RoleAdmin:
		projects, err = s.projects.List(ctx)
	case domain.RoleClient:
		projects, err = s.projects.ListByClient(ctx, principal.User.ID)
	case domain.RoleEmployee:
		projects, err = s.projects.ListByEmployee(ctx, principal.User.ID)
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}

func (s *WorkflowService) publish(ctx context.Context, principal *auth.Principal, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   principal.User.ID,
		ActorRole: principal.Role,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
