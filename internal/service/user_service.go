package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-desk/internal/auth"
	"github.com/spec-kit/project-desk/internal/config"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/repository"
	apperrors "github.com/spec-kit/project-desk/pkg/util"
)

// UserService is the directory: admin-side account management plus the
// contact scoping used by messaging.
type UserService struct {
	users      repository.UserRepository
	projects   repository.ProjectRepository
	bcryptCost int
}

// UserDependencies bundles repositories for the user service.
type UserDependencies struct {
	UserRepo    repository.UserRepository
	ProjectRepo repository.ProjectRepository
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		projects:   deps.ProjectRepo,
		bcryptCost: cfg.BcryptCost,
	}
}

// UserCreateInput describes an admin-created account. Role is fixed here
// and immutable afterwards.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// CreateUser registers an account with the given role.
func (s *UserService) CreateUser(ctx context.Context, principal *auth.Principal, input UserCreateInput) (*domain.User, error) {
	if err := auth.Authorize(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteUser removes an account. Admin accounts and users referenced by
// an active project (as client or assignee) are protected; an employee
// whose remaining references are all on completed projects is pulled from
// those assignment sets first.
func (s *UserService) DeleteUser(ctx context.Context, principal *auth.Principal, userID string) error {
	if err := auth.Authorize(principal, domain.RoleAdmin); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	if user.Role == domain.RoleAdmin {
		return apperrors.NewConflict("admin accounts cannot be deleted", nil)
	}

	active, err := s.projects.HasActiveForUser(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if active {
		return apperrors.NewConflict("user is referenced by an active project", map[string]any{"user_id": userID})
	}
	if user.Role == domain.RoleClient {
		owned, err := s.projects.HasAnyForClient(ctx, userID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if owned {
			return apperrors.NewConflict("client owns existing projects", map[string]any{"user_id": userID})
		}
	}
	if user.Role == domain.RoleEmployee {
		if err := s.projects.RemoveEmployeeEverywhere(ctx, userID); err != nil {
			return apperrors.MapError(err)
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListUsers returns all accounts, optionally filtered by role. ADMIN only.
func (s *UserService) ListUsers(ctx context.Context, principal *auth.Principal, role *domain.Role) ([]domain.User, error) {
	if err := auth.Authorize(principal, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if role != nil && !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *role})
	}
	users, err := s.users.List(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Contacts returns the users the caller may message: admins see everyone
// else; clients see admins plus employees staffed on their projects;
// employees see admins plus clients of projects they are assigned to.
func (s *UserService) Contacts(ctx context.Context, principal *auth.Principal) ([]domain.User, error) {
	if err := auth.Authorize(principal); err != nil {
		return nil, err
	}
	switch principal.Role {
	case domain.RoleAdmin:
		all, err := s.users.List(ctx, nil)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		contacts := make([]domain.User, 0, len(all))
		for _, u := range all {
			if u.ID != principal.User.ID {
				contacts = append(contacts, u)
			}
		}
		return contacts, nil

	case domain.RoleClient:
		projects, err := s.projects.ListByClient(ctx, principal.User.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ids := uniqueIDs(projects, func(p domain.Project) []string { return p.EmployeeIDs })
		return s.adminsPlus(ctx, ids)

	case domain.RoleEmployee:
		projects, err := s.projects.ListByEmployee(ctx, principal.User.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ids := uniqueIDs(projects, func(p domain.Project) []string { return []string{p.ClientID} })
		return s.adminsPlus(ctx, ids)
	}
	return nil, apperrors.NewForbidden("unknown role")
}

// CanMessage reports whether the recipient is in the caller's contact
// scope.
func (s *UserService) CanMessage(ctx context.Context, principal *auth.Principal, recipientID string) (bool, error) {
	if recipientID == principal.User.ID {
		return false, nil
	}
	contacts, err := s.Contacts(ctx, principal)
	if err != nil {
		return false, err
	}
	for _, c := range contacts {
		if c.ID == recipientID {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserService) adminsPlus(ctx context.Context, extraIDs []string) ([]domain.User, error) {
	adminRole := domain.RoleAdmin
	admins, err := s.users.List(ctx, &adminRole)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	extras, err := s.users.ListByIDs(ctx, extraIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return append(admins, extras...), nil
}

func uniqueIDs(projects []domain.Project, extract func(domain.Project) []string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, p := range projects {
		for _, id := range extract(p) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
