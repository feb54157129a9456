package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/project-desk/internal/auth"
	"github.com/spec-kit/project-desk/internal/config"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/observability"
	"github.com/spec-kit/project-desk/internal/repository"
	"github.com/spec-kit/project-desk/internal/session"
	apperrors "github.com/spec-kit/project-desk/pkg/util"
)

// AuthService coordinates login, logout and profile flows. Login issues a
// bearer token backed by a server-side session record; logout deletes the
// record so the token stops resolving.
type AuthService struct {
	users      repository.UserRepository
	sessions   session.Store
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	SessionStore session.Store
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionStore,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL()),
		bcryptCost: cfg.BcryptCost,
	}
}

// LoginResult carries the issued credential and the authenticated user.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Login authenticates by email and password. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			observability.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		observability.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, apperrors.NewInvalidCredentials()
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := s.tokenMgr.GenerateToken(sessionID, user.ID, user.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	sess := &domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Role:      user.Role,
		TokenHash: auth.HashToken(token),
		IssuedAt:  time.Now(),
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, apperrors.MapError(err)
	}

	observability.LoginsTotal.WithLabelValues("success").Inc()
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the caller's session. Revoking an absent session is a
// no-op.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if err := s.sessions.Delete(ctx, principal.SessionID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ProfileUpdate describes a profile mutation.
type ProfileUpdate struct {
	Name  string
	Email string
}

// UpdateProfile updates the caller's own name and email.
func (s *AuthService) UpdateProfile(ctx context.Context, principal *auth.Principal, update ProfileUpdate) (*domain.User, error) {
	if err := auth.Authorize(principal); err != nil {
		return nil, err
	}
	user := principal.User
	if name := strings.TrimSpace(update.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(update.Email)); email != "" && email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != user.ID {
			return nil, apperrors.NewConflict("email already in use", map[string]any{"email": email})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		user.Email = email
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, principal *auth.Principal, currentPassword, newPassword string) error {
	if err := auth.Authorize(principal); err != nil {
		return err
	}
	if err := auth.ComparePassword(principal.User.PasswordHash, currentPassword); err != nil {
		return apperrors.NewInvalidCredentials()
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	principal.User.PasswordHash = hash
	if err := s.users.Update(ctx, principal.User); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// EnsureBootstrapAdmin creates the initial admin account when none exists
// and bootstrap credentials are configured.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig, logger *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	count, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Name:         cfg.AdminName,
		Email:        strings.ToLower(cfg.AdminEmail),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	logger.Info("bootstrap admin created", zap.String("email", admin.Email))
	return nil
}
