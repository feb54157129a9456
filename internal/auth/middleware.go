package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/repository"
	"github.com/spec-kit/project-desk/internal/session"
	apperrors "github.com/spec-kit/project-desk/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	SessionID string
	User      *domain.User
	Role      domain.Role
}

// AuthMiddleware validates bearer tokens against the session store and
// loads principals into the request context.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions session.Store
	users    repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions session.Store, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, users: users}
}

// Handle enforces authentication for protected routes. A token resolves
// only while its session record is live: signature valid, record present,
// stored token hash matching the presented token.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	sess, err := m.sessions.Get(c.Context(), claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return apperrors.NewUnauthenticated("session expired or revoked")
		}
		return apperrors.MapError(err)
	}
	if subtle.ConstantTimeCompare(sess.TokenHash, HashToken(parts[1])) != 1 {
		return apperrors.NewUnauthenticated("token does not match session")
	}

	user, err := m.users.GetByID(c.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated("user no longer exists")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{
		SessionID: sess.ID,
		User:      user,
		Role:      user.Role,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
