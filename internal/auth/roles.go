package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-desk/internal/domain"
	apperrors "github.com/spec-kit/project-desk/pkg/util"
)

// Authorize is the single role checkpoint: it admits the principal when
// its role is in the required set. Services call it before every write so
// transport-level guards are never the security boundary.
func Authorize(p *Principal, required ...domain.Role) error {
	if p == nil || p.User == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if len(required) == 0 {
		return nil
	}
	for _, role := range required {
		if p.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}

// RequireRole gates a route group on the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if err := Authorize(principal, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal is present, any role.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}
