package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/cassianoaxe/endurancy-support/pkg/util"
)

// RequireAuthenticated ensures a principal is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireStaffLevel ensures the principal is admin, org_admin or staff.
func RequireStaffLevel() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.IsStaffLevel() {
			return apperrors.NewForbidden("staff role required")
		}
		return c.Next()
	}
}
