package middleware

import (
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// RequireRole must run after Auth. Requests whose role claim is not in roles
// fail with domain.ErrForbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(KeyRole).(string)
			if !slices.Contains(roles, role) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
