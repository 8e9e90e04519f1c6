package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"porchlight/internal/models"
)

// RequireRoles allows the request through when the caller's role is one of
// the given roles. Admins always pass. Must run after AuthMiddleware.
func RequireRoles(roles ...models.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := GetRole(c)
			if role == models.UserRoleAdmin {
				return next(c)
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}

// RequirePropertyWrite gates property mutations to agents and admins.
func RequirePropertyWrite() echo.MiddlewareFunc {
	return RequireRoles(models.UserRoleAgent)
}
