package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoleAdmin is the role claim carried by tokens from POST /admin/token.
const RoleAdmin = "ADMIN"

// RequireRole returns a middleware function that enforces that the
// authenticated caller has one of the specified roles.  It assumes JWTAuth
// has already stored the role claim in the context; a missing or unknown
// role is answered with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ctxRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// DenyRole rejects callers whose verified token carries one of roles with
// 403 Forbidden.  Callers without a token pass through, so it pairs with
// OptionalJWT.
func DenyRole(roles ...string) echo.MiddlewareFunc {
	denied := make(map[string]bool, len(roles))
	for _, r := range roles {
		denied[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role, ok := c.Get(ctxRole).(string); ok && denied[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
