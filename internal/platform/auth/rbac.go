package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin      = "admin"
	RoleOdontologo = "odontologo"
	RoleSecretaria = "secretaria"
	RoleAsistente  = "asistente"
)

var knownRoles = map[string]bool{
	RoleAdmin:      true,
	RoleOdontologo: true,
	RoleSecretaria: true,
	RoleAsistente:  true,
}

// ValidRole reports whether role is one of the clinic roles.
func ValidRole(role string) bool {
	return knownRoles[role]
}

// HasRole reports whether roles grants required. Admin grants everything.
func HasRole(roles []string, required ...string) bool {
	for _, has := range roles {
		if has == RoleAdmin {
			return true
		}
		for _, r := range required {
			if has == r {
				return true
			}
		}
	}
	return false
}

// RequireRole returns middleware that checks if the user has at least one of the specified roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasRole(RolesFromContext(c.Request().Context()), roles...) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
