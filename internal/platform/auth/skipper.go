package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths are route patterns reachable without a bearer token.
var publicPaths = map[string]bool{
	"/health":                          true,
	"/health/db":                       true,
	"/api/auth/token":                  true,
	"/api/auth/token/refresh":          true,
	"/api/auth/password-reset":         true,
	"/api/auth/password-reset/confirm": true,
}

// AuthSkipper returns true for requests whose matched route is public.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

func IsPublicPath(path string) bool {
	return publicPaths[path]
}
