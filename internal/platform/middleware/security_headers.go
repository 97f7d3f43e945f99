package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

type SecurityHeadersConfig struct {
	// HSTS adds Strict-Transport-Security. Only enable behind TLS.
	HSTS bool
	// NoStorePrefix marks responses under this path as uncacheable.
	// Empty means every response.
	NoStorePrefix string
}

// SecurityHeaders sets the response headers every JSON API answer carries.
func SecurityHeaders(cfg SecurityHeadersConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			if cfg.HSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			// Patient and payment data must not sit in browser caches.
			if strings.HasPrefix(c.Request().URL.Path, cfg.NoStorePrefix) {
				h.Set("Cache-Control", "no-store")
			}

			return next(c)
		}
	}
}
