package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memwallet/memwallet/server/auth"
)

// tokenPersonaContextKey carries the authenticated token subject through
// the echo context so handlers can log who acted.
const tokenPersonaContextKey = "token-persona"

// authMiddleware verifies the bearer token on mutating routes. An empty
// secret disables authentication entirely, which the server only
// tolerates on a loopback bind.
func (s *APIV1Service) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.Secret == "" {
			return next(c)
		}
		claims, err := auth.Authenticate(c.Request().Header.Get("Authorization"), []byte(s.Secret))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		}
		c.Set(tokenPersonaContextKey, claims.Subject)
		return next(c)
	}
}

// rateLimitMiddleware throttles LLM-backed routes per client address so
// one caller cannot exhaust the provider quota for everyone.
func (s *APIV1Service) rateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.rateLimiter.Allow(c.RealIP()) {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded, retry later"})
		}
		return next(c)
	}
}
