package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civichub/society-api/internal/core/domain"
	"github.com/civichub/society-api/internal/core/ports"
	"github.com/civichub/society-api/internal/metrics"
)

// IdentityKey is the echo.Context key under which Auth stores the caller.
const IdentityKey = "identity"

// Auth authenticates the Authorization header and injects the caller's
// domain.Identity into the context. Every failure answers with the same 401
// body; the reason is only recorded in metrics.
func Auth(guard ports.AccessGuard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := guard.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues(failureReason(err)).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// RequireRole rejects callers whose role is not exactly role. It must run after Auth.
func RequireRole(guard ports.AccessGuard, role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				metrics.AuthFailuresTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}
			if err := guard.RequireRole(identity, role); err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(IdentityKey).(domain.Identity)
	return identity, ok
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	default:
		return "missing"
	}
}
