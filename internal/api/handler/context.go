package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civichub/society-api/internal/api/middleware"
	"github.com/civichub/society-api/internal/core/domain"
)

// callerIdentity extracts the identity injected by the Auth middleware.
// A missing identity means the route was wired without Auth; treat the
// request as unauthenticated rather than trusting it.
func callerIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || identity.SubjectID == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	return identity, nil
}
