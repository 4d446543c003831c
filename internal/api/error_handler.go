package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civichub/society-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain errors
// to status codes and renders {"error": "<message>"}. Authentication and
// authorization failures always carry the same body so the reason is not
// disclosed. Unexpected errors are logged and reported as 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusUnauthorized:
			return he.Code, "unauthenticated"
		case http.StatusForbidden:
			return he.Code, "forbidden"
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, reason(err, domain.ErrValidation)
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, reason(err, domain.ErrInvalidTransition)
	case errors.Is(err, domain.ErrComplaintNotFound):
		return http.StatusNotFound, domain.ErrComplaintNotFound.Error()
	case errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound, domain.ErrNotificationNotFound.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrUserNotFound.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	}

	// Storage and unexpected errors: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	if errors.Is(err, domain.ErrStorage) {
		return http.StatusInternalServerError, domain.ErrStorage.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// reason trims operation prefixes added while the error travelled up, so the
// client sees "validation failed: issue is required" rather than the call path.
func reason(err, kind error) string {
	msg := err.Error()
	if i := strings.Index(msg, kind.Error()); i > 0 {
		return msg[i:]
	}
	return msg
}
