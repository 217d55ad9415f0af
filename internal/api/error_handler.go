package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

// errorResponse is the envelope for errors that escape a handler.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
//
// Handlers answer their own expected failures; this only sees router errors
// (unknown route, wrong method), recovered panics and anything unplanned.
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
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("server error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		return http.StatusBadRequest, conflict.Error()
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, "No token received."
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusForbidden, "Invalid token."
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrPatientNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyPatientData),
		errors.Is(err, domain.ErrMissingRequiredFields):
		return http.StatusBadRequest, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
