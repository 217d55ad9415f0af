package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medrecords/patient-portal/internal/api/metrics"
	"github.com/medrecords/patient-portal/internal/core/domain"
	"github.com/medrecords/patient-portal/internal/core/ports"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "token"
	// SessionEmailKey is the context key holding the authenticated email.
	SessionEmailKey = "email"
)

// SessionVerifier is the slice of ports.AuthService the guard needs.
type SessionVerifier interface {
	VerifySession(token string) (*ports.SessionClaims, error)
}

// Session reads the session cookie, verifies it and injects the email into
// the context. A missing cookie is 401, anything unverifiable is 403.
func Session(v SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var token string
			if ck, err := c.Cookie(SessionCookie); err == nil {
				token = ck.Value
			}

			claims, err := v.VerifySession(token)
			if err != nil {
				if errors.Is(err, domain.ErrMissingToken) {
					metrics.SessionRejectionsTotal.WithLabelValues("missing").Inc()
					return c.JSON(http.StatusUnauthorized, map[string]string{"message": "No token received."})
				}
				metrics.SessionRejectionsTotal.WithLabelValues("invalid").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"message": "Invalid token."})
			}

			c.Set(SessionEmailKey, claims.Email)
			return next(c)
		}
	}
}
