package handler

import (
	"net/http"
	"time"

	"github.com/medrecords/patient-portal/internal/api/middleware"
)

// newSessionCookie wraps a session token. The cookie is cross-site capable
// because the frontend is served from a different origin.
func newSessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:        middleware.SessionCookie,
		Value:       token,
		Path:        "/",
		MaxAge:      int(ttl.Seconds()),
		HttpOnly:    true,
		Secure:      true,
		SameSite:    http.SameSiteNoneMode,
		Partitioned: true,
	}
}

func clearedSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:        middleware.SessionCookie,
		Value:       "",
		Path:        "/",
		MaxAge:      -1,
		Expires:     time.Unix(0, 0),
		HttpOnly:    true,
		Secure:      true,
		SameSite:    http.SameSiteNoneMode,
		Partitioned: true,
	}
}
