package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medrecords/patient-portal/internal/api/middleware"
)

// sessionEmail returns the email injected by the Session middleware. An empty
// value means the route was mounted without the guard.
func sessionEmail(c echo.Context) (string, error) {
	email, _ := c.Get(middleware.SessionEmailKey).(string)
	if email == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return email, nil
}
