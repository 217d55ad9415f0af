package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medrecords/patient-portal/internal/api/metrics"
	"github.com/medrecords/patient-portal/internal/core/domain"
	"github.com/medrecords/patient-portal/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	bot         ports.BotVerifier
	sessionTTL  time.Duration
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, bot ports.BotVerifier, sessionTTL time.Duration, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		bot:         bot,
		sessionTTL:  sessionTTL,
		log:         log,
	}
}

// passBotGate writes the rejection itself and reports whether the caller may
// continue.
func (h *AuthHandler) passBotGate(c echo.Context, token string) (bool, error) {
	if token == "" {
		metrics.BotVerificationsTotal.WithLabelValues("missing").Inc()
		return false, c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing Turnstile token"})
	}
	if !h.bot.Verify(c.Request().Context(), token, c.RealIP()) {
		metrics.BotVerificationsTotal.WithLabelValues("failed").Inc()
		return false, c.JSON(http.StatusForbidden, errorResponse{Error: "Failed Turnstile verification"})
	}
	metrics.BotVerificationsTotal.WithLabelValues("passed").Inc()
	return true, nil
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Credentials and Turnstile token"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	if ok, err := h.passBotGate(c, req.BotToken); !ok {
		return err
	}

	_, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		var conflict *domain.ConflictError
		switch {
		case errors.As(err, &conflict):
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: conflict.Error()})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Email and password are required"})
		case errors.Is(err, domain.ErrInvalidEmail):
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Msg("register failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Server error during registration"})
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered"})
}

// Login authenticates a user and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and Turnstile token"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	if ok, err := h.passBotGate(c, req.BotToken); !ok {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
			return c.JSON(http.StatusNotFound, messageResponse{Message: "User not found"})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Invalid credentials"})
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Msg("login failed")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Server error during login: " + err.Error()})
	}

	c.SetCookie(newSessionCookie(token, h.sessionTTL))
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.log.Info().Str("email", user.Email).Msg("user logged in")
	return c.JSON(http.StatusCreated, messageResponse{Message: "Login successful"})
}

// Logout clears the session cookie. It never fails.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(clearedSessionCookie())
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Verify reports the identity behind the session cookie.
//
// @Summary      Check session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  verifyResponse
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Router       /api/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	email, err := sessionEmail(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, verifyResponse{Message: "Token is valid", Email: email})
}
