package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/medrecords/patient-portal/docs"
	"github.com/medrecords/patient-portal/internal/api/handler"
	"github.com/medrecords/patient-portal/internal/api/middleware"
	"github.com/medrecords/patient-portal/internal/core/ports"
)

// Dependencies is everything NewRouter wires into the HTTP layer.
type Dependencies struct {
	AuthService    ports.AuthService
	PatientService ports.PatientService
	BotVerifier    ports.BotVerifier

	// RateLimitStore defaults to an in-memory store sized by RateLimitMax
	// and RateLimitWindow.
	RateLimitStore  echomiddleware.RateLimiterStore
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Readiness lists the dependencies probed by /health/ready.
	Readiness map[string]handler.Pinger

	SessionTTL  time.Duration
	FrontendURL string
	APIURL      string

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.RateLimitStore == nil {
		d.RateLimitStore = middleware.NewMemoryRateLimitStore(d.RateLimitMax, d.RateLimitWindow)
	}

	// --- Global middleware ---
	e.Use(middleware.Recovery(d.Log))
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "patient_portal",
		Registerer: d.Registerer,
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{d.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))
	e.Use(middleware.RateLimit(d.RateLimitStore))
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		// Swagger UI relies on inline scripts the policy would block.
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/docs")
		},
		XSSProtection:         "0",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: ContentSecurityPolicy(d.APIURL),
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService, d.BotVerifier, d.SessionTTL, d.Log)
	patientHandler := handler.NewPatientHandler(d.PatientService, d.Log)
	session := middleware.Session(d.AuthService)

	// --- Auth routes ---
	g := e.Group("/api")
	g.POST("/register", authHandler.Register)
	g.POST("/login", authHandler.Login)
	g.POST("/logout", authHandler.Logout)
	g.GET("/verify", authHandler.Verify, session)

	// --- Patient routes ---
	g.POST("/dashboard", patientHandler.Dashboard, session)
	g.PATCH("/update", patientHandler.Update, session)

	// --- API docs ---
	g.GET("/swagger.json", func(c echo.Context) error {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, []byte(docs.SwaggerInfo.ReadDoc()))
	})
	g.GET("/docs/*", echoSwagger.WrapHandler)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: d.Gatherer,
	}))

	return e
}

// ContentSecurityPolicy allows the Turnstile widget, Google Fonts and calls
// to apiURL on top of same-origin resources.
func ContentSecurityPolicy(apiURL string) string {
	directives := []string{
		"default-src 'self'",
		"script-src 'self' https://challenges.cloudflare.com",
		"style-src 'self' https://fonts.googleapis.com/",
		"img-src 'self' data:",
		"font-src 'self' https://fonts.gstatic.com",
		strings.TrimSpace("connect-src 'self' https://challenges.cloudflare.com " + apiURL),
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"block-all-mixed-content",
		"upgrade-insecure-requests",
	}
	return strings.Join(directives, "; ")
}
