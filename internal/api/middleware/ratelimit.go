package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/medrecords/patient-portal/internal/api/metrics"
)

// RateLimitMessage is returned with every 429.
const RateLimitMessage = "Too many requests from this IP, please try again after 15 minutes"

// NewMemoryRateLimitStore keeps per-IP buckets in process. It admits max
// requests in a burst and refills at max per window.
func NewMemoryRateLimitStore(max int, window time.Duration) echomiddleware.RateLimiterStore {
	return echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(max) / window.Seconds()),
		Burst:     max,
		ExpiresIn: window,
	})
}

// RateLimit caps requests per client IP across every endpoint. Probes and the
// metrics scrape are exempt.
func RateLimit(store echomiddleware.RateLimiterStore) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/metrics" || strings.HasPrefix(p, "/health")
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.RateLimitedTotal.Inc()
			return c.JSON(http.StatusTooManyRequests, map[string]string{"message": RateLimitMessage})
		},
	})
}
