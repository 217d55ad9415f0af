package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/medrecords/patient-portal/internal/api/handler"
	"github.com/medrecords/patient-portal/internal/api/middleware"
	"github.com/medrecords/patient-portal/internal/core/domain"
	"github.com/medrecords/patient-portal/internal/core/service"
	"github.com/medrecords/patient-portal/internal/infrastructure/db/memory"
	"github.com/medrecords/patient-portal/internal/pkg/password"
)

const botToken = "human"

type fakeBot struct{}

func (fakeBot) Verify(_ context.Context, token, _ string) bool { return token == botToken }

type testServer struct {
	e        *echo.Echo
	users    *memory.UserRepository
	patients *memory.PatientRepository
	cookie   *http.Cookie
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	users := memory.NewUserRepository()
	patients := memory.NewPatientRepository()

	auth := service.NewAuthService(users, "test-secret", time.Hour, zerolog.Nop()).
		WithHashParams(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	reg := prometheus.NewRegistry()
	e := NewRouter(Dependencies{
		AuthService:     auth,
		PatientService:  service.NewPatientService(patients, zerolog.Nop()),
		BotVerifier:     fakeBot{},
		RateLimitMax:    rateLimit,
		RateLimitWindow: 15 * time.Minute,
		Readiness: map[string]handler.Pinger{
			"mongodb": handler.PingerFunc(func(context.Context) error { return nil }),
		},
		SessionTTL:  time.Hour,
		FrontendURL: "http://localhost:5173",
		APIURL:      "http://localhost:3001",
		Registerer:  reg,
		Gatherer:    reg,
		Log:         zerolog.Nop(),
	})
	return &testServer{e: e, users: users, patients: patients}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			if ck.MaxAge < 0 {
				s.cookie = nil
			} else {
				s.cookie = &http.Cookie{Name: ck.Name, Value: ck.Value}
			}
		}
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func credentials(email, pwd string, withToken bool) string {
	body := map[string]string{"email": email, "password": pwd}
	if withToken {
		body["cf-turnstile-response"] = botToken
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func TestRouter_RegisterLoginUpdateFlow(t *testing.T) {
	s := newTestServer(t, 100)

	rec, resp := s.do(t, http.MethodPost, "/api/register", credentials("john@example.com", "pw-123", true))
	if rec.Code != http.StatusCreated || resp["message"] != "User registered" {
		t.Fatalf("register: %d %v", rec.Code, resp)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/register", credentials("john@example.com", "other", true))
	if rec.Code != http.StatusBadRequest || !strings.Contains(resp["error"].(string), domain.DuplicateKeyMarker) {
		t.Fatalf("duplicate register: %d %v", rec.Code, resp)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/login", credentials("john@example.com", "wrong", true))
	if rec.Code != http.StatusUnauthorized || resp["message"] != "Invalid credentials" {
		t.Fatalf("wrong password: %d %v", rec.Code, resp)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/login", credentials("ghost@example.com", "pw", true))
	if rec.Code != http.StatusNotFound || resp["message"] != "User not found" {
		t.Fatalf("unknown user: %d %v", rec.Code, resp)
	}

	rec, _ = s.do(t, http.MethodPost, "/api/login", credentials("john@example.com", "pw-123", true))
	if rec.Code != http.StatusCreated || s.cookie == nil {
		t.Fatalf("login: %d cookie=%v", rec.Code, s.cookie)
	}

	rec, resp = s.do(t, http.MethodGet, "/api/verify", "")
	if rec.Code != http.StatusOK || resp["email"] != "john@example.com" {
		t.Fatalf("verify: %d %v", rec.Code, resp)
	}

	rec, _ = s.do(t, http.MethodPost, "/api/dashboard", `{"userEmail":"john@example.com"}`)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "null" {
		t.Fatalf("empty dashboard: %d %s", rec.Code, rec.Body.String())
	}

	update := `{"newData":{"id":"john@example.com","active":true,"name":["John Doe"],"telecom":["555-0100","john@example.com"],"gender":"male"}}`
	rec, resp = s.do(t, http.MethodPatch, "/api/update", update)
	if rec.Code != http.StatusOK || resp["message"] != "Your changes have been saved successfully." {
		t.Fatalf("update: %d %v", rec.Code, resp)
	}

	// Same document again is idempotent.
	if rec, _ = s.do(t, http.MethodPatch, "/api/update", update); rec.Code != http.StatusOK {
		t.Fatalf("repeat update: %d", rec.Code)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/dashboard", "")
	if rec.Code != http.StatusOK || resp["id"] != "john@example.com" || resp["gender"] != "male" {
		t.Fatalf("dashboard after update: %d %v", rec.Code, resp)
	}

	// The record key comes from newData.id, not from the session.
	rec, resp = s.do(t, http.MethodPatch, "/api/update", `{"newData":{"id":"jane@example.com","active":true,"name":["Jane"]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update by payload id: %d %v", rec.Code, resp)
	}
	jane, err := s.patients.FindByID(context.Background(), "jane@example.com")
	if err != nil || jane.Name[0] != "Jane" {
		t.Fatalf("expected record stored under jane@example.com, got %+v %v", jane, err)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/logout", "")
	if rec.Code != http.StatusOK || resp["message"] != "Logged out successfully" || s.cookie != nil {
		t.Fatalf("logout: %d %v", rec.Code, resp)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/dashboard", "")
	if rec.Code != http.StatusUnauthorized || resp["message"] != "No token received." {
		t.Fatalf("dashboard after logout: %d %v", rec.Code, resp)
	}
}

func TestRouter_BotGate(t *testing.T) {
	s := newTestServer(t, 100)

	for _, path := range []string{"/api/register", "/api/login"} {
		rec, resp := s.do(t, http.MethodPost, path, credentials("a@b.co", "pw", false))
		if rec.Code != http.StatusBadRequest || resp["error"] != "Missing Turnstile token" {
			t.Fatalf("%s without token: %d %v", path, rec.Code, resp)
		}

		body := `{"email":"a@b.co","password":"pw","cf-turnstile-response":"robot"}`
		rec, resp = s.do(t, http.MethodPost, path, body)
		if rec.Code != http.StatusForbidden || resp["error"] != "Failed Turnstile verification" {
			t.Fatalf("%s with bad token: %d %v", path, rec.Code, resp)
		}
	}
}

func TestRouter_SessionGuard(t *testing.T) {
	s := newTestServer(t, 100)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/verify"},
		{http.MethodPost, "/api/dashboard"},
		{http.MethodPatch, "/api/update"},
	} {
		s.cookie = nil
		if rec, _ := s.do(t, tc.method, tc.path, ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without cookie: expected 401, got %d", tc.path, rec.Code)
		}

		s.cookie = &http.Cookie{Name: middleware.SessionCookie, Value: "tampered.token.value"}
		if rec, _ := s.do(t, tc.method, tc.path, ""); rec.Code != http.StatusForbidden {
			t.Fatalf("%s with bad cookie: expected 403, got %d", tc.path, rec.Code)
		}
	}
}

func TestRouter_UpdateValidationAndStoreFailure(t *testing.T) {
	s := newTestServer(t, 100)
	s.do(t, http.MethodPost, "/api/register", credentials("john@example.com", "pw-123", true))
	s.do(t, http.MethodPost, "/api/login", credentials("john@example.com", "pw-123", true))

	rec, resp := s.do(t, http.MethodPatch, "/api/update", "")
	if rec.Code != http.StatusBadRequest || resp["message"] != "Invalid request: Updated Patient data is empty" {
		t.Fatalf("empty: %d %v", rec.Code, resp)
	}

	for _, body := range []string{
		`{"newData":{"name":"Test"}}`,
		`{"newData":{"id":"john@example.com","active":false,"name":["John"]}}`,
		`{"newData":{"id":"","active":true,"name":["John"]}}`,
	} {
		rec, resp = s.do(t, http.MethodPatch, "/api/update", body)
		if rec.Code != http.StatusBadRequest || resp["message"] != "Invalid request: Patient data missing required fields" {
			t.Fatalf("partial %s: %d %v", body, rec.Code, resp)
		}
	}

	rec, resp = s.do(t, http.MethodPatch, "/api/update", `{"newData":{"id":"john@example.com","active":true,"name":"John"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("string name: %d %v", rec.Code, resp)
	}
	if p, _ := s.patients.FindByID(context.Background(), "john@example.com"); p == nil || len(p.Name) != 1 || p.Name[0] != "John" {
		t.Fatalf("string name not stored as one part: %+v", p)
	}

	s.patients.Err = errors.New("replica set unavailable")
	rec, resp = s.do(t, http.MethodPatch, "/api/update", `{"newData":{"id":"john@example.com","active":true,"name":["John"]}}`)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(resp["message"].(string), "Database error, unable to save updated data") {
		t.Fatalf("store failure: %d %v", rec.Code, resp)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/dashboard", "")
	if rec.Code != http.StatusInternalServerError || resp["message"] != "Database error, unable to retrieve data" {
		t.Fatalf("read failure: %d %v", rec.Code, resp)
	}
}

func TestRouter_LoginStoreFailure(t *testing.T) {
	s := newTestServer(t, 100)
	s.users.Err = errors.New("no reachable servers")

	rec, resp := s.do(t, http.MethodPost, "/api/login", credentials("john@example.com", "pw", true))
	if rec.Code != http.StatusInternalServerError || resp["message"] != "Server error during login: no reachable servers" {
		t.Fatalf("login store failure: %d %v", rec.Code, resp)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	s := newTestServer(t, 3)

	for i := 0; i < 3; i++ {
		if rec, _ := s.do(t, http.MethodPost, "/api/logout", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	rec, resp := s.do(t, http.MethodPost, "/api/logout", "")
	if rec.Code != http.StatusTooManyRequests || resp["message"] != middleware.RateLimitMessage {
		t.Fatalf("expected 429, got %d %v", rec.Code, resp)
	}
}

func TestRouter_SecurityHeadersAndCORS(t *testing.T) {
	s := newTestServer(t, 100)

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowCredentials) != "true" {
		t.Fatalf("credentials must be allowed")
	}

	rec, _ = s.do(t, http.MethodPost, "/api/logout", "")
	csp := rec.Header().Get(echo.HeaderContentSecurityPolicy)
	if !strings.Contains(csp, "connect-src 'self' https://challenges.cloudflare.com http://localhost:3001") {
		t.Fatalf("unexpected CSP %q", csp)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t, 100)

	for _, path := range []string{"/health", "/health/ready", "/metrics", "/api/swagger.json"} {
		rec, _ := s.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}

	rec, _ := s.do(t, http.MethodGet, "/api/swagger.json", "")
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("swagger.json is not json: %v", err)
	}
	if paths, _ := doc["paths"].(map[string]any); paths["/api/update"] == nil {
		t.Fatalf("swagger doc missing /api/update")
	}

	rec, resp := s.do(t, http.MethodGet, "/api/nope", "")
	if rec.Code != http.StatusNotFound || resp["error"] == nil {
		t.Fatalf("unknown route: %d %v", rec.Code, resp)
	}
}

func TestContentSecurityPolicy(t *testing.T) {
	csp := ContentSecurityPolicy("")
	if strings.Contains(csp, "cloudflare.com ;") {
		t.Fatalf("empty api url left a dangling space: %q", csp)
	}
	if !strings.HasPrefix(csp, "default-src 'self'; ") || !strings.HasSuffix(csp, "upgrade-insecure-requests") {
		t.Fatalf("unexpected policy %q", csp)
	}
}
