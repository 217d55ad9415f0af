// Package client talks to the patient portal API the way the browser app
// does: a cookie jar carries the session and an in-memory flag tracks whether
// the user is logged in.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client

	mu            sync.RWMutex
	authenticated bool
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. A cookie jar is attached
// when hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Authenticated reports the last known session state.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

func (c *Client) setAuthenticated(v bool) {
	c.mu.Lock()
	c.authenticated = v
	c.mu.Unlock()
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	BotToken string `json:"cf-turnstile-response"`
}

type apiMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Email   string `json:"email"`
}

// Register creates an account and returns the server's confirmation.
func (c *Client) Register(ctx context.Context, email, password, botToken string) (string, error) {
	if botToken == "" {
		return "", ErrBotTokenRequired
	}
	var out apiMessage
	if err := c.do(ctx, http.MethodPost, "/api/register", credentials{email, password, botToken}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login opens a session. The cookie lands in the jar.
func (c *Client) Login(ctx context.Context, email, password, botToken string) error {
	if botToken == "" {
		return ErrBotTokenRequired
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", credentials{email, password, botToken}, nil); err != nil {
		return err
	}
	c.setAuthenticated(true)
	return nil
}

// Logout clears the session. The local flag is dropped even if the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.setAuthenticated(false)
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// CheckSession asks the server whether the cookie is still valid and syncs
// the local flag with the answer.
func (c *Client) CheckSession(ctx context.Context) (string, error) {
	var out apiMessage
	if err := c.do(ctx, http.MethodGet, "/api/verify", nil, &out); err != nil {
		c.setAuthenticated(false)
		return "", err
	}
	c.setAuthenticated(true)
	return out.Email, nil
}

// Dashboard fetches the caller's record. A nil record means none exists yet.
func (c *Client) Dashboard(ctx context.Context) (*domain.Patient, error) {
	var p *domain.Patient
	if err := c.do(ctx, http.MethodPost, "/api/dashboard", nil, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the caller's record and returns the confirmation message.
func (c *Client) Update(ctx context.Context, p *domain.Patient) (string, error) {
	var out apiMessage
	body := struct {
		NewData *domain.Patient `json:"newData"`
	}{NewData: p}
	if err := c.do(ctx, http.MethodPatch, "/api/update", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg apiMessage
		_ = json.Unmarshal(raw, &msg)
		text := msg.Message
		if text == "" {
			text = msg.Error
		}
		if text == "" {
			text = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: text}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}
