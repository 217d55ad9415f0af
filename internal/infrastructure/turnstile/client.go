// Package turnstile verifies Cloudflare Turnstile challenge tokens.
package turnstile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultVerifyURL is Cloudflare's siteverify endpoint.
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

const defaultTimeout = 10 * time.Second

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

// Verifier calls the siteverify endpoint. Any transport or decoding failure
// counts as a failed verification.
type Verifier struct {
	secret    string
	verifyURL string
	http      *http.Client
	log       zerolog.Logger
}

func NewVerifier(secret, verifyURL string, log zerolog.Logger) *Verifier {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &Verifier{
		secret:    secret,
		verifyURL: verifyURL,
		http:      &http.Client{Timeout: defaultTimeout},
		log:       log,
	}
}

// Verify reports whether the provider accepted token for remoteIP.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) bool {
	res, err := v.siteVerify(ctx, token, remoteIP)
	if err != nil {
		v.log.Error().Err(err).Msg("turnstile verification failed")
		return false
	}
	if !res.Success {
		v.log.Info().Strs("error_codes", res.ErrorCodes).Str("remote_ip", remoteIP).Msg("turnstile token rejected")
	}
	return res.Success
}

func (v *Verifier) siteVerify(ctx context.Context, token, remoteIP string) (*verifyResponse, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("siteverify status %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode siteverify response: %w", err)
	}
	return &out, nil
}
