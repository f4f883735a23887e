// Package api implements the HTTP client for the gigspace marketplace
// REST API. It owns the wire format: dynamic server payloads are decoded
// and defaulted here, and only the typed models cross into the rest of
// the client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigspace/gigspace/internal/logging"
)

// TokenSource supplies and stores auth tokens. The session store
// implements it; tests may substitute a static source.
type TokenSource interface {
	// Tokens returns the current access and refresh tokens.
	Tokens() (access, refresh string, err error)

	// ReplaceTokens stores new tokens after a refresh. An empty refresh
	// token keeps the previous one.
	ReplaceTokens(access, refresh string) error
}

// StaticTokenSource is a TokenSource with fixed tokens and no storage.
type StaticTokenSource struct {
	Access  string
	Refresh string
}

func (s *StaticTokenSource) Tokens() (string, string, error) { return s.Access, s.Refresh, nil }
func (s *StaticTokenSource) ReplaceTokens(access, refresh string) error {
	s.Access = access
	if refresh != "" {
		s.Refresh = refresh
	}
	return nil
}

// Error is a non-2xx response from the marketplace API.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
}

// IsAuthError reports whether err is a 401 from the API.
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the base URL of the marketplace API
	// (e.g., "http://localhost:8000/api").
	BaseURL string

	// Tokens supplies auth tokens. Nil means unauthenticated.
	Tokens TokenSource

	// Timeout is the per-request timeout. Zero means 15 seconds.
	Timeout time.Duration

	// HTTPClient overrides the transport. If nil, one is built from
	// Timeout.
	HTTPClient *http.Client
}

// Client talks to the marketplace server. All methods are safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     zerolog.Logger
}

// NewClient creates a marketplace API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		logger:     logging.Component("api"),
	}, nil
}

// doJSON performs a JSON request against the API and decodes the
// response body into out (which may be nil for ack-only endpoints).
// A 401 triggers one token refresh and retry when a refresh token is
// available.
func (c *Client) doJSON(ctx context.Context, method, path string, requestBody, out any) error {
	body, err := c.doOnce(ctx, method, path, requestBody, true)
	if IsAuthError(err) && c.refresh(ctx) {
		body, err = c.doOnce(ctx, method, path, requestBody, true)
	}
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
	}
	return nil
}

// doOnce performs a single request attempt.
func (c *Client) doOnce(ctx context.Context, method, path string, requestBody any, auth bool) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("api: encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if auth {
		if err := c.authorize(request); err != nil {
			return nil, err
		}
	}

	return c.send(request, method, path)
}

// send executes a prepared request and maps non-2xx responses to *Error.
func (c *Client) send(request *http.Request, method, path string) ([]byte, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("api: read %s %s response: %w", method, path, err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return nil, decodeError(response.StatusCode, responseBody)
}

// maxResponseBytes caps response bodies. The largest legitimate payload
// is a full message log snapshot; 8 MiB leaves generous headroom.
const maxResponseBytes = 8 << 20

// decodeError maps an error response body to *Error. The server uses
// {"detail": ...} or {"error": ...}; anything else degrades to the raw
// body.
func decodeError(status int, body []byte) *Error {
	var payload struct {
		Detail string `json:"detail"`
		Err    string `json:"error"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		detail = payload.Detail
		if detail == "" {
			detail = payload.Err
		}
	}
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	return &Error{StatusCode: status, Detail: detail}
}

// authorize attaches the bearer token when a token source is configured.
func (c *Client) authorize(request *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	access, _, err := c.tokens.Tokens()
	if err != nil {
		return fmt.Errorf("api: load tokens: %w", err)
	}
	if access != "" {
		request.Header.Set("Authorization", "Bearer "+access)
	}
	return nil
}

// refresh exchanges the refresh token for a new access token, storing
// the result. Returns true when the caller should retry the original
// request.
func (c *Client) refresh(ctx context.Context) bool {
	if c.tokens == nil {
		return false
	}
	_, refreshToken, err := c.tokens.Tokens()
	if err != nil || refreshToken == "" {
		return false
	}

	body, err := c.doOnce(ctx, http.MethodPost, "/auth/token/refresh/", map[string]string{
		"refresh": refreshToken,
	}, false)
	if err != nil {
		c.logger.Debug().Err(err).Msg("token refresh failed")
		return false
	}

	var payload struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Access == "" {
		return false
	}
	if err := c.tokens.ReplaceTokens(payload.Access, payload.Refresh); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store refreshed tokens")
		return false
	}
	return true
}
