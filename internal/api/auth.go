package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gigspace/gigspace/internal/models"
)

// LoginResult carries the tokens and account returned by a successful
// login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

// Login authenticates with username and password. It does not store the
// returned tokens; the caller decides whether to persist the session.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("api: username and password required")
	}

	var wire struct {
		Access  string    `json:"access"`
		Refresh string    `json:"refresh"`
		User    *userWire `json:"user"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.doUnauthenticated(ctx, "/auth/login/", body, &wire); err != nil {
		return nil, err
	}
	if wire.Access == "" {
		return nil, fmt.Errorf("api: login response missing access token")
	}

	result := &LoginResult{
		AccessToken:  wire.Access,
		RefreshToken: wire.Refresh,
	}
	if wire.User != nil {
		result.User = wire.User.toUser()
	}
	return result, nil
}

// Me fetches the authenticated account.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var wire userWire
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me/", nil, &wire); err != nil {
		return nil, err
	}
	user := wire.toUser()
	return &user, nil
}

// doUnauthenticated posts without a bearer token and without refresh
// retry, for the login flow itself.
func (c *Client) doUnauthenticated(ctx context.Context, path string, requestBody, out any) error {
	body, err := c.doOnce(ctx, http.MethodPost, path, requestBody, false)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: decode %s response: %w", path, err)
	}
	return nil
}
