// Package authapi is the wire client for the backend's authentication
// endpoints. It implements session.Backend: login returns the raw response
// body untouched so all shape-guessing stays in the session normalizer, and
// logout is best-effort.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/flanux/bankportal/internal/errors"
	"github.com/flanux/bankportal/session"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
)

var _ session.Backend = (*Client)(nil)

// Client talks to the auth endpoints with a plain HTTP client. No credential
// middleware is involved: login itself is intentionally unauthenticated.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption modifies the Client at construction.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing)
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates an auth API client for the given backend base URL.
func New(baseURL string, options ...ClientOption) *Client {
	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// Login posts the credentials and returns the raw success body for
// normalization. A non-2xx response maps to errors.ErrInvalidCredentials; a
// transport fault maps to errors.ErrNetworkFailure.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (json.RawMessage, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login] json.Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login] http.NewRequestWithContext")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrNetworkFailure, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(apperrors.ErrInvalidCredentials, "status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrNetworkFailure, err.Error())
	}
	return raw, nil
}

// Logout notifies the backend that the session is over. The response is
// ignored for correctness purposes; only a transport fault is reported so
// the caller can log it.
func (c *Client) Logout(ctx context.Context, token session.Token) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+logoutPath, nil)
	if err != nil {
		return errors.Wrap(err, "[Client.Logout] http.NewRequestWithContext")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+string(token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(apperrors.ErrNetworkFailure, err.Error())
	}
	resp.Body.Close()
	return nil
}
