// Package apiclient is the shared credentialed client every portal screen
// uses for non-auth endpoints. The bearer token is attached by transport
// middleware reading the session store; screens never touch the credential
// themselves.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/flanux/bankportal/internal/errors"
)

// Client issues credentialed requests against the banking backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption modifies the Client at construction.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithBaseTransport replaces the transport beneath the credential middleware
// (primarily for testing)
func WithBaseTransport(base http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport.(*bearerTransport).base = base
	}
}

// New creates a client whose every request consults binding for the bearer
// credential and reports authorization failures back through it.
func New(baseURL string, binding SessionBinding, options ...ClientOption) *Client {
	client := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: &bearerTransport{base: http.DefaultTransport, binding: binding},
		},
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// Get fetches path and decodes the JSON response into out. A 401 surfaces as
// errors.ErrUnauthorized after the transport has already torn the session
// down; callers redirect to login rather than retry.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "[Client.Get] http.NewRequestWithContext")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(apperrors.ErrNetworkFailure, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.Wrapf(apperrors.ErrUnauthorized, "GET %s", path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return errors.Wrapf(apperrors.ErrInternal, "GET %s: status %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(apperrors.ErrNetworkFailure, err.Error())
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(apperrors.ErrInternal, "GET %s: decode: %s", path, err.Error())
	}
	return nil
}

// Account matches the backend's account model.
type Account struct {
	ID            string  `json:"id"`
	AccountNumber string  `json:"accountNumber"`
	CustomerID    string  `json:"customerId"`
	CustomerName  string  `json:"customerName"`
	Type          string  `json:"type"` // SAVINGS, CHECKING, FIXED_DEPOSIT
	Balance       float64 `json:"balance"`
	Status        string  `json:"status"` // active, closed, frozen
}

// Customer matches the backend's customer model.
type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Accounts lists the accounts visible to the current principal.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.Get(ctx, "/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Customers lists the customers visible to the current principal.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	var customers []Customer
	if err := c.Get(ctx, "/customers", &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// AccountByID fetches a single account.
func (c *Client) AccountByID(ctx context.Context, id string) (*Account, error) {
	var account Account
	if err := c.Get(ctx, fmt.Sprintf("/accounts/%s", id), &account); err != nil {
		return nil, err
	}
	return &account, nil
}
