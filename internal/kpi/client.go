package kpi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
)

const (
	checkLoginPath = "/api/check-login"
	kpiDataPath    = "/api/kpi-data"
	logoutPath     = "/api/logout"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// LoginChecker asks the server whether the session is authenticated.
type LoginChecker interface {
	CheckLogin(ctx context.Context) (LoginStatus, error)
}

// MetricsFetcher retrieves the current KPI payload.
type MetricsFetcher interface {
	FetchMetrics(ctx context.Context) (*MetricsPayload, error)
}

// DataClient is everything a session needs from the server.
type DataClient interface {
	LoginChecker
	MetricsFetcher
	Logout(ctx context.Context) error
}

// Client is the HTTP implementation of DataClient.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	now     func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: 30 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckLogin calls GET /api/check-login. The body is decoded regardless of
// status code since the server answers 401 with a valid login payload.
func (c *Client) CheckLogin(ctx context.Context) (LoginStatus, error) {
	status, body, err := c.get(ctx, checkLoginPath)
	if err != nil {
		return LoginStatus{State: LoggedOut}, err
	}

	var w wireLogin
	if err := json.Unmarshal(body, &w); err != nil {
		return LoginStatus{State: LoggedOut}, errors.WrapWithCode(err, errors.ErrNetwork,
			"Login check returned an unreadable response",
			fmt.Sprintf("Expected JSON from %s (HTTP %d)", c.baseURL+checkLoginPath, status))
	}

	switch w.Status {
	case "logged_in":
		return LoginStatus{State: LoggedIn}, nil
	case "not_logged_in":
		return LoginStatus{State: LoggedOut, LoginURL: w.LoginURL}, nil
	default:
		return LoginStatus{State: LoggedOut}, errors.New(errors.ErrNetwork,
			fmt.Sprintf("Login check returned unknown status %q", w.Status),
			"The server should answer logged_in or not_logged_in")
	}
}

// FetchMetrics calls GET /api/kpi-data. A body carrying an "error" key
// yields an ErrApplication error with the server's message.
func (c *Client) FetchMetrics(ctx context.Context) (*MetricsPayload, error) {
	status, body, err := c.get(ctx, kpiDataPath)
	if err != nil {
		return nil, err
	}

	payload, appErr, err := decodePayload(body)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrNetwork,
			"KPI data response was not valid JSON",
			fmt.Sprintf("Check the server at %s (HTTP %d)", c.baseURL, status))
	}
	if appErr != "" {
		return nil, errors.New(errors.ErrApplication, appErr, "")
	}
	if status < 200 || status >= 300 {
		return nil, errors.New(errors.ErrNetwork,
			fmt.Sprintf("KPI data request failed with HTTP %d", status),
			fmt.Sprintf("Check the server at %s", c.baseURL))
	}

	payload.FetchedAt = c.now()
	return payload, nil
}

// Logout calls POST /api/logout.
func (c *Client) Logout(ctx context.Context) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+logoutPath, nil)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Invalid server URL", "Check server.base_url")
	}
	setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.networkError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New(errors.ErrNetwork,
			fmt.Sprintf("Logout failed with HTTP %d", resp.StatusCode), "")
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) (int, []byte, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, errors.WrapWithCode(err, errors.ErrConfig, "Invalid server URL", "Check server.base_url")
	}
	setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, c.networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, c.networkError(err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Client) networkError(err error) error {
	return errors.WrapWithCode(err, errors.ErrNetwork,
		"Couldn't reach the KPI server",
		fmt.Sprintf("Check that %s is running and reachable", c.baseURL))
}

func setHeaders(req *http.Request) {
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "application/json")
}
