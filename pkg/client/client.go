package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// DefaultBaseURL is the default base URL for the Taskraum API.
const DefaultBaseURL = "http://localhost:8080"

// DefaultLoginView is the view the client navigates to when a session
// cannot be recovered.
const DefaultLoginView = "/login"

// DefaultRefreshTimeout bounds a single session refresh call.
const DefaultRefreshTimeout = 15 * time.Second

// RequestIDHeader carries a per-attempt correlation ID.
const RequestIDHeader = "X-Request-ID"

// AuthPaths are the backend's authentication endpoints. Login, Register and
// Refresh are never refreshed themselves.
type AuthPaths struct {
	Login    string
	Register string
	Refresh  string
	Logout   string
	Me       string
}

// DefaultAuthPaths returns the Taskraum backend's auth endpoints.
func DefaultAuthPaths() AuthPaths {
	return AuthPaths{
		Login:    "/auth/login",
		Register: "/auth/register",
		Refresh:  "/auth/refresh",
		Logout:   "/auth/logout",
		Me:       "/auth/me",
	}
}

// Client is a Taskraum API client with cookie sessions and transparent
// session refresh. A Client is safe for concurrent use; construct one per
// application and share it.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	navigator      Navigator
	loginView      string
	paths          AuthPaths
	refreshTimeout time.Duration

	refresh    refreshState
	loggingOut atomic.Bool
	redirected atomic.Bool
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client. It must carry a cookie jar for
// sessions to work; see NewCookieJar.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithNavigator sets where unrecoverable auth failures navigate.
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithLoginView sets the path of the login view.
func WithLoginView(path string) Option {
	return func(c *Client) {
		c.loginView = path
	}
}

// WithAuthPaths overrides the backend's auth endpoint paths.
func WithAuthPaths(p AuthPaths) Option {
	return func(c *Client) {
		c.paths = p
	}
}

// WithRefreshTimeout bounds each session refresh call.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.refreshTimeout = d
	}
}

// NewCookieJar returns a cookie jar backed by the public suffix list.
func NewCookieJar() http.CookieJar {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New never fails with a non-nil options value.
		panic(err)
	}
	return jar
}

// New creates a new Taskraum API client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		httpClient:     &http.Client{Jar: NewCookieJar(), Timeout: 30 * time.Second},
		navigator:      &memoryNavigator{},
		loginView:      DefaultLoginView,
		paths:          DefaultAuthPaths(),
		refreshTimeout: DefaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Paths returns the configured auth endpoint paths.
func (c *Client) Paths() AuthPaths {
	return c.paths
}

// SetLoggingOut marks the session as being torn down. While set, a 401 goes
// straight to the login view without attempting a refresh, even for requests
// with SkipAuthRedirect. It must be set before the logout call is issued.
// A later successful Login clears it.
func (c *Client) SetLoggingOut(flag bool) {
	c.loggingOut.Store(flag)
}

// LoggingOut reports whether SetLoggingOut(true) is in effect.
func (c *Client) LoggingOut() bool {
	return c.loggingOut.Load()
}

// beginSession starts a new session lifetime after a successful login,
// clearing the logout flag and re-arming the login redirect.
func (c *Client) beginSession() {
	c.loggingOut.Store(false)
	c.redirected.Store(false)
}

// Send issues req with session cookies attached. A 401 is handled by the
// refresh protocol; any other error status is returned as *APIError.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("request is required")
	}
	return c.submit(ctx, originalRequest{req: req})
}

func (c *Client) submit(ctx context.Context, s submission) (*Response, error) {
	resp, err := c.roundTrip(ctx, s.request(), isRetried(s))
	if err == nil {
		return resp, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		return nil, err
	}
	return c.intercept(ctx, s, err)
}

// intercept handles a 401 for s. cause is the original error and is what
// callers see for every unrecoverable outcome.
func (c *Client) intercept(ctx context.Context, s submission, cause error) (*Response, error) {
	req := s.request()

	switch {
	case c.LoggingOut():
		c.redirectToLogin("logging out")
		return nil, cause

	case req.SkipAuthRedirect:
		return nil, cause

	case c.isAuthEndpoint(req.Path):
		c.redirectToLogin("auth endpoint rejected")
		return nil, cause

	case isRetried(s):
		c.redirectToLogin("replay rejected after refresh")
		return nil, cause
	}

	wait, lead := c.refresh.join()
	if !lead {
		slog.Debug("waiting for session refresh",
			slog.String("method", req.Method),
			slog.String("path", req.Path),
		)
		select {
		case err := <-wait:
			if err != nil {
				return nil, err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return c.submit(ctx, retriedRequest{req: req})
	}

	err := c.refreshSession(ctx)
	released := c.refresh.settle(err)
	slog.Debug("released queued requests",
		slog.Int("waiters", released),
		slog.Bool("refreshed", err == nil),
	)
	if err != nil {
		c.redirectToLogin("session refresh failed")
		return nil, err
	}
	return c.submit(ctx, retriedRequest{req: req})
}

func (c *Client) isAuthEndpoint(path string) bool {
	for _, p := range []string{c.paths.Login, c.paths.Register, c.paths.Refresh} {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// roundTrip performs a single HTTP exchange without any 401 handling.
func (c *Client) roundTrip(ctx context.Context, r *Request, retried bool) (*Response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("HTTP request failed",
			slog.String("method", r.Method),
			slog.String("path", r.Path),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	slog.Debug("HTTP request completed",
		slog.String("method", r.Method),
		slog.String("path", r.Path),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Bool("retried", retried),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if !r.accepts(resp.StatusCode) {
		return nil, parseError(r, resp.StatusCode, data)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// parseError extracts an APIError from an error response. Spring error
// bodies carry "message"; other handlers use "error".
func parseError(r *Request, status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Method: r.Method, Path: r.Path}

	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil {
		switch {
		case errResp.Message != "":
			apiErr.Message = errResp.Message
		case errResp.Error != "":
			apiErr.Message = errResp.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
