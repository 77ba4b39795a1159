// Package authclient is the Go client for the MathEd Romania auth API.
// It keeps tokens in the cookie jar, transparently refreshes an expired
// access token, and tracks session state for route guards.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Navigator receives the redirect when a session can no longer be
// recovered. UI layers route to their login screen here.
type Navigator interface {
	RedirectToLogin(from string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(from string)

// RedirectToLogin implements Navigator.
func (f NavigatorFunc) RedirectToLogin(from string) { f(from) }

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Navigator  Navigator
}

// Client talks to the auth API. Safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	logger  *zap.Logger
	nav     Navigator
	session *SessionStore

	refreshGroup singleflight
}

// New builds a Client. The HTTP client gets a cookie jar when it has
// none, because the whole token transport rides on cookies.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:    base,
		http:    httpClient,
		logger:  logger,
		nav:     cfg.Navigator,
		session: NewSessionStore(),
	}, nil
}

// Session exposes the client's session store.
func (c *Client) Session() *SessionStore {
	return c.session
}

// do issues a request and, on a 401 from a non-auth endpoint, refreshes
// the access token and retries exactly once. The retry flag is local to
// the call, so concurrent requests each get their own single retry.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	err := c.send(ctx, method, path, body, out)
	if err == nil || !IsUnauthorized(err) || skipRefresh(path) {
		return err
	}

	if refreshErr := c.refreshSession(ctx); refreshErr != nil {
		c.session.SetUnauthenticated()
		if c.nav != nil {
			c.nav.RedirectToLogin(path)
		}
		// The caller sees the failure of its own request, not the
		// refresh bookkeeping behind it.
		return err
	}

	return c.send(ctx, method, path, body, out)
}

// refreshSession rotates the token pair. Concurrent 401s share one
// refresh call instead of racing rotations.
func (c *Client) refreshSession(ctx context.Context) error {
	return c.refreshGroup.Do(func() error {
		return c.send(ctx, http.MethodPost, refreshPath, nil, nil)
	})
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := decodeError(resp.StatusCode, data)
		c.logger.Debug("api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// skipRefresh excludes the endpoints where a 401 is a final answer:
// refreshing after a failed login or a failed refresh would loop.
func skipRefresh(path string) bool {
	switch path {
	case loginPath, refreshPath, logoutPath,
		registerStudentPath, registerTeacherPath:
		return true
	}
	return false
}

// singleflight collapses concurrent calls into one in-flight execution;
// late arrivals wait for and share its result. The zero value is ready
// to use.
type singleflight struct {
	mu      sync.Mutex
	pending *flightResult
}

type flightResult struct {
	done chan struct{}
	err  error
}

func (s *singleflight) Do(fn func() error) error {
	s.mu.Lock()
	if s.pending != nil {
		flight := s.pending
		s.mu.Unlock()
		<-flight.done
		return flight.err
	}
	flight := &flightResult{done: make(chan struct{})}
	s.pending = flight
	s.mu.Unlock()

	flight.err = fn()

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	close(flight.done)
	return flight.err
}
