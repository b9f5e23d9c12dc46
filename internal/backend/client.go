// Package backend is the client for the PaperIQ document-processing API:
// authentication plus the four pipeline endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/paperiq/dashboard/internal/session"
	"go.uber.org/zap"
)

// DefaultBaseURL is where the backend listens in a local setup.
const DefaultBaseURL = "http://127.0.0.1:8000/api"

// Client sends one request per call. There is no retry and no backoff; a
// failure goes straight back to the caller.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	store          session.Storage
	onUnauthorized func()
	logger         *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient shares a transport between clients. The client's Timeout is
// the only request deadline besides the caller's context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUnauthorizedHandler is called after a 401 has cleared the session. Front
// ends use it to send the user back to the login screen.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client rooted at baseURL that reads its bearer token from store.
func New(baseURL string, store session.Storage, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		store:      store,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Storage returns the session storage the client authenticates from.
func (c *Client) Storage() session.Storage {
	return c.store
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", out)
}

// do is the interceptor pair: bearer on the way out, 401 handling on the way back.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := session.Token(c.store); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(path)
		return newStatusError(method, path, resp.StatusCode, data)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := newStatusError(method, path, resp.StatusCode, data)
		c.logger.Warn("backend returned error status",
			zap.String("path", path), zap.Int("status", resp.StatusCode), zap.String("message", se.Message))
		return se
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) handleUnauthorized(path string) {
	c.logger.Info("backend rejected credentials, clearing session", zap.String("path", path))
	if err := session.Clear(c.store); err != nil {
		c.logger.Error("failed to clear session", zap.Error(err))
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
