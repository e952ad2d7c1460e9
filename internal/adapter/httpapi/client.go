// Package httpapi holds the REST clients for the problem and submission services.
package httpapi

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
	"sync"
	"time"

	"golang.org/x/oauth2"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/static/errs"
)

var _ secondary.TokenHolder = (*Client)(nil)

const maxErrorBody = 64 << 10

// APIError is a non-2xx answer. It unwraps to the matching sentinel in errs.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%v (status %d): %s", e.kind, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// Client is a JSON client for one service base URL. The bearer token is attached
// by an oauth2 transport and can be swapped at any time.
type Client struct {
	baseURL string
	timeout time.Duration
	base    *http.Client
	logger  primary.Logger

	mu     sync.RWMutex
	client *http.Client
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets the client whose transport carries the requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.base = hc
	}
}

func NewClient(baseURL string, logger primary.Logger, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 30 * time.Second,
		base:    http.DefaultClient,
		logger:  logger,
	}
	for _, option := range options {
		option(c)
	}
	c.SetToken("")
	return c
}

// SetToken replaces the bearer token. An empty token sends requests unauthenticated.
func (c *Client) SetToken(token string) {
	var hc *http.Client
	if token == "" {
		hc = &http.Client{Transport: c.base.Transport}
	} else {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	}
	hc.Timeout = c.timeout

	c.mu.Lock()
	c.client = hc
	c.mu.Unlock()
}

func (c *Client) httpClient() *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logger.Error("Request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", errs.ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newAPIError(resp)
		c.logger.Warn("Request rejected", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode %s %s: %v", errs.ErrRequestFailed, method, path, err)
	}
	return nil
}

func newAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var kind error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = errs.ErrUnauthorized
	case http.StatusNotFound:
		kind = errs.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = errs.ErrInvalidInput
	default:
		kind = errs.ErrRequestFailed
	}

	return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw), kind: kind}
}

// errorMessage pulls the server's message out of {"message"} or {"error"} bodies.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
