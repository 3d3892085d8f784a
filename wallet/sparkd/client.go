// Copyright (c) 2026 Breez MCP Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package sparkd implements the wallet capability interface on top of the
// Spark wallet daemon JSON API.  The daemon owns keys, storage and the
// Lightning protocol; this client only moves requests and responses across
// the wire.
package sparkd

// In this file: HTTP transport plumbing.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/breez/breez-mcp/wallet"
)

const (
	apiPrefix     = "/api/v1"
	sessionHeader = "X-Spark-Session"

	defTimeout = 90 * time.Second
	// defRate is conservative: the daemon throttles aggressive clients.
	defRate  = rate.Limit(10) // requests per second
	defBurst = 5
)

// Client is a wallet.Client backed by a Spark wallet daemon.  Zero value is
// not usable, must be created with New.  All exported methods except Connect
// require an established session.
type Client struct {
	cl      *http.Client
	baseURL string
	apiKey  string
	lim     *rate.Limiter
	lg      *slog.Logger

	mu      sync.Mutex
	session string
}

var _ wallet.Client = (*Client)(nil)

// Option is the signature of the option-setting function.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP client, e.g. to add a proxy or custom
// TLS configuration.
func WithHTTPClient(cl *http.Client) Option {
	return func(c *Client) {
		if cl != nil {
			c.cl = cl
		}
	}
}

// WithLogger sets the logger to use.  If nil, the default logger is kept.
func WithLogger(lg *slog.Logger) Option {
	return func(c *Client) {
		if lg != nil {
			c.lg = lg
		}
	}
}

// WithLimiter overrides the request pacing limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.lim = l
		}
	}
}

// New creates a daemon client for the given base URL.  The API key is sent
// with every request; it is never logged.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		cl:      &http.Client{Timeout: defTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		lim:     rate.NewLimiter(defRate, defBurst),
		lg:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// baseResponse is embedded in every daemon response.
type baseResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// apiResponse is implemented by all response types via baseResponse.
type apiResponse interface {
	apiErr() error
}

// apiErr maps the daemon error code to the wallet sentinel errors.
func (r baseResponse) apiErr() error {
	if r.OK {
		return nil
	}
	switch r.Code {
	case "invalid_invoice":
		return fmt.Errorf("%w: %s", wallet.ErrInvalidInvoice, r.Error)
	case "insufficient_funds":
		return fmt.Errorf("%w: %s", wallet.ErrInsufficientFunds, r.Error)
	case "amount_out_of_range":
		return fmt.Errorf("%w: %s", wallet.ErrAmountOutOfRange, r.Error)
	case "unauthorized":
		return wallet.ErrUnauthorized
	default:
		return fmt.Errorf("daemon error: %s (code: %s)", r.Error, r.Code)
	}
}

// post sends payload to the daemon and decodes the answer into resp.
// Transport-level failures and 5xx answers come back as *wallet.ConnError;
// daemon-level rejections are mapped by apiErr.
func (c *Client) post(ctx context.Context, path string, payload any, resp apiResponse) error {
	if err := c.lim.Wait(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if s := c.sessionToken(); s != "" {
		req.Header.Set(sessionHeader, s)
	}

	r, err := c.cl.Do(req)
	if err != nil {
		return &wallet.ConnError{Err: err}
	}
	defer r.Body.Close()

	switch {
	case r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden:
		return wallet.ErrUnauthorized
	case r.StatusCode >= http.StatusInternalServerError:
		return &wallet.ConnError{Err: fmt.Errorf("daemon returned %s", r.Status)}
	}
	if err := json.NewDecoder(r.Body).Decode(resp); err != nil {
		return &wallet.ConnError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.apiErr()
}

func (c *Client) sessionToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// requireSession fails fast when no session is established.
func (c *Client) requireSession() error {
	if c.sessionToken() == "" {
		return wallet.ErrNotConnected
	}
	return nil
}
