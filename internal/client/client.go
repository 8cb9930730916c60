package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the HTTP timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// userAgent identifies the client to the server.
const userAgent = "jobguard-client"

// Client is a JobGuard server client. It is safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	sessions SessionStore
	logger   *slog.Logger

	timeout      time.Duration
	proxyAddress string
	headers      map[string]string
	base         http.RoundTripper
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithProxy routes requests through the SOCKS5 proxy at address ("host:port").
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithSessionStore sets where the session cookie is persisted.
func WithSessionStore(s SessionStore) Option {
	return func(c *Client) {
		c.sessions = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithHeaders adds fixed headers to every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithTransport replaces the underlying transport, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

// New creates a client for the server at serverURL.
func New(serverURL string, opts ...Option) (*Client, error) {
	u, err := parseServerURL(serverURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: u,
		timeout: DefaultTimeout,
		headers: map[string]string{"User-Agent": userAgent},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.sessions == nil {
		c.sessions = NewMemorySessionStore()
	}

	if c.base == nil {
		if c.proxyAddress != "" {
			transport, err := newProxyTransport(c.proxyAddress)
			if err != nil {
				return nil, err
			}
			c.base = transport
		} else {
			c.base = newDirectTransport()
		}
	}

	c.http = &http.Client{
		Transport: &sessionTransport{
			base:    c.base,
			store:   c.sessions,
			headers: c.headers,
			logger:  c.logger,
		},
		Timeout: c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return c, nil
}

func parseServerURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidServerURL
	}
	return u, nil
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ProxyAddress returns the configured SOCKS5 proxy address, or "".
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// Sessions returns the session store.
func (c *Client) Sessions() SessionStore {
	return c.sessions
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// do sends a request with an optional JSON body and reads the whole response.
// Transport failures are wrapped in ErrConnection.
func (c *Client) do(ctx context.Context, method, path string, in any) (*response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrConnection, err)
	}

	c.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return &response{status: resp.StatusCode, body: data}, nil
}

// statusMessage is used when a failed response carries no error text.
func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
