package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

// sessionTransport wraps an http.RoundTripper to inject the stored session
// cookie and fixed headers into every request, and to persist cookies the
// server sets.
type sessionTransport struct {
	base    http.RoundTripper
	store   SessionStore
	headers map[string]string
	logger  *slog.Logger

	// mu serializes the read-merge-write of the stored cookie.
	mu sync.Mutex
}

// RoundTrip implements http.RoundTripper.
func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	cookie, err := t.store.LoadSession(req.Context())
	if err != nil {
		t.logger.Warn("failed to load session cookie", "error", err)
	}
	if cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+cookie)
		} else {
			clone.Header.Set("Cookie", cookie)
		}
	}

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	resp, err := t.base.RoundTrip(clone)
	if err != nil {
		return nil, err
	}

	if updates := resp.Cookies(); len(updates) > 0 {
		t.capture(req.Context(), updates)
	}
	return resp, nil
}

func (t *sessionTransport) capture(ctx context.Context, updates []*http.Cookie) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stored, err := t.store.LoadSession(ctx)
	if err != nil {
		t.logger.Warn("failed to load session cookie", "error", err)
	}

	merged := mergeCookies(stored, updates)
	if merged == stored {
		return
	}

	if merged == "" {
		err = t.store.ClearSession(ctx)
	} else {
		err = t.store.SaveSession(ctx, merged)
	}
	if err != nil {
		t.logger.Warn("failed to persist session cookie", "error", err)
	}
}

// newDirectTransport returns the transport used without a proxy.
func newDirectTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// newProxyTransport returns a transport that dials through a SOCKS5 proxy.
func newProxyTransport(proxyAddress string) (*http.Transport, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// Tor's SOCKS port does not require auth.
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport := newDirectTransport()
	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// isValidProxyAddress checks that address is "host:port" with a non-empty
// host and a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
