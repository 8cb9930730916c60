package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultTorStartupTimeout bounds how long the embedded daemon may bootstrap.
const DefaultTorStartupTimeout = 3 * time.Minute

// torDaemon is the part of a running Tor process the client relies on.
type torDaemon interface {
	SocksAddr() string
	Stop() error
}

// launchFunc starts a daemon and blocks until it has bootstrapped.
type launchFunc func(startupTimeout time.Duration) (torDaemon, error)

// launchTornago starts a tornago daemon listening on OS-assigned ports.
func launchTornago(startupTimeout time.Duration) (torDaemon, error) {
	cfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(startupTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: launch config: %w", ErrTorStart, err)
	}
	process, err := tornago.StartTorDaemon(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTorStart, err)
	}
	return process, nil
}

// EmbeddedTor runs a private Tor daemon so the scan server never sees the
// operator's address. Bootstrapping takes one to three minutes.
type EmbeddedTor struct {
	startupTimeout time.Duration
	launch         launchFunc

	mu     sync.Mutex
	daemon torDaemon
}

// EmbeddedTorOption configures an EmbeddedTor.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		e.startupTimeout = timeout
	}
}

// NewEmbeddedTor creates an embedded Tor manager. Call Start to launch it.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{
		startupTimeout: DefaultTorStartupTimeout,
		launch:         launchTornago,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon and waits for it to bootstrap. When ctx ends
// first, Start returns ctx's error at once and the daemon is stopped as soon
// as its launch completes.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	type launched struct {
		daemon torDaemon
		err    error
	}
	done := make(chan launched, 1)
	go func() {
		d, err := e.launch(e.startupTimeout)
		done <- launched{daemon: d, err: err}
	}()

	select {
	case l := <-done:
		if l.err != nil {
			return l.err
		}
		e.mu.Lock()
		e.daemon = l.daemon
		e.mu.Unlock()
		return nil
	case <-ctx.Done():
		go func() {
			if l := <-done; l.err == nil {
				_ = l.daemon.Stop() //nolint:errcheck // abandoned launch
			}
		}()
		return ctx.Err()
	}
}

// Stop shuts the daemon down. Stopping an idle instance is a no-op.
func (e *EmbeddedTor) Stop() error {
	e.mu.Lock()
	d := e.daemon
	e.daemon = nil
	e.mu.Unlock()

	if d == nil {
		return nil
	}
	return d.Stop()
}

// SocksAddr returns the daemon's SOCKS5 address, or "" when not running.
func (e *EmbeddedTor) SocksAddr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.daemon == nil {
		return ""
	}
	return e.daemon.SocksAddr()
}

// IsRunning reports whether the daemon is running.
func (e *EmbeddedTor) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.daemon != nil
}

// Option returns a client option that routes through the running daemon.
func (e *EmbeddedTor) Option() (Option, error) {
	addr := e.SocksAddr()
	if addr == "" {
		return nil, ErrTorNotRunning
	}
	return WithProxy(addr), nil
}
