package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobguard/jobguard/internal/client"
	"github.com/jobguard/jobguard/internal/config"
	"github.com/jobguard/jobguard/internal/database"
	"github.com/jobguard/jobguard/internal/identity"
	"github.com/jobguard/jobguard/internal/log"
	"github.com/jobguard/jobguard/internal/logstream"
	"github.com/jobguard/jobguard/internal/session"
)

// app is the wiring shared by every command that talks to the server.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *database.Store
	client *client.Client
	stream *logstream.Stream
	ident  *identity.Reconciler
	tor    *client.EmbeddedTor
}

// buildConfig creates a Config from defaults, the config file and the
// flags that were set explicitly, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Profile, err = flags.GetString("profile"); err != nil {
		return nil, err
	}
	if _, err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if flags.Changed("server") {
		if cfg.ServerURL, err = flags.GetString("server"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("data-dir"); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	if flags.Lookup("no-history") != nil {
		if cfg.NoHistory, err = flags.GetBool("no-history"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// openApp opens the local store and builds the server client. Embedded
// Tor, when requested, is started here; progress goes to status.
func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, status io.Writer) (*app, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())

	a := &app{cfg: cfg, logger: logger, db: db, stream: logstream.NewStream()}

	opts := []client.Option{
		client.WithTimeout(cfg.Timeout),
		client.WithSessionStore(db),
		client.WithLogger(logger),
		client.WithHeaders(cfg.Headers),
	}
	switch {
	case cfg.UseTor:
		opt, err := a.startTor(ctx, status)
		if err != nil {
			_ = a.Close() //nolint:errcheck // best effort cleanup
			return nil, err
		}
		opts = append(opts, opt)
	case cfg.Proxy != "":
		opts = append(opts, client.WithProxy(cfg.Proxy))
	}

	a.client, err = client.New(cfg.ServerURL, opts...)
	if err != nil {
		_ = a.Close() //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	a.ident = a.reconciler(a.stream)
	return a, nil
}

// reconciler builds an identity reconciler over the local store. A nil
// stream skips the admin log fetch.
func (a *app) reconciler(stream *logstream.Stream) *identity.Reconciler {
	opts := []identity.Option{
		identity.WithAdminUser(a.cfg.AdminUser),
		identity.WithSessionClearer(a.db),
		identity.WithLogger(a.logger),
	}
	if stream != nil {
		opts = append(opts, identity.WithLogStream(stream))
	}
	return identity.NewReconciler(a.db, a.client, opts...)
}

func (a *app) startTor(ctx context.Context, status io.Writer) (client.Option, error) {
	fmt.Fprintln(status, "Starting embedded Tor daemon...")
	fmt.Fprintf(status, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	a.tor = client.NewEmbeddedTor(client.WithStartupTimeout(a.cfg.TorStartupTimeout))
	if err := a.tor.Start(ctx); err != nil {
		if errors.Is(err, client.ErrTorStart) {
			return nil, err
		}
		return nil, fmt.Errorf("embedded Tor startup interrupted: %w", err)
	}
	a.logger.Info("embedded Tor daemon started", "socksAddr", a.tor.SocksAddr())
	fmt.Fprintf(status, "SOCKS proxy: %s\n\n", a.tor.SocksAddr())

	return a.tor.Option()
}

// controller creates a scan controller that records into the local
// history unless history is disabled.
func (a *app) controller(opts ...session.Option) *session.Controller {
	base := []session.Option{
		session.WithLogStream(a.stream),
		session.WithMinInput(a.cfg.MinInput),
		session.WithLogger(a.logger),
	}
	if !a.cfg.NoHistory {
		base = append(base, session.WithRecorder(a.db))
	}
	return session.NewController(a.client, append(base, opts...)...)
}

// Close stops embedded Tor and closes the database.
func (a *app) Close() error {
	var errs []error
	if a.tor != nil {
		a.logger.Info("stopping embedded Tor daemon...")
		errs = append(errs, a.tor.Stop())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// setup builds the configuration, a stderr logger and the app for a
// headless command. The returned context ends on SIGINT or SIGTERM.
func setup(cmd *cobra.Command) (context.Context, *app, func(), error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signalContext(cmd.Context())
	a, err := openApp(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		stop()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
		stop()
	}
	return ctx, a, cleanup, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
