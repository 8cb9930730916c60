package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobguard/jobguard/internal/config"
	"github.com/jobguard/jobguard/internal/dashboard"
	"github.com/jobguard/jobguard/internal/log"
	"github.com/jobguard/jobguard/internal/session"
)

// NewDashboardCmd creates the dashboard command.
func NewDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive scan dashboard",
		Long: `Dashboard opens a full-screen terminal UI. Paste or type a job posting and
press ctrl+s to scan it. The admin operator also sees the live system log
panel.

Logs are written to the JobGuard state directory so they do not disturb
the screen.`,
		Args: cobra.NoArgs,
		RunE: runDashboardCmd,
	}
	cmd.Flags().Bool("no-history", false, "Do not record scans in the local history")
	return cmd
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := log.NewFileLogger(config.LogFilePath(), cfg.Verbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := openApp(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	feed := dashboard.NewStatusFeed()
	ctrl := a.controller(session.WithListener(feed.Notify))
	m := dashboard.New(ctx, ctrl, a.ident,
		dashboard.WithLogStream(a.stream),
		dashboard.WithStatusFeed(feed),
		dashboard.WithDebounce(cfg.Debounce),
		dashboard.WithMeterDelay(cfg.MeterDelay),
		dashboard.WithServer(cfg.ServerURL),
		dashboard.WithLogger(logger),
	)

	exit, err := dashboard.Run(ctx, m)
	if err != nil {
		return err
	}

	switch exit {
	case dashboard.ExitLoggedOut:
		fmt.Fprintln(cmd.OutOrStdout(), "Session terminated.")
	case dashboard.ExitAccountDeleted:
		fmt.Fprintln(cmd.OutOrStdout(), "Account deleted.")
	}
	return nil
}
