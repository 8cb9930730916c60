package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobguard/jobguard/internal/dashboard"
	"github.com/jobguard/jobguard/internal/logstream"
	"github.com/jobguard/jobguard/internal/session"
)

// errNotAdmin is returned when a non-admin asks for the system logs.
var errNotAdmin = errors.New("system logs are restricted to the admin operator")

// NewLogsCmd creates the logs command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print or copy the server's system logs (admin only)",
		Long: `Logs fetches the server's system log lines once the server confirms the
session belongs to the admin operator, and prints them with the export
banner. With --copy they are placed on the clipboard instead.`,
		Args: cobra.NoArgs,
		RunE: runLogsCmd,
	}
	cmd.Flags().Bool("copy", false, "Copy the logs to the clipboard instead of printing them")
	return cmd
}

func runLogsCmd(cmd *cobra.Command, _ []string) error {
	toClipboard, err := cmd.Flags().GetBool("copy")
	if err != nil {
		return err
	}

	ctx, a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	state, err := a.ident.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", session.Message(err), err)
	}
	if !state.AdminPanel {
		return fmt.Errorf("%w (%s)", errNotAdmin, state.Label)
	}

	now := time.Now()
	if toClipboard {
		if err := logstream.Copy(a.stream, logstream.SystemClipboard{}, now); err != nil {
			return logsError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), dashboard.NoticeCopied)
		return nil
	}

	text, err := a.stream.CopyText(now)
	if err != nil {
		return logsError(err)
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}

func logsError(err error) error {
	if errors.Is(err, logstream.ErrNoLogData) {
		return fmt.Errorf("%s: %w", dashboard.NoticeNoLogs, err)
	}
	return fmt.Errorf("%s: %w", dashboard.NoticeClipboard, err)
}
