package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobguard/jobguard/internal/config"
)

// NewRootCmd creates the root command for JobGuard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobguard",
		Short: "Scan job postings for signs of fraud",
		Long: `JobGuard sends job postings to a JobGuard server and shows how likely
they are to be fraudulent, with the reasons behind the verdict.

Running jobguard without a subcommand opens the interactive dashboard.
Server address, proxy and timeouts can be set in a .jobguard file in the
current or home directory (see "jobguard init").`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		RunE:          runDashboardCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringP("config", "c", "",
		"Configuration file path (default: .jobguard in current or home directory)")
	flags.StringP("profile", "P", "", "Named profile from the configuration file")
	flags.StringP("server", "s", config.DefaultServerURL, "JobGuard server URL")
	flags.DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each server request")
	flags.String("proxy", "", "SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	flags.Bool("tor", false, "Route traffic through an embedded Tor daemon")
	flags.Duration("tor-timeout", config.DefaultTorStartupTimeout, "Timeout for embedded Tor startup")
	flags.String("data-dir", config.XDGDataDir(), "Directory of the local database")

	cmd.AddCommand(NewDashboardCmd())
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewSignupCmd())
	cmd.AddCommand(NewLogoutCmd())
	cmd.AddCommand(NewDeleteAccountCmd())
	cmd.AddCommand(NewWhoamiCmd())
	cmd.AddCommand(NewLogsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
