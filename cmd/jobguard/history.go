package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobguard/jobguard/internal/config"
	"github.com/jobguard/jobguard/internal/database"
	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/render"
	"github.com/jobguard/jobguard/internal/risk"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past scans from the local history",
		Long: `History lists scans recorded in the local database, newest first.

Examples:
  # Last 20 scans
  jobguard history

  # Markdown summary with a verdict pie chart
  jobguard history --markdown -o history.md

  # Show one scan again (an ID prefix is enough)
  jobguard history show 3f2a

  # Earlier scans of the same posting
  jobguard history find posting.txt`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.PersistentFlags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.PersistentFlags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.PersistentFlags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of scans to list (0 for all)")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryFindCmd())
	cmd.AddCommand(newHistoryStatsCmd())
	cmd.AddCommand(newHistoryClearCmd())
	return cmd
}

// openHistory opens only the local database; history never talks to the
// server.
func openHistory(cmd *cobra.Command) (*config.Config, *database.Store, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, db, nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	cfg, db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.ListScans(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return withOutput(cfg, cmd.OutOrStdout(), func(w render.Writer) error {
		_, err := w.WriteHistory(records)
		return err
	})
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recorded scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			rec, err := db.GetScan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return outputReport(cfg, recordReport(rec), cmd.OutOrStdout())
		},
	}
}

// recordReport rebuilds the report of a recorded scan.
func recordReport(rec *model.ScanRecord) *render.Report {
	result := rec.Result
	if result == nil {
		p := rec.Probability
		result = &model.ScanResult{FraudProbability: &p}
	}
	report := render.NewReport(nil, result, rec.Tier)
	report.SessionID = rec.ID
	report.ScannedAt = rec.ScannedAt
	return report
}

func newHistoryFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [file]",
		Short: "List earlier scans of the same posting",
		Long: `Find lists recorded scans whose text is identical to the given posting.
The posting is read the same way scan reads it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postings, err := scanInput(cmd, args)
			if err != nil {
				return err
			}

			cfg, db, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := db.FindScansByText(cmd.Context(), postings[0].Text)
			if err != nil {
				return err
			}
			return withOutput(cfg, cmd.OutOrStdout(), func(w render.Writer) error {
				_, err := w.WriteHistory(records)
				return err
			})
		},
	}
	cmd.Flags().StringP("text", "x", "", "Posting text instead of a file")
	return cmd
}

func newHistoryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count recorded scans per verdict",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			counts, err := db.TierCounts(cmd.Context())
			if err != nil {
				return err
			}

			var sb strings.Builder
			total := 0
			for _, tier := range model.AllTiers() {
				n := counts[tier]
				total += n
				fmt.Fprintf(&sb, "%-16s %d\n", risk.Style(tier).Title, n)
			}
			fmt.Fprintf(&sb, "%-16s %d\n", "TOTAL", total)
			_, err = fmt.Fprint(cmd.OutOrStdout(), sb.String())
			return err
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, err := cmd.Flags().GetBool("yes")
			if err != nil {
				return err
			}
			if !yes {
				fmt.Fprint(cmd.ErrOrStderr(), "Delete all recorded scans? [y/N] ")
				answer, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			_, db, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.ClearScans(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d scans.\n", n)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
