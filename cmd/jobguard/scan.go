package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jobguard/jobguard/internal/config"
	"github.com/jobguard/jobguard/internal/identity"
	"github.com/jobguard/jobguard/internal/render"
	"github.com/jobguard/jobguard/internal/session"
	"github.com/jobguard/jobguard/internal/source"
)

// errNoInput is returned when scan has neither a file nor --text.
var errNoInput = errors.New("no input provided (pass a file, \"-\" for stdin, or --text)")

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file...]",
		Short: "Scan one job posting and print the verdict",
		Long: `Scan sends a job posting to the JobGuard server and prints the verdict.

The posting is read from a file, from stdin with "-", or from --text.
Plain text, HTML pages (.html, .htm) and e-mails (.eml) are accepted;
markup and e-mail headers are stripped before the text is sent.

Examples:
  # Scan a saved posting
  jobguard scan posting.txt

  # Scan a posting saved from the browser
  jobguard scan offer.html

  # Scan a job offer received by e-mail and write a Markdown report
  jobguard scan --markdown -o report.md offer.eml

  # Scan a folder of saved offers, four at a time
  jobguard scan --batch 4 offers/*.html

  # Pipe a posting in
  pbpaste | jobguard scan -

  # Output JSON
  jobguard scan --json --text "Earn $5000 a week from home..."`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	cmd.Flags().StringP("text", "x", "", "Posting text to scan instead of a file")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().IntP("batch", "b", session.DefaultConcurrency,
		"Number of postings scanned concurrently when several files are given")
	cmd.Flags().Bool("no-history", false, "Do not record the scan in the local history")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	postings, err := scanInput(cmd, args)
	if err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}

	ctx, a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := readReportFlags(cmd, a.cfg); err != nil {
		return err
	}

	if len(postings) > 1 {
		return runBatchScan(ctx, a, postings, concurrency, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	return runScan(ctx, a, postings[0].Text, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// scanInput returns the postings named by --text, file arguments, or "-"
// for stdin.
func scanInput(cmd *cobra.Command, args []string) ([]session.Posting, error) {
	text, err := cmd.Flags().GetString("text")
	if err != nil {
		return nil, err
	}
	if text != "" {
		if len(args) > 0 {
			return nil, errors.New("--text cannot be combined with file arguments")
		}
		return []session.Posting{{Name: "--text", Text: text}}, nil
	}
	if len(args) == 0 {
		return nil, errNoInput
	}

	postings := make([]session.Posting, 0, len(args))
	for _, path := range args {
		var doc *source.Document
		if path == "-" {
			doc, err = source.Read(cmd.InOrStdin(), source.KindText)
		} else {
			doc, err = source.Load(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		postings = append(postings, session.Posting{Name: path, Text: doc.Text})
	}
	return postings, nil
}

func readReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	return cfg.Validate()
}

// runScan asks the server who we are while the posting is analyzed, then
// prints the report. The report carries no log panel, so the identity query
// runs without a log stream and the two goroutines share nothing mutable.
func runScan(ctx context.Context, a *app, text string, stdout, stderr io.Writer) error {
	ctrl := a.controller()
	if err := ctrl.Validate(text); err != nil {
		return fmt.Errorf("%s: %w", session.Message(err), err)
	}
	ident := a.reconciler(nil)

	var (
		state   identity.State
		outcome *session.Outcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := ident.Reconcile(gctx)
		if err != nil {
			a.logger.Debug("identity unavailable", "error", err)
		}
		state = s
		return nil
	})
	g.Go(func() error {
		var err error
		outcome, err = ctrl.Submit(gctx, text)
		if err != nil {
			return fmt.Errorf("%s: %w", session.Message(err), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("scan completed",
		"id", outcome.Session.ID,
		"tier", outcome.Tier.String(),
		"probability", outcome.Probability,
	)

	if !a.cfg.JSONReport && !a.cfg.MarkdownReport {
		fmt.Fprintln(stderr, state.Label)
	}
	return outputReport(a.cfg, outcome.Report, stdout)
}

// runBatchScan scans several postings concurrently. Progress is printed as
// scans finish; reports follow in argument order.
func runBatchScan(ctx context.Context, a *app, postings []session.Posting, concurrency int, stdout, stderr io.Writer) error {
	b := session.NewBatch(func() *session.Controller { return a.controller() },
		session.WithConcurrency(concurrency),
		session.WithBatchLogger(a.logger),
	)
	fmt.Fprintf(stderr, "Scanning %d postings (concurrency: %d)...\n", len(postings), b.Concurrency())

	var (
		mu       sync.Mutex
		done     int
		failed   int
		outcomes = make([]*session.Outcome, len(postings))
	)
	err := b.RunWithCallback(ctx, postings, func(r session.BatchResult, i int) {
		mu.Lock()
		defer mu.Unlock()

		done++
		if r.Err != nil {
			failed++
			fmt.Fprintf(stderr, "[%d/%d] %s: %s\n", done, len(postings), r.Posting.Name, session.Message(r.Err))
			return
		}
		outcomes[i] = r.Outcome
		fmt.Fprintf(stderr, "[%d/%d] %s: %s %s\n", done, len(postings), r.Posting.Name,
			r.Outcome.Report.View.Title, render.FormatPercent(r.Outcome.Probability))
	})
	if err != nil {
		return err
	}

	err = withOutput(a.cfg, stdout, func(w render.Writer) error {
		for _, o := range outcomes {
			if o == nil {
				continue
			}
			if _, err := w.Write(o.Report); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scans failed", failed, len(postings))
	}
	return nil
}

// outputReport writes the report in the requested format to the report
// file or stdout.
func outputReport(cfg *config.Config, report *render.Report, stdout io.Writer) error {
	return withOutput(cfg, stdout, func(w render.Writer) error {
		_, err := w.Write(report)
		return err
	})
}

// withOutput opens the report destination and hands fn a writer for the
// configured format.
func withOutput(cfg *config.Config, stdout io.Writer, fn func(render.Writer) error) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports contain the posting text; owner-only.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	return fn(newReportWriter(cfg, output))
}

func newReportWriter(cfg *config.Config, output io.Writer) render.Writer {
	switch {
	case cfg.JSONReport:
		return render.NewJSONWriter(output, render.WithPrettyPrint())
	case cfg.MarkdownReport:
		return render.NewMarkdownWriter(output)
	default:
		return render.NewTerminalWriter(output)
	}
}
