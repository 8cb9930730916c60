package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/risk"
)

// TerminalWriter renders reports for a terminal with lipgloss.
// The meter is drawn at its target; animation is the dashboard's job.
type TerminalWriter struct {
	baseWriter
	styles Styles
	width  int
}

// TerminalWriterOption configures a TerminalWriter.
type TerminalWriterOption func(*TerminalWriter)

// WithWidth bounds the rendered box.
func WithWidth(width int) TerminalWriterOption {
	return func(w *TerminalWriter) {
		w.width = width
	}
}

// NewTerminalWriter creates a TerminalWriter that outputs to the given writer.
func NewTerminalWriter(output io.Writer, opts ...TerminalWriterOption) *TerminalWriter {
	w := &TerminalWriter{
		baseWriter: newBaseWriter(output),
		styles:     DefaultStyles(),
		width:      72,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *TerminalWriter) Write(report *Report) (int, error) {
	var sb strings.Builder
	sb.WriteString(w.styles.RenderView(report.View, report.View.Meter.Target, w.width))
	sb.WriteString("\n")
	if report.SessionID != "" {
		sb.WriteString(w.styles.Muted.Render(fmt.Sprintf("scan %s in %s", report.SessionID, report.Elapsed.Round(time.Millisecond))))
		sb.WriteString("\n")
	}
	return io.WriteString(w.output, sb.String())
}

// WriteHistory implements Writer.
func (w *TerminalWriter) WriteHistory(records []model.ScanRecord) (int, error) {
	if len(records) == 0 {
		return io.WriteString(w.output, "No scans recorded.\n")
	}

	var sb strings.Builder
	sb.WriteString(w.styles.Heading.Render("SCAN HISTORY"))
	sb.WriteString("\n")
	for _, r := range records {
		style := risk.Style(r.Tier)
		tier := lipgloss.NewStyle().Foreground(Color(style.Color)).Render(fmt.Sprintf("%-16s", style.Title))
		sb.WriteString(fmt.Sprintf("%s  %s  %s %6s  %s\n",
			r.ID[:min(8, len(r.ID))],
			r.ScannedAt.Local().Format("2006-01-02 15:04"),
			tier,
			FormatPercent(r.Probability),
			r.Preview(40),
		))
	}

	sb.WriteString("\n")
	counts := TierCounts(records)
	for _, tier := range model.AllTiers() {
		if counts[tier] == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-16s %d\n", risk.Style(tier).Title, counts[tier]))
	}
	return io.WriteString(w.output, sb.String())
}
