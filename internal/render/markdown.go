package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/risk"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown for sharing.
// All server-supplied text is escaped; only the strong spans produced by
// Emphasize become Markdown emphasis.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)
	v := report.View

	md.H1("JobGuard Scan Report")
	md.PlainText("")

	rows := [][]string{
		{"Verdict", v.Title},
		{"Status", escapeMarkdown(v.StatusLine)},
		{"Fraud Probability", FormatPercent(v.Probability)},
	}
	if report.SessionID != "" {
		rows = append(rows,
			[]string{"Scan ID", "`" + report.SessionID + "`"},
			[]string{"Scan Date", report.ScannedAt.Format("2006-01-02 15:04:05 MST")},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	writeVerdictAlert(md, v)

	for _, section := range v.Sections() {
		switch section {
		case SectionAdvisory:
			md.H2("Advisory Notes")
			md.PlainText("")
			md.BulletList(escapeAll(v.Advisory)...)
			md.PlainText("")
		case SectionReasons:
			md.H2("Reasons")
			md.PlainText("")
			items := make([]string, 0, len(v.Reasons))
			for _, spans := range v.Reasons {
				items = append(items, markdownSpans(spans))
			}
			md.BulletList(items...)
			md.PlainText("")
		case SectionTechnical:
			md.H2("Technical Details")
			md.PlainText("")
			if len(v.Technical.Anomaly) > 0 {
				md.H3("Anomaly Analysis")
				md.PlainText("")
				md.BulletList(escapeAll(v.Technical.Anomaly)...)
				md.PlainText("")
			}
			if len(v.Technical.XAI) > 0 {
				md.H3("XAI Insights")
				md.PlainText("")
				md.BulletList(escapeAll(v.Technical.XAI)...)
				md.PlainText("")
			}
		}
	}

	writeFooter(md)
	return len(md.String()), md.Build()
}

func writeVerdictAlert(md *markdown.Markdown, v View) {
	switch v.Tier {
	case model.TierCritical:
		md.Cautionf("%s: %s fraud probability.", v.Title, FormatPercent(v.Probability))
	case model.TierHigh:
		md.Warningf("%s: %s fraud probability.", v.Title, FormatPercent(v.Probability))
	case model.TierModerate:
		md.Importantf("%s: %s fraud probability.", v.Title, FormatPercent(v.Probability))
	case model.TierLanguageError:
		md.Note("The text could not be analyzed as a job posting.")
	default:
		md.Tip("No significant fraud signals detected.")
	}
	md.PlainText("")
}

// WriteHistory implements Writer. The tier distribution is drawn as a
// mermaid pie chart.
func (w *MarkdownWriter) WriteHistory(records []model.ScanRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("JobGuard Scan History")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No scans recorded.")
		md.PlainText("")
		writeFooter(md)
		return len(md.String()), md.Build()
	}

	counts := TierCounts(records)
	summary := make([][]string, 0, len(counts))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Verdict Distribution"),
		piechart.WithShowData(true),
	)
	for _, tier := range model.AllTiers() {
		n := counts[tier]
		if n == 0 {
			continue
		}
		title := risk.Style(tier).Title
		summary = append(summary, []string{title, fmt.Sprint(n)})
		chart.LabelAndIntValue(title, uint64(n))
	}

	md.H2("Verdict Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Verdict", "Count"},
		Rows:   summary,
	})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	md.H2("Scans")
	md.PlainText("")
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			"`" + r.ID + "`",
			r.ScannedAt.Format("2006-01-02 15:04:05 MST"),
			risk.Style(r.Tier).Title,
			FormatPercent(r.Probability),
			escapeMarkdown(r.Preview(50)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Date", "Verdict", "Probability", "Text"},
		Rows:   rows,
	})
	md.PlainText("")

	writeFooter(md)
	return len(md.String()), md.Build()
}

func writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by JobGuard*")
}

// markdownSpans renders spans with strong runs in bold and everything
// else escaped.
func markdownSpans(spans []Span) string {
	var sb strings.Builder
	for _, sp := range spans {
		text := escapeMarkdown(sp.Text)
		if sp.Strong && strings.TrimSpace(sp.Text) != "" {
			sb.WriteString("**" + text + "**")
			continue
		}
		sb.WriteString(text)
	}
	return sb.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
	">", "&gt;",
	"#", `\#`,
	"|", `\|`,
	"!", `\!`,
)

// escapeMarkdown neutralizes Markdown and HTML syntax in untrusted text.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func escapeAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = escapeMarkdown(l)
	}
	return out
}
