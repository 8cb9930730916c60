package render

import (
	"io"
	"time"

	"github.com/jobguard/jobguard/internal/model"
)

// Report is one finished scan ready for output.
type Report struct {
	SessionID string            `json:"session_id"`
	ScannedAt time.Time         `json:"scanned_at"`
	Elapsed   time.Duration     `json:"elapsed_ns"`
	View      View              `json:"view"`
	Result    *model.ScanResult `json:"result"`
}

// NewReport builds the report for a finished session.
func NewReport(session *model.ScanSession, result *model.ScanResult, tier model.Tier) *Report {
	r := &Report{
		View:   BuildView(result, tier),
		Result: result,
	}
	if session != nil {
		r.SessionID = session.ID
		r.ScannedAt = session.StartedAt
		r.Elapsed = session.Elapsed()
	}
	return r
}

// Writer renders reports and scan history.
type Writer interface {
	// Write outputs one scan report.
	Write(report *Report) (int, error)

	// WriteHistory outputs a list of recorded scans, newest first.
	WriteHistory(records []model.ScanRecord) (int, error)
}

// MultiWriter writes to several Writers in turn, stopping at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write implements Writer.
func (m *MultiWriter) Write(report *Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory implements Writer.
func (m *MultiWriter) WriteHistory(records []model.ScanRecord) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(records)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// TierCounts tallies records per tier.
func TierCounts(records []model.ScanRecord) map[model.Tier]int {
	counts := make(map[model.Tier]int)
	for _, r := range records {
		counts[r.Tier]++
	}
	return counts
}
