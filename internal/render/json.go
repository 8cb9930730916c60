package render

import (
	"encoding/json"
	"io"

	"github.com/jobguard/jobguard/internal/model"
)

// JSONWriter outputs reports as JSON for tool integration.
type JSONWriter struct {
	baseWriter
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indented output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *JSONWriter) Write(report *Report) (int, error) {
	return w.writeJSON(report)
}

// historyJSON is the JSON shape of a history listing.
type historyJSON struct {
	Scans  []model.ScanRecord `json:"scans"`
	Counts map[string]int     `json:"tier_counts"`
}

// WriteHistory implements Writer.
func (w *JSONWriter) WriteHistory(records []model.ScanRecord) (int, error) {
	counts := make(map[string]int)
	for tier, n := range TierCounts(records) {
		counts[tier.String()] = n
	}
	if records == nil {
		records = []model.ScanRecord{}
	}
	return w.writeJSON(historyJSON{Scans: records, Counts: counts})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent != "" {
		data, err = json.MarshalIndent(v, "", w.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
