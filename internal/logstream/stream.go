package logstream

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jobguard/jobguard/internal/model"
)

// Banner is the first line of every clipboard export.
const Banner = "--- JOBGUARD SYSTEM LOGS ---"

// rule closes the export header.
const rule = "----------------------------"

// timestampLayout is used for the TIMESTAMP line of an export.
const timestampLayout = "2006-01-02 15:04:05 MST"

// ErrNoLogData is returned when exporting an empty stream.
var ErrNoLogData = errors.New("no log data found")

// tagRules is checked in order; the first match wins.
var tagRules = []struct {
	tags     []string
	severity model.LogSeverity
}{
	{[]string{"[ERROR]", "BLOCK"}, model.LogCritical},
	{[]string{"[WARN]"}, model.LogWarning},
	{[]string{"[SUCCESS]", "[INIT]"}, model.LogSuccess},
	{[]string{"[AI]"}, model.LogInfo},
}

// Classify returns the display severity of a single log line.
func Classify(line string) model.LogSeverity {
	for _, rule := range tagRules {
		for _, tag := range rule.tags {
			if strings.Contains(line, tag) {
				return rule.severity
			}
		}
	}
	return model.LogDefault
}

// Entries maps raw lines to entries, preserving their order.
func Entries(lines []string) []model.LogEntry {
	entries := make([]model.LogEntry, len(lines))
	for i, line := range lines {
		entries[i] = model.LogEntry{Text: line, Severity: Classify(line)}
	}
	return entries
}

// Stream holds the currently displayed log entries.
// It is safe for concurrent use; the reconciler and the scan controller
// may both write to it and the last write wins.
type Stream struct {
	mu      sync.RWMutex
	entries []model.LogEntry
	version uint64
}

// NewStream creates an empty stream.
func NewStream() *Stream {
	return &Stream{}
}

// Replace discards the current entries and shows lines in the given order.
func (s *Stream) Replace(lines []string) {
	entries := Entries(lines)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.version++
}

// Entries returns a copy of the current entries.
func (s *Stream) Entries() []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries currently shown.
func (s *Stream) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Version increases on every Replace. Views use it to skip redraws.
func (s *Stream) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// CopyText builds the clipboard export: banner, timestamp, rule, then one
// line per entry in display order.
func (s *Stream) CopyText(now time.Time) (string, error) {
	entries := s.Entries()
	if len(entries) == 0 {
		return "", ErrNoLogData
	}

	var sb strings.Builder
	sb.WriteString(Banner)
	sb.WriteString("\n")
	sb.WriteString("TIMESTAMP: ")
	sb.WriteString(now.Format(timestampLayout))
	sb.WriteString("\n")
	sb.WriteString(rule)
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString(e.Text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
