package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ScanRecord is a finished scan kept in local history.
type ScanRecord struct {
	ID          string      `json:"id"`
	ScannedAt   time.Time   `json:"scanned_at"`
	TextHash    string      `json:"text_hash"`
	Text        string      `json:"text"`
	Probability float64     `json:"probability"`
	Tier        Tier        `json:"-"`
	TierName    string      `json:"tier"`
	Result      *ScanResult `json:"result,omitempty"`
}

// Preview returns the first n runes of the text on one line.
func (r ScanRecord) Preview(n int) string {
	text := strings.Join(strings.Fields(r.Text), " ")
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	if n <= 3 {
		return string([]rune(text)[:n])
	}
	return string([]rune(text)[:n-3]) + "..."
}
