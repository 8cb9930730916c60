package logstream

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

// Clipboard receives exported log text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}

// Copy exports the stream to the clipboard.
// It returns ErrNoLogData when there is nothing to copy.
func Copy(s *Stream, cb Clipboard, now time.Time) error {
	text, err := s.CopyText(now)
	if err != nil {
		return err
	}
	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard access denied: %w", err)
	}
	return nil
}
