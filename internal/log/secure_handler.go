package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// MaxTextLength is the number of runes kept from posting text attributes.
const MaxTextLength = 64

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"password":            true,
	"passwd":              true,
	"confirm_password":    true,
	"session":             true,
	"session_id":          true,
	"sessionid":           true,
	"remember_token":      true,
	"token":               true,
	"secret":              true,
	"secret_key":          true,
	"api_key":             true,
}

// sensitiveKeywords mask any key that contains them.
var sensitiveKeywords = []string{
	"password", "passwd", "cookie", "session", "token", "secret", "credential",
}

// textKeys hold posting text, which is shortened rather than masked.
var textKeys = map[string]bool{
	"text":    true,
	"posting": true,
	"input":   true,
}

// sensitivePatterns mask a value regardless of its key.
var sensitivePatterns = []*regexp.Regexp{
	// Signed cookie sessions (payload.timestamp.signature, optionally zlib-prefixed)
	regexp.MustCompile(`^\.?[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]{10,}$`),

	// Cookie headers carrying a session
	regexp.MustCompile(`(?i)(^|;\s*)(session|remember_token)=`),

	// Bearer and Basic credentials
	regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`),
}

// SecureHandler wraps an slog.Handler and masks sensitive attributes
// before passing records on.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it to the underlying handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

// WithAttrs returns a new handler with the given attributes masked and added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(clean)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		attrs := v.Group()
		clean := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			clean[i] = sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	key := strings.ToLower(a.Key)
	if isSensitiveKey(key) {
		return slog.String(a.Key, MaskValue)
	}

	if v.Kind() != slog.KindString {
		return slog.Attr{Key: a.Key, Value: v}
	}

	s := v.String()
	if isSensitiveValue(s) {
		return slog.String(a.Key, MaskValue)
	}
	if textKeys[key] {
		return slog.String(a.Key, shorten(s, MaxTextLength))
	}
	return slog.Attr{Key: a.Key, Value: v}
}

func isSensitiveKey(key string) bool {
	if sensitiveKeys[key] {
		return true
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// shorten cuts s to n runes and notes how many bytes were dropped.
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i, count := 0, 0
	for i = range s {
		if count == n {
			break
		}
		count++
	}
	return fmt.Sprintf("%s...(+%d bytes)", s[:i], len(s)-i)
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewSecureLogger creates a text logger that masks credentials.
// verbose selects Debug, otherwise Warn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewSecureHandler(h))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewSecureHandler(h))
}

// NewFileLogger opens path for appending, creating parent directories, and
// returns a secure logger writing to it. The caller closes the returned closer.
func NewFileLogger(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path comes from XDG state dir
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewSecureLogger(f, verbose), f, nil
}
