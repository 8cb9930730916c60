package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSecureHandler_SanitizesSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "password", key: "password", value: "hunter2!x", wantMask: true},
		{name: "Password uppercase", key: "Password", value: "hunter2!x", wantMask: true},
		{name: "confirm password", key: "confirm_password", value: "hunter2!x", wantMask: true},
		{name: "new_password contains keyword", key: "new_password", value: "abc", wantMask: true},
		{name: "cookie", key: "cookie", value: "theme=dark", wantMask: true},
		{name: "set-cookie", key: "Set-Cookie", value: "session=abc; Path=/", wantMask: true},
		{name: "session", key: "session", value: "abc", wantMask: true},
		{name: "session_cookie contains keyword", key: "session_cookie", value: "abc", wantMask: true},
		{name: "remember token", key: "remember_token", value: "Yoge|abc", wantMask: true},
		{name: "authorization", key: "authorization", value: "xyz", wantMask: true},
		{name: "username is visible", key: "username", value: "Yoge", wantMask: false},
		{name: "url is visible", key: "url", value: "http://127.0.0.1:5000/predict", wantMask: false},
		{name: "tier is visible", key: "tier", value: "high", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)
			logger.Info("test", tt.key, tt.value)

			output := buf.String()
			masked := strings.Contains(output, MaskValue)
			leaked := strings.Contains(output, tt.value)

			if tt.wantMask {
				if !masked || leaked {
					t.Errorf("expected %q to be masked, got: %s", tt.key, output)
				}
				return
			}
			if masked || !leaked {
				t.Errorf("expected %q to be visible, got: %s", tt.key, output)
			}
		})
	}
}

func TestSecureHandler_SanitizesSensitivePatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		wantMask bool
	}{
		{name: "signed session cookie", value: "eyJ1c2VybmFtZSI6IllvZ2UifQ.ZxYzAb.Qm9ndXNTaWduYXR1cmVfeHl6", wantMask: true},
		{name: "compressed signed session cookie", value: ".eJyrVkrNS8ksUbJSKi1OLVKqBQA.ZxYzAb.Qm9ndXNTaWduYXR1cmU", wantMask: true},
		{name: "cookie header with session", value: "theme=dark; session=abc123", wantMask: true},
		{name: "bearer token", value: "Bearer abc.def", wantMask: true},
		{name: "basic auth", value: "Basic dXNlcjpwYXNz", wantMask: true},
		{name: "plain status", value: "200 OK", wantMask: false},
		{name: "url", value: "http://127.0.0.1:5000/api/user_info", wantMask: false},
		{name: "hostname", value: "jobguard.example.com", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)
			logger.Info("test", "value", tt.value)

			masked := strings.Contains(buf.String(), MaskValue)
			if masked != tt.wantMask {
				t.Errorf("masked = %v, want %v; output: %s", masked, tt.wantMask, buf.String())
			}
		})
	}
}

func TestSecureHandler_ShortensPostingText(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("Earn $5000 a week from home! ", 10)

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true)
	logger.Info("scan", "text", long)

	output := buf.String()
	if strings.Contains(output, long) {
		t.Errorf("expected text to be shortened, got: %s", output)
	}
	if !strings.Contains(output, "...(+") {
		t.Errorf("expected truncation marker, got: %s", output)
	}

	buf.Reset()
	logger.Info("scan", "text", "short posting")
	if !strings.Contains(buf.String(), "short posting") {
		t.Errorf("expected short text intact, got: %s", buf.String())
	}
}

func TestShorten(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "within limit", in: "abc", n: 3, want: "abc"},
		{name: "ascii cut", in: "abcdef", n: 3, want: "abc...(+3 bytes)"},
		{name: "multibyte cut on rune boundary", in: "日本語です", n: 2, want: "日本...(+9 bytes)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := shorten(tt.in, tt.n); got != tt.want {
				t.Errorf("shorten(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestSecureHandler_LogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		verbose    bool
		logLevel   slog.Level
		shouldShow bool
	}{
		{name: "debug shown in verbose mode", verbose: true, logLevel: slog.LevelDebug, shouldShow: true},
		{name: "debug hidden in quiet mode", verbose: false, logLevel: slog.LevelDebug, shouldShow: false},
		{name: "info hidden in quiet mode", verbose: false, logLevel: slog.LevelInfo, shouldShow: false},
		{name: "warn shown in quiet mode", verbose: false, logLevel: slog.LevelWarn, shouldShow: true},
		{name: "error shown in quiet mode", verbose: false, logLevel: slog.LevelError, shouldShow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, tt.verbose)

			const msg = "jobguard_unique_message"
			logger.Log(t.Context(), tt.logLevel, msg)

			has := strings.Contains(buf.String(), msg)
			if has != tt.shouldShow {
				t.Errorf("shown = %v, want %v; output: %s", has, tt.shouldShow, buf.String())
			}
		})
	}
}

func TestSecureHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true).With("cookie", "session=abc123")
	logger.Info("request")

	if strings.Contains(buf.String(), "abc123") {
		t.Errorf("expected cookie masked in WithAttrs, got: %s", buf.String())
	}
}

func TestSecureHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true).WithGroup("auth")
	logger.Info("login", "username", "Yoge", "password", "s3cret!pw")

	output := buf.String()
	if !strings.Contains(output, "Yoge") {
		t.Errorf("expected username visible, got: %s", output)
	}
	if strings.Contains(output, "s3cret!pw") {
		t.Errorf("expected password masked, got: %s", output)
	}
}

func TestSecureHandler_NestedGroupAttr(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true)
	logger.Info("request", slog.Group("headers", slog.String("Cookie", "session=zzz"), slog.String("Accept", "application/json")))

	output := buf.String()
	if strings.Contains(output, "zzz") {
		t.Errorf("expected nested cookie masked, got: %s", output)
	}
	if !strings.Contains(output, "application/json") {
		t.Errorf("expected nested accept visible, got: %s", output)
	}
}

func TestNewSecureJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewSecureJSONLogger(&buf, true).Info("signup", "password", "hunter2!x")

	output := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("expected JSON output, got: %s", output)
	}
	if strings.Contains(output, "hunter2!x") {
		t.Errorf("expected password masked, got: %s", output)
	}
}

func TestNewSecureHandler_NilHandler(t *testing.T) {
	t.Parallel()

	h := NewSecureHandler(nil)
	if h.handler == nil {
		t.Error("expected default handler when nil is passed")
	}
}

func TestNewFileLogger(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "jobguard", "jobguard.log")
	logger, closer, err := NewFileLogger(path, false)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Warn("scan failed", "cookie", "session=abc")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "scan failed") {
		t.Errorf("expected message in log file, got: %s", data)
	}
	if strings.Contains(string(data), "session=abc") {
		t.Errorf("expected cookie masked in log file, got: %s", data)
	}
}
