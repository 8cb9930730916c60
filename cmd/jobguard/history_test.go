package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jobguard/jobguard/internal/database"
)

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	srv, fs := newFakeServer(t)
	e := newEnv(t, srv)

	stdout, _, err := run(t, nil, e.args("scan", "--json", "--text", posting)...)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	var scanned struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal([]byte(stdout), &scanned); err != nil {
		t.Fatalf("invalid scan JSON: %v", err)
	}

	fs.mu.Lock()
	fs.probability = 10
	fs.mu.Unlock()
	if _, _, err := run(t, nil, e.args("scan", "--json", "--text", "Senior Go engineer, salary per company policy.")...); err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if _, _, err := run(t, nil, e.args("scan", "--json", "--no-history", "--text", posting)...); err != nil {
		t.Fatalf("unrecorded scan failed: %v", err)
	}

	t.Run("list", func(t *testing.T) {
		stdout, _, err := run(t, nil, e.args("history", "--json")...)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if n := strings.Count(stdout, `"text_hash"`); n != 2 {
			t.Errorf("listed %d scans, want 2:\n%s", n, stdout)
		}
	})

	t.Run("markdown summary", func(t *testing.T) {
		stdout, _, err := run(t, nil, e.args("history", "--markdown")...)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		for _, want := range []string{"# JobGuard Scan History", "Verdict Summary", "```mermaid", "CRITICAL THREAT"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in:\n%s", want, stdout)
			}
		}
	})

	t.Run("show by prefix", func(t *testing.T) {
		stdout, _, err := run(t, nil, e.args("history", "show", scanned.SessionID[:8], "--json")...)
		if err != nil {
			t.Fatalf("show failed: %v", err)
		}
		if !strings.Contains(stdout, scanned.SessionID) {
			t.Errorf("expected session %s in:\n%s", scanned.SessionID, stdout)
		}
	})

	t.Run("show unknown", func(t *testing.T) {
		_, _, err := run(t, nil, e.args("history", "show", "zzzz")...)
		if !errors.Is(err, database.ErrScanNotFound) {
			t.Errorf("expected ErrScanNotFound, got %v", err)
		}
	})

	t.Run("find", func(t *testing.T) {
		stdout, _, err := run(t, nil, e.args("history", "find", "--json", "--text", posting)...)
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if n := strings.Count(stdout, `"text_hash"`); n != 1 {
			t.Errorf("found %d scans, want 1:\n%s", n, stdout)
		}
	})

	t.Run("stats", func(t *testing.T) {
		stdout, _, err := run(t, nil, e.args("history", "stats")...)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if !strings.Contains(stdout, "TOTAL") || !strings.Contains(stdout, " 2\n") {
			t.Errorf("unexpected stats:\n%s", stdout)
		}
	})

	// Subtests above are sequential; clear runs last.
	t.Run("clear", func(t *testing.T) {
		stdout, _, err := run(t, nil, e.args("history", "clear", "--yes")...)
		if err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		if !strings.Contains(stdout, "Deleted 2 scans.") {
			t.Errorf("unexpected output %q", stdout)
		}
	})
}
