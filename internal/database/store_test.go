package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jobguard/jobguard/internal/model"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if s.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", s.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Fatalf("Open() error = %v, want ErrDatabaseNotFound", err)
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if err := s.SaveIdentity(context.Background(), "alice"); err != nil {
			t.Fatalf("SaveIdentity() error = %v", err)
		}
		_ = s.Close()

		s, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer s.Close()

		got, err := s.LoadIdentity(context.Background())
		if err != nil || got != "alice" {
			t.Errorf("LoadIdentity() = %q, %v, want alice", got, err)
		}
	})
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	got, err := s.LoadIdentity(ctx)
	if err != nil || got != "" {
		t.Fatalf("LoadIdentity() on empty store = %q, %v", got, err)
	}

	for _, name := range []string{"alice", "bob"} {
		if err := s.SaveIdentity(ctx, name); err != nil {
			t.Fatalf("SaveIdentity(%q) error = %v", name, err)
		}
	}
	if got, _ := s.LoadIdentity(ctx); got != "bob" { //nolint:errcheck
		t.Errorf("LoadIdentity() = %q, want last write bob", got)
	}

	if err := s.ClearIdentity(ctx); err != nil {
		t.Fatalf("ClearIdentity() error = %v", err)
	}
	if got, _ := s.LoadIdentity(ctx); got != "" { //nolint:errcheck
		t.Errorf("LoadIdentity() after clear = %q", got)
	}
	if err := s.ClearIdentity(ctx); err != nil {
		t.Errorf("ClearIdentity() twice error = %v", err)
	}
}

func TestSession(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveSession(ctx, "session=abc"); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := s.SaveSession(ctx, "session=def"); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if got, _ := s.LoadSession(ctx); got != "session=def" { //nolint:errcheck
		t.Errorf("LoadSession() = %q", got)
	}
	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	if got, _ := s.LoadSession(ctx); got != "" { //nolint:errcheck
		t.Errorf("LoadSession() after clear = %q", got)
	}
}

func TestScans(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	records := []*model.ScanRecord{
		{
			ID:          "aaaa1111-0000",
			ScannedAt:   base,
			Text:        "Backend Go engineer, remote",
			Probability: 12,
			Tier:        model.TierClean,
			Result:      &model.ScanResult{FraudProbability: ptr(12.0)},
		},
		{
			ID:          "aaaa2222-0000",
			ScannedAt:   base.Add(time.Minute),
			Text:        "Pay a $50 kit fee to start",
			Probability: 91,
			Tier:        model.TierCritical,
			Result:      &model.ScanResult{FraudProbability: ptr(91.0), Reasons: []string{"**fee**"}},
		},
		{
			ID:          "bbbb3333-0000",
			ScannedAt:   base.Add(2 * time.Minute),
			Text:        "  Backend Go engineer, remote \n",
			Probability: 14,
			Tier:        model.TierClean,
		},
	}
	for _, r := range records {
		if err := s.SaveScan(ctx, r); err != nil {
			t.Fatalf("SaveScan(%s) error = %v", r.ID, err)
		}
	}

	t.Run("list newest first", func(t *testing.T) {
		got, err := s.ListScans(ctx, 0)
		if err != nil {
			t.Fatalf("ListScans() error = %v", err)
		}
		if len(got) != 3 || got[0].ID != "bbbb3333-0000" || got[2].ID != "aaaa1111-0000" {
			t.Fatalf("ListScans() order = %v", ids(got))
		}
		if !got[2].ScannedAt.Equal(base) {
			t.Errorf("ScannedAt = %v, want %v", got[2].ScannedAt, base)
		}
		if got[1].Tier != model.TierCritical || got[1].Result == nil || len(got[1].Result.Reasons) != 1 {
			t.Errorf("record not round-tripped: %+v", got[1])
		}
	})

	t.Run("list with limit", func(t *testing.T) {
		got, err := s.ListScans(ctx, 2)
		if err != nil || len(got) != 2 {
			t.Fatalf("ListScans(2) = %v, %v", ids(got), err)
		}
	})

	t.Run("get by prefix", func(t *testing.T) {
		got, err := s.GetScan(ctx, "bbbb")
		if err != nil || got.ID != "bbbb3333-0000" {
			t.Fatalf("GetScan(bbbb) = %+v, %v", got, err)
		}
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		if _, err := s.GetScan(ctx, "aaaa"); !errors.Is(err, ErrAmbiguousScanID) {
			t.Errorf("GetScan(aaaa) error = %v, want ErrAmbiguousScanID", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := s.GetScan(ctx, "zzzz"); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("GetScan(zzzz) error = %v, want ErrScanNotFound", err)
		}
		if _, err := s.GetScan(ctx, "%"); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("GetScan(%%) error = %v, want ErrScanNotFound", err)
		}
	})

	t.Run("find by text ignores surrounding whitespace", func(t *testing.T) {
		got, err := s.FindScansByText(ctx, "Backend Go engineer, remote")
		if err != nil {
			t.Fatalf("FindScansByText() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("FindScansByText() = %v, want 2 matches", ids(got))
		}
	})

	t.Run("tier counts", func(t *testing.T) {
		counts, err := s.TierCounts(ctx)
		if err != nil {
			t.Fatalf("TierCounts() error = %v", err)
		}
		if counts[model.TierClean] != 2 || counts[model.TierCritical] != 1 {
			t.Errorf("TierCounts() = %v", counts)
		}
	})
}

func TestClearScans(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := s.SaveScan(ctx, &model.ScanRecord{ID: id, Text: id, Tier: model.TierModerate}); err != nil {
			t.Fatalf("SaveScan() error = %v", err)
		}
	}

	n, err := s.ClearScans(ctx)
	if err != nil || n != 2 {
		t.Fatalf("ClearScans() = %d, %v, want 2", n, err)
	}
	if got, _ := s.ListScans(ctx, 0); len(got) != 0 { //nolint:errcheck
		t.Errorf("ListScans() after clear = %v", ids(got))
	}
}

func TestConcurrentIdentityWrites(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = s.SaveIdentity(ctx, "alice")
			} else {
				_ = s.ClearIdentity(ctx)
			}
		}()
	}
	wg.Wait()

	got, err := s.LoadIdentity(ctx)
	if err != nil {
		t.Fatalf("LoadIdentity() error = %v", err)
	}
	if got != "" && got != "alice" {
		t.Errorf("LoadIdentity() = %q, want empty or alice", got)
	}
}

func TestHashText(t *testing.T) {
	t.Parallel()

	a := HashText("job offer")
	if a != HashText("  job offer\n") {
		t.Error("HashText should ignore surrounding whitespace")
	}
	if a == HashText("job offers") {
		t.Error("HashText collision for different text")
	}
	if len(a) != 64 {
		t.Errorf("len(HashText()) = %d, want 64", len(a))
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []string{
		formatTimestamp(want),
		"2026-01-02T03:04:05Z",
		"2026-01-02 03:04:05",
	}
	for _, in := range tests {
		if got := parseTimestamp(in); !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}
	if got := parseTimestamp("not a time"); !got.IsZero() {
		t.Errorf("parseTimestamp(garbage) = %v, want zero", got)
	}
}

func ids(records []model.ScanRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
