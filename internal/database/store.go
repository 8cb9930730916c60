package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jobguard/jobguard/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "jobguard.db"

// Store is the local SQLite store. It keeps the cached identity, the server
// session cookie and the scan history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the store in dbDir.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) createTables() error {
	schema := `
	-- The cached identity is a single row.
	CREATE TABLE IF NOT EXISTS identity (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		username TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- The server session cookie is a single row.
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		cookie TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		text_hash TEXT NOT NULL,
		text TEXT NOT NULL,
		probability REAL NOT NULL,
		tier TEXT NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);
	CREATE INDEX IF NOT EXISTS idx_scans_hash ON scans(text_hash);
	CREATE INDEX IF NOT EXISTS idx_scans_tier ON scans(tier);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// LoadIdentity returns the cached username, or "" when none is cached.
func (s *Store) LoadIdentity(ctx context.Context) (string, error) {
	var username string
	err := s.db.QueryRowContext(ctx, `SELECT username FROM identity WHERE id = 1`).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load identity: %w", err)
	}
	return username, nil
}

// SaveIdentity overwrites the cached username.
func (s *Store) SaveIdentity(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO identity (id, username, updated_at) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET username = excluded.username, updated_at = excluded.updated_at
	`, username, formatTimestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	return nil
}

// ClearIdentity removes the cached username.
func (s *Store) ClearIdentity(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM identity`); err != nil {
		return fmt.Errorf("failed to clear identity: %w", err)
	}
	return nil
}

// LoadSession returns the stored session cookie, or "".
func (s *Store) LoadSession(ctx context.Context) (string, error) {
	var cookie string
	err := s.db.QueryRowContext(ctx, `SELECT cookie FROM session WHERE id = 1`).Scan(&cookie)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return cookie, nil
}

// SaveSession stores the session cookie.
func (s *Store) SaveSession(ctx context.Context, cookie string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO session (id, cookie, updated_at) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET cookie = excluded.cookie, updated_at = excluded.updated_at
	`, cookie, formatTimestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ClearSession removes the session cookie.
func (s *Store) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// HashText fingerprints posting text. Surrounding whitespace is ignored.
func HashText(text string) string {
	sum := sha3.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// SaveScan records a finished scan. TextHash is filled in when empty.
func (s *Store) SaveScan(ctx context.Context, rec *model.ScanRecord) error {
	if rec.TextHash == "" {
		rec.TextHash = HashText(rec.Text)
	}
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = time.Now()
	}

	resultJSON := []byte("{}")
	if rec.Result != nil {
		var err error
		if resultJSON, err = json.Marshal(rec.Result); err != nil {
			return fmt.Errorf("failed to serialize result: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO scans (id, timestamp, text_hash, text, probability, tier, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, formatTimestamp(rec.ScannedAt), rec.TextHash, rec.Text, rec.Probability, rec.Tier.String(), string(resultJSON))
	if err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}
	return nil
}

const scanColumns = `id, timestamp, text_hash, text, probability, tier, result_json`

// GetScan returns the scan whose ID equals or starts with idPrefix.
func (s *Store) GetScan(ctx context.Context, idPrefix string) (*model.ScanRecord, error) {
	if idPrefix == "" {
		return nil, ErrScanNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+scanColumns+` FROM scans WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		idPrefix, escapeLike(idPrefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query scan: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	switch len(records) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrScanNotFound, idPrefix)
	case 1:
		return &records[0], nil
	default:
		for i := range records {
			if records[i].ID == idPrefix {
				return &records[i], nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousScanID, idPrefix)
	}
}

// ListScans returns up to limit scans, newest first. A non-positive limit
// returns every scan.
func (s *Store) ListScans(ctx context.Context, limit int) ([]model.ScanRecord, error) {
	query := `SELECT ` + scanColumns + ` FROM scans ORDER BY timestamp DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// FindScansByText returns earlier scans of the same text, newest first.
func (s *Store) FindScansByText(ctx context.Context, text string) ([]model.ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+scanColumns+` FROM scans WHERE text_hash = ? ORDER BY timestamp DESC`,
		HashText(text))
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// TierCounts returns the number of recorded scans per tier.
func (s *Store) TierCounts(ctx context.Context) (map[model.Tier]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tier, COUNT(*) FROM scans GROUP BY tier`)
	if err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Tier]int)
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if tier, ok := model.ParseTier(name); ok {
			counts[tier] += n
		}
	}
	return counts, rows.Err()
}

// ClearScans deletes all recorded scans and returns how many were removed.
func (s *Store) ClearScans(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear scans: %w", err)
	}
	return res.RowsAffected()
}

func scanRecords(rows *sql.Rows) ([]model.ScanRecord, error) {
	var records []model.ScanRecord
	for rows.Next() {
		var (
			rec        model.ScanRecord
			timestamp  string
			tier       string
			resultJSON string
		)
		if err := rows.Scan(&rec.ID, &timestamp, &rec.TextHash, &rec.Text, &rec.Probability, &tier, &resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec.ScannedAt = parseTimestamp(timestamp)
		rec.Tier, _ = model.ParseTier(tier)
		rec.TierName = rec.Tier.String()

		var result model.ScanResult
		if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
			return nil, fmt.Errorf("failed to parse result: %w", err)
		}
		rec.Result = &result

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return records, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// formatTimestamp stores times in UTC with a fixed width so they sort
// lexically.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

// timestampFormats lists the layouts parseTimestamp accepts, most specific
// first.
var timestampFormats = []string{
	"2006-01-02T15:04:05.000000000Z",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
