// Package history persists scan results in a local sqlite database so
// repeated runs can be compared over time.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/koopa0/codescope/internal/analysis"
)

// DefaultLimit bounds RecentScans when the caller passes no limit.
const DefaultLimit = 20

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id         TEXT PRIMARY KEY,
	root       TEXT NOT NULL,
	files      INTEGER NOT NULL,
	lines      INTEGER NOT NULL,
	languages  TEXT NOT NULL,
	duration   INTEGER NOT NULL,
	started_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scans_started_at ON scans(started_at DESC);
`

// Scan is one recorded scan run.
type Scan struct {
	ID        string                            `json:"id"`
	Root      string                            `json:"root"`
	Files     int                               `json:"files"`
	Lines     int                               `json:"lines"`
	Languages map[string]analysis.LanguageCount `json:"languages"`
	Duration  time.Duration                     `json:"duration"`
	StartedAt time.Time                         `json:"started_at"`
}

// Store records and lists scans.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default history database location under the
// user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".codescope", "history.db"), nil
}

// Open opens (and creates if needed) the history database at path. The
// parent directory is created on demand. sqlite handles one writer at a
// time, so the pool is pinned to a single connection.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordScan persists one scan report and returns the stored record with
// its generated ID.
func (s *Store) RecordScan(ctx context.Context, r *analysis.Report) (*Scan, error) {
	languages, err := json.Marshal(r.Languages)
	if err != nil {
		return nil, fmt.Errorf("encoding languages: %w", err)
	}

	scan := &Scan{
		ID:        uuid.NewString(),
		Root:      r.Root,
		Files:     r.Files,
		Lines:     r.Lines,
		Languages: r.Languages,
		Duration:  r.Duration,
		StartedAt: r.StartedAt,
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO scans (id, root, files, lines, languages, duration, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		scan.ID, scan.Root, scan.Files, scan.Lines, string(languages), int64(scan.Duration), scan.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("recording scan: %w", err)
	}
	return scan, nil
}

// RecentScans returns up to limit scans, newest first. A non-positive
// limit selects DefaultLimit.
func (s *Store) RecentScans(ctx context.Context, limit int) ([]*Scan, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, root, files, lines, languages, duration, started_at FROM scans ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var scans []*Scan
	for rows.Next() {
		var (
			scan      Scan
			languages string
			duration  int64
		)
		if err := rows.Scan(&scan.ID, &scan.Root, &scan.Files, &scan.Lines, &languages, &duration, &scan.StartedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal([]byte(languages), &scan.Languages); err != nil {
			return nil, fmt.Errorf("decoding languages: %w", err)
		}
		scan.Duration = time.Duration(duration)
		scans = append(scans, &scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return scans, nil
}
