// Package history keeps a SQLite log of build reports so past builds can be
// listed and inspected.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
)

// ErrNotFound is returned when no build with the requested ID was recorded.
var ErrNotFound = errors.New("build not found")

// Entry is the summary row of one recorded build.
type Entry struct {
	BuildID     string
	Start       time.Time
	Duration    time.Duration
	Outcome     build.Outcome
	FailedStage build.StageName
	Pages       int
	FilesCopied int
	Revision    string
}

// Store persists build reports.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the history database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared across queries and
	// serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL UNIQUE,
		start_ns INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		failed_stage TEXT,
		pages INTEGER NOT NULL,
		files_copied INTEGER NOT NULL,
		revision TEXT,
		report BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_start ON builds(start_ns);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a finished build report.
func (s *Store) Record(ctx context.Context, r *build.Report) error {
	if r == nil {
		return errors.New("nil report")
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, start_ns, duration_ms, outcome, failed_stage, pages, files_copied, revision, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BuildID, r.Start.UnixNano(), r.Duration().Milliseconds(), string(r.Outcome), string(r.FailedStage),
		r.PagesRendered(), r.FilesCopied, r.Revision, payload,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, start_ns, duration_ms, outcome, failed_stage, pages, files_copied, revision
		FROM builds ORDER BY start_ns DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e                Entry
			startNS, durMS   int64
			outcome          string
			failed, revision sql.NullString
		)
		if err := rows.Scan(&e.BuildID, &startNS, &durMS, &outcome, &failed, &e.Pages, &e.FilesCopied, &revision); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		e.Start = time.Unix(0, startNS)
		e.Duration = time.Duration(durMS) * time.Millisecond
		e.Outcome = build.Outcome(outcome)
		e.FailedStage = build.StageName(failed.String)
		e.Revision = revision.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return entries, nil
}

// Report returns the full stored report of a build.
func (s *Store) Report(ctx context.Context, buildID string) (*build.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT report FROM builds WHERE build_id = ?", buildID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query build: %w", err)
	}
	var r build.Report
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
