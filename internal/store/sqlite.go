// Package store keeps benchmark records of every run in a SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mwiater/redqueen/internal/fixture"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Filter narrows List. Empty fields match everything.
type Filter struct {
	RunID     string
	Tool      string
	Algorithm string
}

// Run summarizes one stored run.
type Run struct {
	ID        string
	Records   int
	StartedAt time.Time
}

// SQLiteStore persists records using SQLite
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and applies migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		benchmark_id TEXT NOT NULL,
		name TEXT,
		tool TEXT NOT NULL,
		tool_version TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		hardware TEXT,
		go_version TEXT NOT NULL,
		rounds INTEGER NOT NULL,
		stats TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE(run_id, benchmark_id)
	);
	CREATE INDEX IF NOT EXISTS idx_records_tool ON records(tool, algorithm);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save stores rec under runID, replacing an earlier copy of the same
// benchmark within that run.
func (s *SQLiteStore) Save(runID string, rec fixture.Export) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("save %s: empty run id", rec.ID)
	}
	stats, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("encode stats of %s: %w", rec.ID, err)
	}
	query := `INSERT OR REPLACE INTO records
		(run_id, benchmark_id, name, tool, tool_version, algorithm, hardware, go_version, rounds, stats, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.Exec(query,
		runID, rec.ID, nullString(rec.Name), rec.Tool, rec.ToolVersion, rec.Algorithm,
		nullString(rec.HardwareDescription), rec.GoVersion, len(rec.Stats.Timings), string(stats),
		s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", rec.ID, err)
	}
	return nil
}

// List returns the stored records matching f, oldest first.
func (s *SQLiteStore) List(f Filter) ([]fixture.Export, error) {
	var (
		where []string
		args  []any
	)
	if f.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.Tool != "" {
		where = append(where, "tool = ?")
		args = append(args, f.Tool)
	}
	if f.Algorithm != "" {
		where = append(where, "algorithm = ?")
		args = append(args, f.Algorithm)
	}
	query := `SELECT run_id, benchmark_id, name, tool, tool_version, algorithm, hardware, go_version, stats FROM records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []fixture.Export
	for rows.Next() {
		var (
			rec            fixture.Export
			name, hardware sql.NullString
			stats          string
		)
		if err := rows.Scan(&rec.RunID, &rec.ID, &name, &rec.Tool, &rec.ToolVersion, &rec.Algorithm, &hardware, &rec.GoVersion, &stats); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(stats), &rec.Stats); err != nil {
			return nil, fmt.Errorf("decode stats of %s: %w", rec.ID, err)
		}
		rec.Name = fromNull(name)
		rec.HardwareDescription = fromNull(hardware)
		results = append(results, rec)
	}
	return results, rows.Err()
}

// Runs lists every stored run, oldest first.
func (s *SQLiteStore) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT run_id, COUNT(*), MIN(created_at) FROM records GROUP BY run_id ORDER BY MIN(created_at), run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			started int64
		)
		if err := rows.Scan(&run.ID, &run.Records, &started); err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(0, started)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
