// Package state keeps a history of searches and exported archives in
// SQLite. It never stores the live session: selections and pages are
// rebuilt on every search.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/glebarez/sqlite"

	"iconscrape/internal/config"
)

type DB struct {
	SQL  *sql.DB
	Path string
}

func Open(cfg *config.Config) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if cfg.General.DataRoot == "" {
		return nil, errors.New("general.data_root required")
	}
	if err := os.MkdirAll(cfg.General.DataRoot, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(cfg.General.DataRoot, "state.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout=5000&_pragma=journal_mode(WAL)", path)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := initSchema(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return &DB{SQL: sqldb, Path: path}, nil
}

func (db *DB) Close() error {
	if db == nil || db.SQL == nil {
		return nil
	}
	return db.SQL.Close()
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			raw_input TEXT NOT NULL,
			queries TEXT NOT NULL,
			results INTEGER NOT NULL,
			empty_queries INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS exports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			path TEXT NOT NULL,
			entries INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			bytes INTEGER NOT NULL,
			status TEXT NOT NULL,
			last_error TEXT,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS exports_session ON exports(session_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// SearchRow is one submitted search.
type SearchRow struct {
	SessionID    string
	RawInput     string
	Queries      []string
	Results      int
	EmptyQueries int
	CreatedAt    int64
}

// queriesSep joins queries in the queries column; it is the same separator
// users type, so the column reads like the original input.
const queriesSep = ";"

func (db *DB) RecordSearch(row SearchRow) error {
	if db == nil || db.SQL == nil {
		return errors.New("nil db")
	}
	if row.CreatedAt == 0 {
		row.CreatedAt = time.Now().Unix()
	}
	_, err := db.SQL.Exec(`INSERT INTO searches(session_id, raw_input, queries, results, empty_queries, created_at) VALUES(?,?,?,?,?,?)`,
		row.SessionID, row.RawInput, strings.Join(row.Queries, queriesSep), row.Results, row.EmptyQueries, row.CreatedAt)
	return err
}

// ListSearches returns the most recent searches first. limit <= 0 means all.
func (db *DB) ListSearches(limit int) ([]SearchRow, error) {
	if db == nil || db.SQL == nil {
		return nil, errors.New("nil db")
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.SQL.Query(`SELECT session_id, raw_input, queries, results, empty_queries, created_at
		FROM searches ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []SearchRow
	for rows.Next() {
		var r SearchRow
		var queries string
		if err := rows.Scan(&r.SessionID, &r.RawInput, &queries, &r.Results, &r.EmptyQueries, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Queries = strings.Split(queries, queriesSep)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Export statuses.
const (
	ExportComplete = "complete"
	ExportError    = "error"
)

// ExportRow is one archive build.
type ExportRow struct {
	SessionID string
	Path      string
	Entries   int
	Skipped   int
	Bytes     int64
	Status    string
	LastError string
	CreatedAt int64
}

func (db *DB) RecordExport(row ExportRow) error {
	if db == nil || db.SQL == nil {
		return errors.New("nil db")
	}
	if row.CreatedAt == 0 {
		row.CreatedAt = time.Now().Unix()
	}
	if row.Status == "" {
		row.Status = ExportComplete
	}
	_, err := db.SQL.Exec(`INSERT INTO exports(session_id, path, entries, skipped, bytes, status, last_error, created_at) VALUES(?,?,?,?,?,?,?,?)`,
		row.SessionID, row.Path, row.Entries, row.Skipped, row.Bytes, row.Status, row.LastError, row.CreatedAt)
	return err
}

// ListExports returns the most recent exports first. limit <= 0 means all.
func (db *DB) ListExports(limit int) ([]ExportRow, error) {
	if db == nil || db.SQL == nil {
		return nil, errors.New("nil db")
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.SQL.Query(`SELECT session_id, path, entries, skipped, bytes, status, COALESCE(last_error, ''), created_at
		FROM exports ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []ExportRow
	for rows.Next() {
		var r ExportRow
		if err := rows.Scan(&r.SessionID, &r.Path, &r.Entries, &r.Skipped, &r.Bytes, &r.Status, &r.LastError, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CheckIntegrity runs SQLite's integrity check on the database.
func (db *DB) CheckIntegrity() error {
	if db == nil || db.SQL == nil {
		return fmt.Errorf("database not open")
	}
	var result string
	if err := db.SQL.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed to run: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database integrity check failed: %s", result)
	}
	return nil
}
