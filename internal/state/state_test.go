package state

import (
	"testing"

	"iconscrape/internal/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	cfg := &config.Config{Version: 1, General: config.General{DataRoot: t.TempDir(), OutputRoot: t.TempDir()}}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSearchHistory(t *testing.T) {
	db := openTestDB(t)
	if err := db.RecordSearch(SearchRow{SessionID: "s1", RawInput: "cat", Queries: []string{"cat"}, Results: 3, CreatedAt: 100}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := db.RecordSearch(SearchRow{SessionID: "s2", RawInput: "cat; dog;", Queries: []string{"cat", "dog", ""}, Results: 5, EmptyQueries: 1, CreatedAt: 200}); err != nil {
		t.Fatalf("record: %v", err)
	}
	rows, err := db.ListSearches(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].SessionID != "s2" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if got := rows[0].Queries; len(got) != 3 || got[1] != "dog" || got[2] != "" {
		t.Fatalf("queries round trip: %q", got)
	}
	limited, err := db.ListSearches(1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit: %v %v", limited, err)
	}
}

func TestExportHistory(t *testing.T) {
	db := openTestDB(t)
	if err := db.RecordExport(ExportRow{SessionID: "s1", Path: "/tmp/a.zip", Entries: 3, Skipped: 1, Bytes: 2048}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := db.RecordExport(ExportRow{SessionID: "s1", Status: ExportError, LastError: "disk full"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	rows, err := db.ListExports(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	var complete, failed int
	for _, r := range rows {
		switch r.Status {
		case ExportComplete:
			complete++
			if r.Entries != 3 || r.Bytes != 2048 {
				t.Fatalf("bad row: %+v", r)
			}
		case ExportError:
			failed++
			if r.LastError != "disk full" {
				t.Fatalf("bad error row: %+v", r)
			}
		}
	}
	if complete != 1 || failed != 1 {
		t.Fatalf("statuses: %+v", rows)
	}
	if err := db.CheckIntegrity(); err != nil {
		t.Fatalf("integrity: %v", err)
	}
}
