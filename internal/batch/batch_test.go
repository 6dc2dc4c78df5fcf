package batch

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"iconscrape/internal/archive"
	"iconscrape/internal/config"
	"iconscrape/internal/downloader"
	"iconscrape/internal/logging"
	"iconscrape/internal/scraper"
	"iconscrape/internal/state"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "jobs.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	f, err := Load(writeFile(t, "version: 1\njobs:\n  - input: \"cat; dog\"\n    select:\n      dog: [2, 0]\n    output: out.zip\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(f.Jobs) != 1 || f.Jobs[0].Input != "cat; dog" {
		t.Fatalf("jobs: %+v", f.Jobs)
	}
	if got := f.Jobs[0].Select["dog"]; len(got) != 2 || got[0] != 2 {
		t.Fatalf("select: %v", got)
	}

	bad := []string{
		"version: 2\njobs:\n  - input: cat\n",
		"version: 1\njobs: []\n",
		"version: 1\njobs:\n  - input: \"  \"\n",
	}
	for _, b := range bad {
		if _, err := Load(writeFile(t, b)); err == nil {
			t.Errorf("expected error for %q", b)
		}
	}
}

func newRunner(t *testing.T) (*Runner, *state.DB) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("png:" + r.URL.Path))
	}))
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.General.DataRoot = t.TempDir()
	cfg.General.OutputRoot = t.TempDir()
	db, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	fetch := scraper.FetchFunc(func(_ context.Context, q string) []string {
		if q == "" {
			return nil
		}
		return []string{ts.URL + "/" + q + "0", ts.URL + "/" + q + "1", ts.URL + "/" + q + "2"}
	})
	client := downloader.NewWithHTTP(ts.Client(), "test", logging.Discard(), nil)
	return &Runner{
		Cfg:     cfg,
		Fetcher: fetch,
		Builder: archive.New(cfg, client, logging.Discard(), nil),
		DB:      db,
		Log:     logging.Discard(),
	}, db
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestRunWritesArchive(t *testing.T) {
	r, db := newRunner(t)
	out := filepath.Join(t.TempDir(), "icons.zip")
	f := &File{Version: 1, Jobs: []Job{{
		Input:  "cat;dog",
		Select: map[string][]int{"cat": {1}, "dog": {2, 0, 7}, "bird": {0}},
		Output: out,
	}}}
	res, err := r.Run(context.Background(), f)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res) != 1 || res[0].Path != out {
		t.Fatalf("results: %+v", res)
	}
	if res[0].Invalid != 2 {
		t.Fatalf("invalid clicks = %d, want 2", res[0].Invalid)
	}
	got := strings.Join(zipNames(t, out), ",")
	if got != "cat.png,dog_1.png,dog_2.png" {
		t.Fatalf("entries = %s", got)
	}

	exports, err := db.ListExports(0)
	if err != nil || len(exports) != 1 || exports[0].Entries != 3 {
		t.Fatalf("exports: %+v %v", exports, err)
	}
	searches, err := db.ListSearches(0)
	if err != nil || len(searches) != 1 || searches[0].Results != 6 {
		t.Fatalf("searches: %+v %v", searches, err)
	}
}

func TestRunSelectAllDefaultOutput(t *testing.T) {
	r, _ := newRunner(t)
	f := &File{Version: 1, Jobs: []Job{{Input: "cat", SelectAll: true}}}
	res, err := r.Run(context.Background(), f)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := filepath.Join(r.Cfg.General.OutputRoot, config.DefaultArchiveName)
	if res[0].Path != want {
		t.Fatalf("path = %s, want %s", res[0].Path, want)
	}
	names := zipNames(t, want)
	sort.Strings(names)
	if strings.Join(names, ",") != "cat_1.png,cat_2.png,cat_3.png" {
		t.Fatalf("entries = %v", names)
	}
}

func TestRunNothingSelected(t *testing.T) {
	r, db := newRunner(t)
	f := &File{Version: 1, Jobs: []Job{
		{Input: "cat", Select: map[string][]int{"cat": {9}}},
		{Input: "dog", Select: map[string][]int{"dog": {0}}, Output: t.TempDir() + "/"},
	}}
	res, err := r.Run(context.Background(), f)
	if err == nil {
		t.Fatal("expected joined error for the first job")
	}
	if len(res) != 2 || res[0].Err != archive.ErrNothingSelected || res[1].Err != nil {
		t.Fatalf("results: %+v", res)
	}
	if filepath.Base(res[1].Path) != config.DefaultArchiveName {
		t.Fatalf("directory output: %s", res[1].Path)
	}
	exports, _ := db.ListExports(0)
	statuses := map[string]int{}
	for _, e := range exports {
		statuses[e.Status]++
	}
	if statuses[state.ExportError] != 1 || statuses[state.ExportComplete] != 1 {
		t.Fatalf("export statuses: %v", statuses)
	}
}
