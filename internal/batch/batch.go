// Package batch runs non-interactive exports described in a YAML file.
// A job searches like the interactive flow does, clicks the listed items
// once each and writes the resulting archive.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"iconscrape/internal/archive"
	"iconscrape/internal/config"
	"iconscrape/internal/logging"
	"iconscrape/internal/metrics"
	"iconscrape/internal/scraper"
	"iconscrape/internal/session"
	"iconscrape/internal/state"
)

type File struct {
	Version int   `yaml:"version"`
	Jobs    []Job `yaml:"jobs"`
}

type Job struct {
	// Input is the raw search text, e.g. "cat; dog".
	Input string `yaml:"input"`
	// Select maps a query to the result indexes to click, in click order.
	Select map[string][]int `yaml:"select"`
	// SelectAll clicks every result of every query once.
	SelectAll bool `yaml:"select_all"`
	// Output is the archive path. Empty means general.output_root plus the
	// configured archive name; a trailing separator names a directory.
	Output string `yaml:"output"`
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported batch version: %d", f.Version)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("batch has no jobs")
	}
	for i, j := range f.Jobs {
		if strings.TrimSpace(j.Input) == "" {
			return nil, fmt.Errorf("job %d: input is required", i+1)
		}
	}
	return &f, nil
}

// Result reports one job. Err is set when the job produced no archive.
type Result struct {
	Input   string
	Session string
	Path    string
	Entries int
	Skipped int
	Bytes   int64
	Invalid int
	Err     error
}

// Runner executes jobs. DB and Metrics may be nil.
type Runner struct {
	Cfg     *config.Config
	Fetcher scraper.Fetcher
	Builder *archive.Builder
	DB      *state.DB
	Metrics *metrics.Manager
	Log     *logging.Logger
}

// Run executes every job in order. A failing job does not stop the rest;
// the returned error joins the per-job failures.
func (r *Runner) Run(ctx context.Context, f *File) ([]Result, error) {
	var out []Result
	var errs []error
	for i, j := range f.Jobs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res := r.runJob(ctx, j)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("job %d (%s): %w", i+1, j.Input, res.Err))
		}
		out = append(out, res)
	}
	return out, errors.Join(errs...)
}

func (r *Runner) runJob(ctx context.Context, j Job) Result {
	log := r.Log.Named("batch")
	res := Result{Input: j.Input}

	st := session.StartSearch(ctx, r.Fetcher, j.Input, session.Options{Workers: r.Cfg.Concurrency.SearchWorkers, Log: r.Log})
	res.Session = st.ID
	empty := 0
	for _, q := range st.Queries() {
		if len(st.Results(q)) == 0 {
			empty++
		}
	}
	r.Metrics.IncSearches()
	r.Metrics.IncEmptyQueries(int64(empty))
	if r.DB != nil {
		if err := r.DB.RecordSearch(state.SearchRow{SessionID: st.ID, RawInput: j.Input, Queries: st.Queries(), Results: st.ResultCount(), EmptyQueries: empty}); err != nil {
			log.Warnf("record search: %v", err)
		}
	}

	res.Invalid = applySelection(st, j, log)
	if !st.AnySelected() {
		res.Err = archive.ErrNothingSelected
		r.recordExport(res, log)
		return res
	}

	dir, name := r.outputPath(j.Output)
	path, a, err := r.Builder.WriteFile(ctx, dir, name, st.Selections())
	if err != nil {
		res.Err = err
		r.recordExport(res, log)
		return res
	}
	res.Path = path
	res.Entries = len(a.Entries)
	res.Skipped = len(a.Skipped)
	res.Bytes = a.Size()
	r.recordExport(res, log)
	log.Infof("wrote %s (%d entries, %d skipped)", path, res.Entries, res.Skipped)
	return res
}

// applySelection clicks the job's items and returns how many clicks were
// rejected. Queries are visited in search order so download lists follow
// the order the indexes are listed in.
func applySelection(st *session.State, j Job, log *logging.Logger) int {
	invalid := 0
	seen := map[string]bool{}
	for _, q := range st.Queries() {
		if seen[q] {
			continue
		}
		seen[q] = true
		var idx []int
		if j.SelectAll {
			for _, it := range st.Results(q) {
				idx = append(idx, it.Index)
			}
		} else {
			idx = j.Select[q]
		}
		for _, i := range idx {
			if _, err := st.RegisterClick(q, i); err != nil {
				invalid++
				log.Warnf("skip %s[%d]: %v", q, i, err)
			}
		}
	}
	for q, idx := range j.Select {
		if !seen[q] {
			invalid += len(idx)
			log.Warnf("select names unknown query %q", q)
		}
	}
	return invalid
}

func (r *Runner) outputPath(out string) (dir, name string) {
	out = strings.TrimSpace(out)
	switch {
	case out == "":
		return r.Cfg.General.OutputRoot, r.Cfg.ArchiveFileName()
	case strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(filepath.Separator)):
		return filepath.Clean(out), r.Cfg.ArchiveFileName()
	}
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return out, r.Cfg.ArchiveFileName()
	}
	return filepath.Dir(out), filepath.Base(out)
}

func (r *Runner) recordExport(res Result, log *logging.Logger) {
	if r.DB == nil {
		return
	}
	row := state.ExportRow{SessionID: res.Session, Path: res.Path, Entries: res.Entries, Skipped: res.Skipped, Bytes: res.Bytes, Status: state.ExportComplete}
	if res.Err != nil {
		row.Status = state.ExportError
		row.LastError = res.Err.Error()
	}
	if err := r.DB.RecordExport(row); err != nil {
		log.Warnf("record export: %v", err)
	}
}
