package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"iconscrape/internal/archive"
	"iconscrape/internal/session"
	"iconscrape/internal/state"
)

// pickFlag collects repeated --pick query=i,j values.
type pickFlag []pick

type pick struct {
	query   string
	indexes []int
}

func (p *pickFlag) String() string {
	parts := make([]string, 0, len(*p))
	for _, x := range *p {
		parts = append(parts, fmt.Sprintf("%s=%v", x.query, x.indexes))
	}
	return strings.Join(parts, " ")
}

func (p *pickFlag) Set(v string) error {
	i := strings.LastIndex(v, "=")
	if i < 0 {
		return fmt.Errorf("pick %q: want query=index[,index...]", v)
	}
	x := pick{query: strings.TrimSpace(v[:i])}
	for _, s := range strings.Split(v[i+1:], ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("pick %q: bad index %q", v, s)
		}
		x.indexes = append(x.indexes, n)
	}
	*p = append(*p, x)
	return nil
}

type searchOutput struct {
	Session string               `json:"session"`
	Queries []searchOutputQuery  `json:"queries"`
	Archive *searchOutputArchive `json:"archive,omitempty"`
}

type searchOutputQuery struct {
	Query string   `json:"query"`
	URLs  []string `json:"urls"`
}

type searchOutputArchive struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
	Skipped int    `json:"skipped"`
	Bytes   int64  `json:"bytes"`
}

func handleSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	q := fs.String("q", "", "keywords separated by ';' (e.g. \"cat; dog\")")
	format := fs.String("format", "text", "output format: text|json")
	out := fs.String("out", "", "archive directory when --pick is given (default: general.output_root)")
	var picks pickFlag
	fs.Var(&picks, "pick", "select items and download them: query=index[,index...] (repeatable, 0-based)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*q) == "" && fs.NArg() > 0 {
		*q = strings.Join(fs.Args(), " ")
	}
	if strings.TrimSpace(*q) == "" {
		return errors.New("--q is required")
	}
	if *format != "text" && *format != "json" {
		return fmt.Errorf("unknown format: %s", *format)
	}
	c, err := loadConfig(*cfgPath, true)
	if err != nil {
		return err
	}
	svc := newServices(c, newLogger(c, *logLevel, *jsonOut))
	defer svc.flushMetrics()
	db := svc.openState()
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	st := session.StartSearch(ctx, svc.fetcher, *q, session.Options{Workers: c.Concurrency.SearchWorkers, Log: svc.log})
	if err := ctx.Err(); err != nil {
		return err
	}
	empty := 0
	res := searchOutput{Session: st.ID}
	for _, query := range st.Queries() {
		items := st.Results(query)
		if len(items) == 0 {
			empty++
		}
		sq := searchOutputQuery{Query: query, URLs: []string{}}
		for _, it := range items {
			sq.URLs = append(sq.URLs, it.URL)
		}
		res.Queries = append(res.Queries, sq)
	}
	svc.metrics.IncSearches()
	svc.metrics.IncEmptyQueries(int64(empty))
	if db != nil {
		if err := db.RecordSearch(state.SearchRow{SessionID: st.ID, RawInput: *q, Queries: st.Queries(), Results: st.ResultCount(), EmptyQueries: empty}); err != nil {
			svc.log.Warnf("record search: %v", err)
		}
	}

	if len(picks) > 0 {
		for _, p := range picks {
			for _, i := range p.indexes {
				if _, err := st.RegisterClick(p.query, i); err != nil {
					svc.log.Warnf("pick %s=%d: %v", p.query, i, err)
				}
			}
		}
		if !st.AnySelected() {
			return archive.ErrNothingSelected
		}
		dir := *out
		if dir == "" {
			dir = c.General.OutputRoot
		}
		path, a, err := svc.builder.WriteFile(ctx, dir, c.ArchiveFileName(), st.Selections())
		row := state.ExportRow{SessionID: st.ID, Path: path, Status: state.ExportComplete}
		if err != nil {
			row.Status, row.LastError = state.ExportError, err.Error()
		} else {
			row.Entries, row.Skipped, row.Bytes = len(a.Entries), len(a.Skipped), a.Size()
			res.Archive = &searchOutputArchive{Path: path, Entries: row.Entries, Skipped: row.Skipped, Bytes: row.Bytes}
		}
		if db != nil {
			if rerr := db.RecordExport(row); rerr != nil {
				svc.log.Warnf("record export: %v", rerr)
			}
		}
		if err != nil {
			return err
		}
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printSearch(os.Stdout, res)
	return nil
}

func printSearch(w io.Writer, res searchOutput) {
	for _, q := range res.Queries {
		name := q.Query
		if name == "" {
			name = "(empty query)"
		}
		fmt.Fprintf(w, "%s (%d)\n", name, len(q.URLs))
		if len(q.URLs) == 0 {
			fmt.Fprintln(w, "  no results")
		}
		for i, u := range q.URLs {
			fmt.Fprintf(w, "  [%d] %s\n", i, u)
		}
	}
	if a := res.Archive; a != nil {
		fmt.Fprintf(w, "saved %s: %d icons, %s", a.Path, a.Entries, humanize.Bytes(uint64(a.Bytes)))
		if a.Skipped > 0 {
			fmt.Fprintf(w, ", %d skipped", a.Skipped)
		}
		fmt.Fprintln(w)
	}
}
