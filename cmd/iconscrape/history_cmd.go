package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	friendlyerrors "iconscrape/internal/errors"
	"iconscrape/internal/state"
)

func handleHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	exports := fs.Bool("exports", false, "list exported archives instead of searches")
	limit := fs.Int("limit", 20, "maximum rows (0 for all)")
	jsonOut := fs.Bool("json", false, "print rows as JSON")
	check := fs.Bool("check", false, "run a database integrity check first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := loadConfig(*cfgPath, true)
	if err != nil {
		return err
	}
	db, err := state.Open(c)
	if err != nil {
		return friendlyerrors.DatabaseError(err)
	}
	defer func() { _ = db.Close() }()
	if *check {
		if err := db.CheckIntegrity(); err != nil {
			return friendlyerrors.DatabaseError(err)
		}
	}

	if *exports {
		rows, err := db.ListExports(*limit)
		if err != nil {
			return err
		}
		if *jsonOut {
			return writeJSON(os.Stdout, rows)
		}
		printExports(os.Stdout, rows)
		return nil
	}
	rows, err := db.ListSearches(*limit)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, rows)
	}
	printSearches(os.Stdout, rows)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSearches(w io.Writer, rows []state.SearchRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "no searches recorded")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-14s  %3d icons  %2d queries", humanize.Time(time.Unix(r.CreatedAt, 0)), r.Results, len(r.Queries))
		if r.EmptyQueries > 0 {
			fmt.Fprintf(w, " (%d empty)", r.EmptyQueries)
		}
		fmt.Fprintf(w, "  %s\n", strings.TrimSpace(r.RawInput))
	}
}

func printExports(w io.Writer, rows []state.ExportRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "no exports recorded")
		return
	}
	for _, r := range rows {
		when := humanize.Time(time.Unix(r.CreatedAt, 0))
		if r.Status != state.ExportComplete {
			fmt.Fprintf(w, "%-14s  %-8s  %s\n", when, r.Status, r.LastError)
			continue
		}
		fmt.Fprintf(w, "%-14s  %-8s  %3d icons  %8s  %s", when, r.Status, r.Entries, humanize.Bytes(uint64(r.Bytes)), r.Path)
		if r.Skipped > 0 {
			fmt.Fprintf(w, " (%d skipped)", r.Skipped)
		}
		fmt.Fprintln(w)
	}
}
