package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"iconscrape/internal/config"
	friendlyerrors "iconscrape/internal/errors"
	"iconscrape/internal/lockfile"
	"iconscrape/internal/logging"
	"iconscrape/internal/session"
	ui "iconscrape/internal/tui"
)

func handleTUI(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	logFile := fs.String("log-file", "", "write logs here instead of discarding them (default: data_root/tui.log when --log-level is set)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := loadConfig(*cfgPath, true)
	if err != nil {
		return err
	}

	if err := config.EnsureDir(c.General.DataRoot, 0o755); err != nil {
		return friendlyerrors.PathError(c.General.DataRoot, err)
	}
	lock, err := lockfile.ForDataRoot(c.General.DataRoot)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if *logFile == "" && *logLevel != "" {
		*logFile = filepath.Join(c.General.DataRoot, "tui.log")
	}
	if *logFile != "" {
		if err := os.MkdirAll(filepath.Dir(*logFile), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	level := *logLevel
	if level == "" {
		level = c.Logging.Level
	}
	log := logging.NewWriter(out, level, *jsonOut || c.JSONLogs())

	svc := newServices(c, log)
	defer svc.flushMetrics()
	db := svc.openState()
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	m := ui.New(c, ui.Deps{
		Session: session.New(svc.fetcher, session.Options{Workers: c.Concurrency.SearchWorkers, Log: log}),
		Builder: svc.builder,
		DB:      db,
		Metrics: svc.metrics,
		Log:     log,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
