package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/dustin/go-humanize"

	"iconscrape/internal/batch"
)

func handleBatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	file := fs.String("file", "", "YAML jobs file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("--file is required")
	}
	c, err := loadConfig(*cfgPath, true)
	if err != nil {
		return err
	}
	bf, err := batch.Load(*file)
	if err != nil {
		return err
	}
	svc := newServices(c, newLogger(c, *logLevel, *jsonOut))
	defer svc.flushMetrics()
	db := svc.openState()
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	r := &batch.Runner{Cfg: c, Fetcher: svc.fetcher, Builder: svc.builder, DB: db, Metrics: svc.metrics, Log: svc.log}
	results, err := r.Run(ctx, bf)
	for i, res := range results {
		if res.Err != nil {
			fmt.Printf("job %d %q: failed: %v\n", i+1, res.Input, res.Err)
			continue
		}
		fmt.Printf("job %d %q: %s (%d icons, %d skipped, %s)\n", i+1, res.Input, res.Path, res.Entries, res.Skipped, humanize.Bytes(uint64(res.Bytes)))
	}
	return err
}
