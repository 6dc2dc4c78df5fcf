package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"iconscrape/internal/archive"
	"iconscrape/internal/config"
	"iconscrape/internal/downloader"
	friendlyerrors "iconscrape/internal/errors"
	"iconscrape/internal/logging"
	"iconscrape/internal/metrics"
	"iconscrape/internal/scraper"
	"iconscrape/internal/state"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("no command provided")
	}
	downloader.Version = version

	cmd := args[0]
	switch cmd {
	case "search":
		return handleSearch(ctx, args[1:])
	case "tui":
		return handleTUI(ctx, args[1:])
	case "batch":
		return handleBatch(ctx, args[1:])
	case "history":
		return handleHistory(ctx, args[1:])
	case "config":
		return handleConfig(ctx, args[1:])
	case "doctor":
		return handleDoctor(ctx, args[1:])
	case "completion":
		return handleCompletion(ctx, args[1:])
	case "version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage() {
	fmt.Println(strings.TrimSpace(`iconscrape - search, pick and download icons as a zip

Usage:
  iconscrape <command> [flags]

Commands:
  search            Search one or more ';'-separated keywords and print icon URLs
  tui               Open the interactive icon browser
  batch             Run non-interactive exports from a YAML jobs file
  history           List recorded searches or exports
  config validate   Validate a YAML config file
  config print      Print the loaded config as JSON
  config wizard     Interactive TUI to generate a YAML config
  doctor            Check directories, history database and the search site
  completion        Generate shell completion scripts (bash|zsh|fish)
  version           Print version
  help              Show this help

Flags:
  --config PATH     Path to YAML config file (or ICONSCRAPE_CONFIG env var; default: ~/.config/iconscrape/config.yml)
  --log-level L     Log level: debug|info|warn|error (per command)
  --json            JSON log output (per command)
`))
}

// resolveConfigPath applies the flag, then ICONSCRAPE_CONFIG, then the
// default location.
func resolveConfigPath(p string) string {
	if p != "" {
		return p
	}
	if env := os.Getenv("ICONSCRAPE_CONFIG"); env != "" {
		return env
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, ".config", "iconscrape", "config.yml")
	}
	return ""
}

// loadConfig loads the config at path. With allowDefault a missing file
// yields config.Default().
func loadConfig(path string, allowDefault bool) (*config.Config, error) {
	path = resolveConfigPath(path)
	if path == "" {
		if allowDefault {
			return config.Default(), nil
		}
		return nil, errors.New("--config is required or set ICONSCRAPE_CONFIG")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && allowDefault {
			return config.Default(), nil
		}
		return nil, friendlyerrors.NewFriendlyError(
			fmt.Sprintf("Config file not found: %s", path),
			"Create one with: iconscrape config wizard --out "+path,
		)
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, friendlyerrors.NewFriendlyError("Failed to load config "+path, "Run: iconscrape config validate --config "+path).WithDetails(err)
	}
	return c, nil
}

// newLogger honours --log-level and --json, falling back to the logging
// section of the config when the flags were left at their defaults.
func newLogger(c *config.Config, level string, jsonOut bool) *logging.Logger {
	if level == "" {
		level = c.Logging.Level
	}
	return logging.New(level, jsonOut || c.JSONLogs())
}

// services are the long-lived components shared by the commands.
type services struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *metrics.Manager
	fetcher scraper.Fetcher
	builder *archive.Builder
}

func newServices(c *config.Config, log *logging.Logger) *services {
	m := metrics.New(c)
	scrapeClient := downloader.New(c, log, 30*time.Second, nil)
	var f scraper.Fetcher = scraper.NewFlaticon(c, scrapeClient, log)
	f = scraper.NewCached(c, f, log)
	return &services{
		cfg:     c,
		log:     log,
		metrics: m,
		fetcher: f,
		builder: archive.New(c, nil, log, m),
	}
}

// openState opens the history database. Failure is logged and tolerated:
// history is optional for every command except history itself.
func (s *services) openState() *state.DB {
	db, err := state.Open(s.cfg)
	if err != nil {
		s.log.Warnf("%v", friendlyerrors.DatabaseError(err))
		return nil
	}
	return db
}

func (s *services) flushMetrics() {
	if err := s.metrics.Write(); err != nil {
		s.log.Warnf("metrics: %v", err)
	}
}

func handleConfig(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("config subcommand required: validate | print | wizard")
	}
	sub := args[0]
	switch sub {
	case "validate":
		return configOp(args[1:], func(c *config.Config, log *logging.Logger) error {
			if err := c.ValidateWithFriendlyErrors(); err != nil {
				return err
			}
			log.Infof("config: valid")
			return nil
		})
	case "print":
		return configOp(args[1:], func(c *config.Config, log *logging.Logger) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		})
	case "wizard":
		return handleConfigWizard(ctx, args[1:])
	default:
		return fmt.Errorf("unknown config subcommand: %s", sub)
	}
}

func configOp(args []string, fn func(*config.Config, *logging.Logger) error) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := loadConfig(*cfgPath, false)
	if err != nil {
		return err
	}
	return fn(c, newLogger(c, *logLevel, *jsonOut))
}
