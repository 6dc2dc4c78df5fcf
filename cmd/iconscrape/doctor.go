package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"iconscrape/internal/config"
	"iconscrape/internal/downloader"
	"iconscrape/internal/logging"
	"iconscrape/internal/scraper"
	"iconscrape/internal/state"
	"iconscrape/internal/system"
)

// Check represents a single diagnostic check
type Check struct {
	Name     string
	Run      func(ctx context.Context) CheckResult
	Critical bool // If true, failure means searches or downloads will not work
}

// CheckResult represents the result of a diagnostic check
type CheckResult struct {
	Passed     bool
	Warning    bool // Passed but with warnings
	Message    string
	Suggestion string
}

func handleDoctor(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	verbose := fs.Bool("verbose", false, "Show timing for each check")
	probe := fs.String("probe", "", "run a real search for this keyword and check that results parse")
	offline := fs.Bool("offline", false, "skip network checks")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := resolveConfigPath(*cfgPath)
	var cfg *config.Config
	var cfgErr error
	usingDefaults := false
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) {
		cfg = config.Default()
		usingDefaults = true
	} else {
		cfg, cfgErr = config.Load(path)
	}

	fmt.Println("Running iconscrape diagnostics...")
	fmt.Println()

	checks := []Check{
		{
			Name:     "Config",
			Critical: true,
			Run: func(ctx context.Context) CheckResult {
				if cfgErr != nil {
					return CheckResult{
						Message:    "Config parsing failed",
						Suggestion: fmt.Sprintf("Fix config errors:\n%v\n\nRun 'iconscrape config validate' for details", cfgErr),
					}
				}
				if usingDefaults {
					return CheckResult{
						Passed:     true,
						Warning:    true,
						Message:    fmt.Sprintf("No config at %s, using defaults", path),
						Suggestion: "Create one with: iconscrape config wizard --out " + path,
					}
				}
				return CheckResult{Passed: true, Message: fmt.Sprintf("Loaded: %s", path)}
			},
		},
		{
			Name:     "Output directory writable",
			Critical: true,
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return CheckResult{Message: "Config not loaded"}
				}
				return checkWritableDir(cfg.General.OutputRoot, "general.output_root")
			},
		},
		{
			Name:     "Data directory writable",
			Critical: true,
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return CheckResult{Message: "Config not loaded"}
				}
				return checkWritableDir(cfg.General.DataRoot, "general.data_root")
			},
		},
		{
			Name: "Disk space available",
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return CheckResult{Message: "Config not loaded"}
				}
				available, err := system.CheckAvailableSpace(cfg.General.OutputRoot)
				if err != nil {
					return CheckResult{Passed: true, Warning: true, Message: fmt.Sprintf("Could not check disk space: %v", err)}
				}
				if available < 50<<20 {
					return CheckResult{
						Passed:     true,
						Warning:    true,
						Message:    fmt.Sprintf("Low disk space: %s free", humanize.Bytes(available)),
						Suggestion: "Large selections may not fit; free up space or change general.output_root",
					}
				}
				return CheckResult{Passed: true, Message: fmt.Sprintf("%s available", humanize.Bytes(available))}
			},
		},
		{
			Name:     "History database",
			Critical: true,
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return CheckResult{Message: "Config not loaded"}
				}
				db, err := state.Open(cfg)
				if err != nil {
					return CheckResult{
						Message:    fmt.Sprintf("Cannot open database: %v", err),
						Suggestion: "Check that data_root is writable",
					}
				}
				defer func() { _ = db.Close() }()
				if err := db.CheckIntegrity(); err != nil {
					return CheckResult{
						Message:    err.Error(),
						Suggestion: "It only holds history. Move " + db.Path + " aside and run again",
					}
				}
				return CheckResult{Passed: true, Message: fmt.Sprintf("Database OK: %s", db.Path)}
			},
		},
		{
			Name: "Leftover partial archives",
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return CheckResult{Message: "Config not loaded"}
				}
				parts, _ := filepath.Glob(filepath.Join(cfg.General.OutputRoot, ".iconscrape-*.zip.part"))
				if len(parts) == 0 {
					return CheckResult{Passed: true, Message: "None"}
				}
				return CheckResult{
					Passed:     true,
					Warning:    true,
					Message:    fmt.Sprintf("Found %d interrupted archive(s)", len(parts)),
					Suggestion: "Safe to delete: rm " + filepath.Join(cfg.General.OutputRoot, ".iconscrape-*.zip.part"),
				}
			},
		},
	}

	if !*offline {
		checks = append(checks,
			Check{
				Name:     "Search site reachable",
				Critical: true,
				Run: func(ctx context.Context) CheckResult {
					if cfg == nil {
						return CheckResult{Message: "Config not loaded"}
					}
					if err := system.CheckHostReachable(ctx, cfg.Source.SearchURL); err != nil {
						return CheckResult{Message: "Network check failed", Suggestion: err.Error()}
					}
					msg := "Reachable"
					if proxies := system.DetectProxySettings(); len(proxies) > 0 {
						var names []string
						for k := range proxies {
							names = append(names, k)
						}
						msg += " (proxy env: " + strings.Join(names, ", ") + ")"
					}
					return CheckResult{Passed: true, Message: msg}
				},
			})
		if *probe != "" {
			checks = append(checks, Check{
				Name:     "Search results parse",
				Critical: true,
				Run: func(ctx context.Context) CheckResult {
					if cfg == nil {
						return CheckResult{Message: "Config not loaded"}
					}
					client := downloader.New(cfg, logging.Discard(), 30*time.Second, nil)
					urls, err := scraper.NewFlaticon(cfg, client, logging.Discard()).Search(ctx, *probe)
					if err != nil {
						return CheckResult{Message: fmt.Sprintf("Search for %q failed: %v", *probe, err)}
					}
					if len(urls) == 0 {
						return CheckResult{
							Message:    fmt.Sprintf("Search for %q returned a page without icons", *probe),
							Suggestion: "The page layout may have changed; check source.item_selector and source.image_attr",
						}
					}
					return CheckResult{Passed: true, Message: fmt.Sprintf("%d icons for %q", len(urls), *probe)}
				},
			})
		}
	}

	passedCount, failedCount, warningCount := 0, 0, 0
	for _, check := range checks {
		start := time.Now()
		result := check.Run(ctx)
		duration := time.Since(start)

		symbol := "✓"
		switch {
		case !result.Passed && check.Critical:
			symbol = "✗"
			failedCount++
		case !result.Passed || result.Warning:
			symbol = "⚠"
			warningCount++
			passedCount++
		default:
			passedCount++
		}

		fmt.Printf("%s %s", symbol, check.Name)
		if *verbose {
			fmt.Printf(" (%.2fs)", duration.Seconds())
		}
		fmt.Println()
		if result.Message != "" {
			fmt.Printf("  %s\n", result.Message)
		}
		if result.Suggestion != "" {
			for _, line := range strings.Split(result.Suggestion, "\n") {
				fmt.Printf("  → %s\n", line)
			}
		}
	}

	fmt.Printf("\nDiagnostic Summary:\n")
	fmt.Printf("  Total checks: %d\n", len(checks))
	fmt.Printf("  Passed:       %d\n", passedCount)
	fmt.Printf("  Warnings:     %d\n", warningCount)
	fmt.Printf("  Failed:       %d\n", failedCount)

	if failedCount > 0 {
		return fmt.Errorf("%d checks failed", failedCount)
	}
	return nil
}

// checkWritableDir creates dir when missing and verifies a file can be
// written in it.
func checkWritableDir(dir, field string) CheckResult {
	if dir == "" {
		return CheckResult{Message: field + " not set in config", Suggestion: "Add " + field + " to your config file"}
	}
	created := false
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return CheckResult{
				Message:    fmt.Sprintf("Directory doesn't exist and can't be created: %s", dir),
				Suggestion: fmt.Sprintf("Create manually: mkdir -p %s", dir),
			}
		}
		created = true
	case err != nil:
		return CheckResult{Message: fmt.Sprintf("Cannot access: %s", err), Suggestion: "Check file permissions"}
	case !info.IsDir():
		return CheckResult{Message: "Path exists but is not a directory", Suggestion: "Remove the file or choose a different " + field}
	}

	f, err := os.CreateTemp(dir, ".iconscrape-write-test-*")
	if err != nil {
		return CheckResult{
			Message:    "Directory is not writable",
			Suggestion: fmt.Sprintf("Fix permissions: chmod u+w %s", dir),
		}
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	if created {
		return CheckResult{Passed: true, Warning: true, Message: fmt.Sprintf("Created directory: %s", dir)}
	}
	return CheckResult{Passed: true, Message: fmt.Sprintf("Writable: %s", dir)}
}
