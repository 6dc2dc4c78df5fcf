package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultArchiveName is the file name handed to the user when no
// general.archive_name is configured.
const DefaultArchiveName = "flaticon-scraper.zip"

// Config mirrors the YAML schema. Minimal validation occurs in Validate().
type Config struct {
	Version     int         `yaml:"version"`
	General     General     `yaml:"general"`
	Network     Network     `yaml:"network"`
	Source      Source      `yaml:"source"`
	Concurrency Concurrency `yaml:"concurrency"`
	Logging     Logging     `yaml:"logging"`
	Metrics     Metrics     `yaml:"metrics"`
	UI          UIOptions   `yaml:"ui"`
}

type General struct {
	DataRoot    string `yaml:"data_root"`    // state.db and the scrape cache live here
	OutputRoot  string `yaml:"output_root"`  // archives are written here
	ArchiveName string `yaml:"archive_name"` // default: flaticon-scraper.zip
}

type Network struct {
	TimeoutSeconds      int    `yaml:"timeout_seconds"`       // search pages
	ImageTimeoutSeconds int    `yaml:"image_timeout_seconds"` // icon fetches for archives; 0 means 60
	UserAgent           string `yaml:"user_agent"`
}

// Source describes the search page that is scraped for icon URLs.
type Source struct {
	// SearchURL must contain a {query} token, replaced by the escaped query.
	SearchURL     string `yaml:"search_url"`
	ItemSelector  string `yaml:"item_selector"`
	ImageAttr     string `yaml:"image_attr"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"`
}

type Concurrency struct {
	SearchWorkers int `yaml:"search_workers"`
	FetchWorkers  int `yaml:"fetch_workers"`
}

type Logging struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // human|json
}

type Metrics struct {
	PrometheusTextfile PromTextfile `yaml:"prometheus_textfile"`
}

type PromTextfile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type UIOptions struct {
	// Columns is the number of items per row in the TUI grid. If 0, defaults to 4.
	Columns int `yaml:"columns"`
	// Theme is dark (default) or light.
	Theme string `yaml:"theme"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	c := &Config{
		Version: 1,
		General: General{
			DataRoot:    "~/.local/share/iconscrape",
			OutputRoot:  "~/Downloads",
			ArchiveName: DefaultArchiveName,
		},
		Network: Network{TimeoutSeconds: 30, ImageTimeoutSeconds: 60},
		Source: Source{
			SearchURL:    "https://www.flaticon.com/search?word={query}",
			ItemSelector: "div.icon--holder",
			ImageAttr:    "data-src",
		},
		Concurrency: Concurrency{SearchWorkers: 4, FetchWorkers: 4},
		Logging:     Logging{Level: "info", Format: "human"},
		UI:          UIOptions{Columns: 4},
	}
	_ = c.expandPaths()
	return c
}

// Load reads, parses, expands, and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	expanded, err := expandTilde(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}
	// Expand ${ENV} placeholders before unmarshalling
	b = []byte(os.ExpandEnv(string(b)))
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.expandPaths(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) expandPaths() error {
	var err error
	if c.General.DataRoot, err = expandTilde(c.General.DataRoot); err != nil {
		return err
	}
	if c.General.OutputRoot, err = expandTilde(c.General.OutputRoot); err != nil {
		return err
	}
	if c.Metrics.PrometheusTextfile.Path, err = expandTilde(c.Metrics.PrometheusTextfile.Path); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.General.DataRoot == "" {
		return errors.New("general.data_root is required")
	}
	if c.General.OutputRoot == "" {
		return errors.New("general.output_root is required")
	}
	if strings.ContainsAny(c.General.ArchiveName, `/\`) {
		return fmt.Errorf("general.archive_name must be a file name, got %q", c.General.ArchiveName)
	}
	if c.Source.SearchURL != "" && !strings.Contains(c.Source.SearchURL, "{query}") {
		return errors.New("source.search_url must contain a {query} token")
	}
	if c.Network.ImageTimeoutSeconds < 0 {
		return fmt.Errorf("network.image_timeout_seconds must be >= 0")
	}
	if c.Source.CacheTTLHours < 0 {
		return fmt.Errorf("source.cache_ttl_hours must be >= 0")
	}
	if c.Concurrency.SearchWorkers < 0 || c.Concurrency.FetchWorkers < 0 {
		return fmt.Errorf("concurrency workers must be >= 0")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level invalid: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "human", "json":
		// ok
	default:
		return fmt.Errorf("logging.format invalid: %s", c.Logging.Format)
	}
	if c.UI.Columns < 0 {
		return fmt.Errorf("ui.columns must be >= 0")
	}
	switch strings.ToLower(c.UI.Theme) {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.theme invalid: %s", c.UI.Theme)
	}
	return nil
}

// ArchiveFileName returns the configured archive name or the default one.
func (c *Config) ArchiveFileName() string {
	if c == nil || strings.TrimSpace(c.General.ArchiveName) == "" {
		return DefaultArchiveName
	}
	return strings.TrimSpace(c.General.ArchiveName)
}

// JSONLogs reports whether logging.format asks for JSON lines.
func (c *Config) JSONLogs() bool {
	return c != nil && strings.EqualFold(c.Logging.Format, "json")
}

func expandTilde(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p[0] != '~' {
		return p, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return h, nil
	}
	return filepath.Join(h, p[2:]), nil
}

// EnsureDir creates path (and parents) when it is non-empty.
func EnsureDir(path string, perm fs.FileMode) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, perm)
}
