package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfig(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("ICONSCRAPE_TEST_OUT", tmp+"/out")
	path := writeConfig(t, strings.Join([]string{
		"version: 1",
		"general:",
		"  data_root: \"" + tmp + "/data\"",
		"  output_root: \"${ICONSCRAPE_TEST_OUT}\"",
		"source:",
		"  search_url: \"https://example.com/s?q={query}\"",
		"concurrency:",
		"  fetch_workers: 2",
	}, "\n"))
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.General.OutputRoot != tmp+"/out" {
		t.Fatalf("env not expanded: %q", c.General.OutputRoot)
	}
	if c.Concurrency.FetchWorkers != 2 {
		t.Fatalf("fetch_workers = %d", c.Concurrency.FetchWorkers)
	}
	if c.ArchiveFileName() != DefaultArchiveName {
		t.Fatalf("archive name = %q", c.ArchiveFileName())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"version":    "version: 2\ngeneral:\n  data_root: /a\n  output_root: /b\n",
		"data_root":  "version: 1\ngeneral:\n  output_root: /b\n",
		"query tok":  "version: 1\ngeneral:\n  data_root: /a\n  output_root: /b\nsource:\n  search_url: https://x/\n",
		"log level":  "version: 1\ngeneral:\n  data_root: /a\n  output_root: /b\nlogging:\n  level: loud\n",
		"archive":    "version: 1\ngeneral:\n  data_root: /a\n  output_root: /b\n  archive_name: a/b.zip\n",
		"ui columns": "version: 1\ngeneral:\n  data_root: /a\n  output_root: /b\nui:\n  columns: -1\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if errs := c.ValidateDetailed(); len(errs) != 0 {
		t.Fatalf("default config has detailed errors: %v", errs)
	}
	if strings.HasPrefix(c.General.DataRoot, "~") {
		t.Fatalf("data_root not expanded: %s", c.General.DataRoot)
	}
}

func TestValidateWithFriendlyErrors(t *testing.T) {
	c := Default()
	c.Network.TimeoutSeconds = 0
	err := c.ValidateWithFriendlyErrors()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "network.timeout_seconds") {
		t.Fatalf("error does not name field: %v", err)
	}
}

func TestImageTimeout(t *testing.T) {
	c := Default()
	if c.Network.ImageTimeoutSeconds != 60 {
		t.Fatalf("default image timeout = %d", c.Network.ImageTimeoutSeconds)
	}
	c.Network.ImageTimeoutSeconds = -1
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "image_timeout_seconds") {
		t.Fatalf("expected image_timeout_seconds error, got %v", err)
	}
	c.Network.ImageTimeoutSeconds = 0
	if err := c.Validate(); err != nil {
		t.Fatalf("0 should mean default: %v", err)
	}
}
