package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"iconscrape/internal/config"
)

// Manager accumulates counters and writes them in the Prometheus textfile
// format. A nil *Manager is valid and records nothing.
type Manager struct {
	path string
	mu   sync.Mutex
	// counters
	searches      int64
	emptyQueries  int64
	imagesFetched int64
	imageFailures int64
	bytesTotal    int64
	archivesBuilt int64
	lastBuildSec  float64
}

func New(cfg *config.Config) *Manager {
	if cfg == nil || !cfg.Metrics.PrometheusTextfile.Enabled || cfg.Metrics.PrometheusTextfile.Path == "" {
		return nil
	}
	p := cfg.Metrics.PrometheusTextfile.Path
	_ = os.MkdirAll(filepath.Dir(p), 0o755)
	return &Manager{path: p}
}

func (m *Manager) IncSearches() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.searches++
	m.mu.Unlock()
}

// IncEmptyQueries counts queries whose fetch produced no results.
func (m *Manager) IncEmptyQueries(n int64) {
	if m == nil || n == 0 {
		return
	}
	m.mu.Lock()
	m.emptyQueries += n
	m.mu.Unlock()
}

func (m *Manager) IncImagesFetched() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.imagesFetched++
	m.mu.Unlock()
}

func (m *Manager) IncImageFailures() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.imageFailures++
	m.mu.Unlock()
}

func (m *Manager) AddBytes(n int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.bytesTotal += n
	m.mu.Unlock()
}

func (m *Manager) ObserveBuild(sec float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.archivesBuilt++
	m.lastBuildSec = sec
	m.mu.Unlock()
}

// Snapshot is a copy of the counters, mostly for tests and the CLI.
type Snapshot struct {
	Searches         int64
	EmptyQueries     int64
	ImagesFetched    int64
	ImageFailures    int64
	Bytes            int64
	Archives         int64
	LastBuildSeconds float64
}

func (m *Manager) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Searches:         m.searches,
		EmptyQueries:     m.emptyQueries,
		ImagesFetched:    m.imagesFetched,
		ImageFailures:    m.imageFailures,
		Bytes:            m.bytesTotal,
		Archives:         m.archivesBuilt,
		LastBuildSeconds: m.lastBuildSec,
	}
}

func (m *Manager) Write() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := os.CreateTemp(filepath.Dir(m.path), ".metrics.tmp.*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	counter := func(name, help string, v int64) {
		fmt.Fprintf(f, "# HELP iconscrape_%s %s\n", name, help)
		fmt.Fprintf(f, "# TYPE iconscrape_%s counter\n", name)
		fmt.Fprintf(f, "iconscrape_%s %d\n", name, v)
	}
	counter("searches_total", "Total search submissions.", m.searches)
	counter("query_empty_total", "Queries that returned no results.", m.emptyQueries)
	counter("images_fetched_total", "Icons fetched for archives.", m.imagesFetched)
	counter("image_failures_total", "Icon fetches skipped after an error or non-200 status.", m.imageFailures)
	counter("archive_bytes_total", "Total icon bytes packed into archives.", m.bytesTotal)
	counter("archives_total", "Archives built.", m.archivesBuilt)

	fmt.Fprintf(f, "# HELP iconscrape_last_build_seconds Duration of the last archive build in seconds.\n")
	fmt.Fprintf(f, "# TYPE iconscrape_last_build_seconds gauge\n")
	fmt.Fprintf(f, "iconscrape_last_build_seconds %.6f\n", m.lastBuildSec)

	fmt.Fprintf(f, "# HELP iconscrape_metrics_timestamp_seconds UNIX timestamp when this file was written.\n")
	fmt.Fprintf(f, "# TYPE iconscrape_metrics_timestamp_seconds gauge\n")
	fmt.Fprintf(f, "iconscrape_metrics_timestamp_seconds %d\n", time.Now().Unix())

	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), m.path)
}
