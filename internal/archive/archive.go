// Package archive fetches the selected icons and packs them into a zip.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"iconscrape/internal/config"
	"iconscrape/internal/downloader"
	friendlyerrors "iconscrape/internal/errors"
	"iconscrape/internal/logging"
	"iconscrape/internal/metrics"
	"iconscrape/internal/session"
	"iconscrape/internal/system"
	"iconscrape/internal/util"
)

// ErrNothingSelected is returned by WriteFile when every download list is empty.
var ErrNothingSelected = errors.New("no icons selected")

// Entry is a file written into the archive.
type Entry struct {
	Name  string
	Query string
	URL   string
	Size  int
}

// Skip is a selected icon that could not be fetched. Its Name was reserved
// but not written.
type Skip struct {
	Name   string
	Query  string
	URL    string
	Reason string
}

// Archive is a built zip and what went into it.
type Archive struct {
	Data    []byte
	Entries []Entry
	Skipped []Skip
}

// Size is the total number of icon bytes packed.
func (a *Archive) Size() int64 {
	if a == nil {
		return 0
	}
	var n int64
	for _, e := range a.Entries {
		n += int64(e.Size)
	}
	return n
}

// Builder fetches icons with a bounded number of concurrent requests.
type Builder struct {
	client  *downloader.Client
	workers int
	log     *logging.Logger
	m       *metrics.Manager
	now     func() time.Time
}

// New returns a Builder. client may be nil, in which case one is built
// from cfg with network.image_timeout_seconds as the per-icon timeout.
func New(cfg *config.Config, client *downloader.Client, log *logging.Logger, m *metrics.Manager) *Builder {
	if client == nil {
		client = downloader.NewImage(cfg, log, m)
	}
	workers := 4
	if cfg != nil && cfg.Concurrency.FetchWorkers > 0 {
		workers = cfg.Concurrency.FetchWorkers
	}
	return &Builder{client: client, workers: workers, log: log.Named("archive"), m: m, now: time.Now}
}

// EntryName names the pos-th (1-based) entry of a query whose download list
// has n URLs: "{query}.png" when n is 1, "{query}_{pos}.png" otherwise.
func EntryName(query string, pos, n int) string {
	base := util.EntryBase(query)
	if n == 1 {
		return base + ".png"
	}
	return fmt.Sprintf("%s_%d.png", base, pos)
}

// claimName reserves name in used. When an earlier entry already holds it
// (compared case-insensitively), "-2", "-3", ... is added before the
// extension until the name is free.
func claimName(name string, used map[string]bool) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	cand := name
	for k := 2; used[strings.ToLower(cand)]; k++ {
		cand = fmt.Sprintf("%s-%d%s", stem, k, ext)
	}
	used[strings.ToLower(cand)] = true
	return cand
}

type job struct {
	name  string
	query string
	url   string
	data  []byte
	err   error
}

// Build fetches every URL of sels and returns the zip. It returns (nil, nil)
// when all lists are empty. Fetch failures skip the entry but keep its
// number, so a list of three with a failed second icon yields q_1.png and
// q_3.png. Entries follow query order then list order. Queries that map to
// the same name ("a/b" and "a-b") get distinct entries, the later one
// suffixed. An error is only returned when ctx ends or the zip cannot be
// written.
func (b *Builder) Build(ctx context.Context, sels []session.Selection) (*Archive, error) {
	var jobs []*job
	used := make(map[string]bool)
	for _, sel := range sels {
		for i, u := range sel.URLs {
			name := claimName(EntryName(sel.Query, i+1, len(sel.URLs)), used)
			jobs = append(jobs, &job{name: name, query: sel.Query, url: u})
		}
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	start := b.now()

	var g errgroup.Group
	g.SetLimit(b.workers)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			j.data, j.err = b.client.Get(ctx, j.url)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	out := &Archive{}
	for _, j := range jobs {
		if j.err != nil {
			b.m.IncImageFailures()
			b.log.Warnf("skip %s [%s]: %v", j.name, logging.SanitizeURL(j.url), j.err)
			out.Skipped = append(out.Skipped, Skip{Name: j.name, Query: j.query, URL: j.url, Reason: j.err.Error()})
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: j.name, Method: zip.Deflate, Modified: start})
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", j.name, err)
		}
		if _, err := w.Write(j.data); err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", j.name, err)
		}
		b.m.IncImagesFetched()
		b.log.Debugf("add %s (%d bytes)", j.name, len(j.data))
		out.Entries = append(out.Entries, Entry{Name: j.name, Query: j.query, URL: j.url, Size: len(j.data)})
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	out.Data = buf.Bytes()

	b.m.ObserveBuild(b.now().Sub(start).Seconds())
	b.log.Infof("archive built: %d entries, %d skipped, %d bytes", len(out.Entries), len(out.Skipped), len(out.Data))
	return out, nil
}

// WriteFile builds the archive and saves it in dir under name, adding a
// numeric suffix instead of overwriting an existing file. The zip is written
// to a temporary file first, which is removed on every failure path.
func (b *Builder) WriteFile(ctx context.Context, dir, name string, sels []session.Selection) (string, *Archive, error) {
	a, err := b.Build(ctx, sels)
	if err != nil {
		return "", nil, err
	}
	if a == nil {
		return "", nil, ErrNothingSelected
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, friendlyerrors.PathError(dir, err)
	}
	if ok, avail, err := system.HasSufficientSpace(dir, uint64(len(a.Data))); err == nil && !ok {
		return "", nil, friendlyerrors.DiskSpaceError(dir, uint64(len(a.Data)), avail)
	}
	dest, err := util.UniquePath(dir, name)
	if err != nil {
		return "", nil, err
	}
	f, err := os.CreateTemp(dir, ".iconscrape-*.zip.part")
	if err != nil {
		return "", nil, friendlyerrors.PathError(dir, err)
	}
	tmp := f.Name()
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()
	if _, err := f.Write(a.Data); err != nil {
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		return "", nil, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", nil, err
	}
	committed = true
	b.log.Infof("saved %s", filepath.Base(dest))
	return dest, a, nil
}
