// Package testutil provides a fake icon search site and small file helpers
// for tests that exercise the whole search and download path.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// IconSite serves /search?word=Q with PerQuery result items and the icons
// at /icons/Q_i.png. Words listed in Missing yield an empty page, icons
// listed in Broken answer with their status code.
type IconSite struct {
	*httptest.Server
	PerQuery int
	Missing  map[string]bool
	Broken   map[string]int

	mu       sync.Mutex
	requests []string
}

// NewIconSite starts a site that is closed when the test ends.
func NewIconSite(t *testing.T, perQuery int) *IconSite {
	t.Helper()
	s := &IconSite{PerQuery: perQuery, Missing: map[string]bool{}, Broken: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *IconSite) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RequestURI())
	s.mu.Unlock()

	switch {
	case r.URL.Path == "/search":
		word := r.URL.Query().Get("word")
		var b strings.Builder
		b.WriteString("<html><body>")
		if word != "" && !s.Missing[word] {
			for i := 0; i < s.PerQuery; i++ {
				fmt.Fprintf(&b, `<div class="icon--holder"><img alt=%q data-src="/icons/%s_%d.png"></div>`, word, word, i)
			}
		}
		b.WriteString("</body></html>")
		_, _ = fmt.Fprint(w, b.String())
	case strings.HasPrefix(r.URL.Path, "/icons/"):
		name := strings.TrimPrefix(r.URL.Path, "/icons/")
		if code, ok := s.Broken[name]; ok {
			w.WriteHeader(code)
			return
		}
		_, _ = fmt.Fprint(w, IconBody(name))
	default:
		http.NotFound(w, r)
	}
}

// SearchURL is the search_url config value pointing at the site.
func (s *IconSite) SearchURL() string {
	return s.URL + "/search?word={query}"
}

// IconURL is the URL of the i-th icon of word.
func (s *IconSite) IconURL(word string, i int) string {
	return fmt.Sprintf("%s/icons/%s_%d.png", s.URL, word, i)
}

// IconBody is the content served for an icon file name.
func IconBody(name string) string {
	return "png:" + name
}

// Requests returns the request URIs seen so far.
func (s *IconSite) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// TempFile creates a temporary file with content
func TempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// WriteConfig writes a config file for site with data and output roots in
// fresh temp dirs and returns its path.
func WriteConfig(t *testing.T, site *IconSite, extra ...string) string {
	t.Helper()
	d := t.TempDir()
	lines := []string{
		"version: 1",
		"general:",
		"  data_root: " + filepath.Join(d, "data"),
		"  output_root: " + filepath.Join(d, "out"),
		"source:",
		"  search_url: \"" + site.SearchURL() + "\"",
		"logging:",
		"  level: error",
	}
	lines = append(lines, extra...)
	return TempFile(t, "config.yml", strings.Join(lines, "\n")+"\n")
}
