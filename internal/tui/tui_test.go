package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"iconscrape/internal/archive"
	"iconscrape/internal/config"
	"iconscrape/internal/downloader"
	"iconscrape/internal/logging"
	"iconscrape/internal/scraper"
	"iconscrape/internal/session"
	"iconscrape/internal/state"
)

// setupTestController wires a controller to an icon server and a fetcher
// that returns three icons per non-empty query.
func setupTestController(t *testing.T) (*TUIController, *state.DB) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("png" + r.URL.Path))
	}))
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.General.DataRoot = t.TempDir()
	cfg.General.OutputRoot = t.TempDir()
	cfg.UI.Columns = 2
	db, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open state db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	fetch := scraper.FetchFunc(func(_ context.Context, q string) []string {
		if q == "" {
			return nil
		}
		return []string{ts.URL + "/" + q + "0.png", ts.URL + "/" + q + "1.png", ts.URL + "/" + q + "2.png"}
	})
	client := downloader.NewWithHTTP(ts.Client(), "test", logging.Discard(), nil)
	m := New(cfg, Deps{
		Session: session.New(fetch, session.Options{Workers: 2}),
		Builder: archive.New(cfg, client, logging.Discard(), nil),
		DB:      db,
		Log:     logging.Discard(),
	}).(*model)
	m.tuiView.SetSize(120, 40)
	return m.tuiController, db
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds every resulting message except timer ticks back
// into the controller.
func drain(c *TUIController, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			drain(c, sub)
		}
	case searchDoneMsg, buildDoneMsg, errMsg:
		drain(c, c.Update(msg))
	}
}

func search(t *testing.T, c *TUIController, raw string) {
	t.Helper()
	c.searchInput.SetValue(raw)
	drain(c, c.Update(tea.KeyMsg{Type: tea.KeyEnter}))
	if c.model.searching {
		t.Fatalf("search %q still marked in flight", raw)
	}
}

func TestSearchAndPaginate(t *testing.T) {
	c, db := setupTestController(t)
	search(t, c, "cat; dog")

	if c.searchOn {
		t.Fatal("search bar should lose focus after enter")
	}
	view := c.view.View(c.model, c)
	if !strings.Contains(view, "cat") || !strings.Contains(view, "page 1/2") {
		t.Fatalf("first page not rendered:\n%s", view)
	}

	c.Update(key("n"))
	if p, _ := c.model.Page(); p.Query != "dog" {
		t.Fatalf("expected dog after next, got %q", p.Query)
	}
	c.Update(key("n"))
	if p, _ := c.model.Page(); p.Query != "cat" {
		t.Fatalf("expected wraparound to cat, got %q", p.Query)
	}
	c.Update(key("p"))
	if p, _ := c.model.Page(); p.Query != "dog" {
		t.Fatalf("expected dog after previous, got %q", p.Query)
	}

	rows, err := db.ListSearches(0)
	if err != nil || len(rows) != 1 || rows[0].Results != 6 {
		t.Fatalf("search history: %+v %v", rows, err)
	}
}

func TestToggleAndDownload(t *testing.T) {
	c, db := setupTestController(t)
	search(t, c, "cat")

	if cmd := c.Update(key("d")); cmd != nil || c.model.building {
		t.Fatal("download must be disabled with nothing selected")
	}
	if !c.statusBad {
		t.Fatal("expected an error status for download without selection")
	}

	c.Update(tea.KeyMsg{Type: tea.KeySpace})
	c.Update(key("l"))
	c.Update(tea.KeyMsg{Type: tea.KeySpace})
	if !c.model.sess.AnySelected() {
		t.Fatal("expected selections after toggling")
	}
	c.Update(tea.KeyMsg{Type: tea.KeySpace})
	sels := c.model.sess.Selections()
	if len(sels) != 1 || len(sels[0].URLs) != 1 || !strings.HasSuffix(sels[0].URLs[0], "/cat0.png") {
		t.Fatalf("unexpected selections: %+v", sels)
	}

	drain(c, c.Update(key("d")))
	if c.model.building {
		t.Fatal("build still marked in flight")
	}
	e := c.model.lastExport
	if e == nil || e.entries != 1 {
		t.Fatalf("expected one exported entry, got %+v (status %q)", e, c.status)
	}
	if _, err := os.Stat(e.path); err != nil {
		t.Fatalf("archive missing: %v", err)
	}
	if !strings.HasSuffix(e.path, config.DefaultArchiveName) {
		t.Fatalf("unexpected archive name %s", e.path)
	}
	rows, err := db.ListExports(0)
	if err != nil || len(rows) != 1 || rows[0].Status != state.ExportComplete {
		t.Fatalf("export history: %+v %v", rows, err)
	}
}

func TestStaleSearchIgnored(t *testing.T) {
	c, _ := setupTestController(t)
	first := c.model.searchCmd("cat")
	second := c.model.searchCmd("dog")

	c.Update(second())
	c.Update(first())

	p, ok := c.model.Page()
	if !ok || p.Query != "dog" {
		t.Fatalf("stale search replaced the newer one: %+v", p)
	}
	if c.model.lastSearch.Queries[0] != "dog" {
		t.Fatalf("summary from stale search: %+v", c.model.lastSearch)
	}
}

func TestFilterNarrowsPage(t *testing.T) {
	c, _ := setupTestController(t)
	search(t, c, "cat")

	c.Update(key("/"))
	if !c.filterOn {
		t.Fatal("filter should be on after '/'")
	}
	for _, r := range "cat2" {
		c.Update(key(string(r)))
	}
	c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	items := c.visibleItems()
	if len(items) != 1 || items[0].Index != 2 {
		t.Fatalf("filter result: %+v", items)
	}
	c.Update(tea.KeyMsg{Type: tea.KeySpace})
	if list := c.model.sess.Selections()[0].URLs; len(list) != 1 || !strings.HasSuffix(list[0], "/cat2.png") {
		t.Fatalf("toggle through filter picked %v", list)
	}

	c.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if c.filter != "" || len(c.visibleItems()) != 3 {
		t.Fatal("esc should clear the filter")
	}
}

func TestHelpAndSearchFocus(t *testing.T) {
	c, _ := setupTestController(t)
	search(t, c, "cat")

	c.Update(key("?"))
	if !c.showHelp {
		t.Fatal("showHelp should be true after '?'")
	}
	c.Update(key("x"))
	if c.showHelp {
		t.Fatal("any key should close help")
	}
	if c.model.sess.AnySelected() {
		t.Fatal("the key closing help must not toggle")
	}

	c.Update(key("s"))
	if !c.searchOn {
		t.Fatal("'s' should focus the search bar")
	}
	c.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if c.searchOn {
		t.Fatal("esc should leave the search bar when a page exists")
	}
}

func TestEmptyQueryPage(t *testing.T) {
	c, _ := setupTestController(t)
	search(t, c, "cat;")
	c.Update(key("n"))
	view := c.view.View(c.model, c)
	if !strings.Contains(view, "(empty query)") || !strings.Contains(view, "No icons found") {
		t.Fatalf("empty page not rendered:\n%s", view)
	}
	if !strings.Contains(c.status, "1 without results") {
		t.Fatalf("status = %q", c.status)
	}
}
