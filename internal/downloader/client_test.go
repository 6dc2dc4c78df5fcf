package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"iconscrape/internal/config"
	"iconscrape/internal/logging"
)

type byteCounter struct{ n int64 }

func (b *byteCounter) AddBytes(n int64) { b.n += n }

func TestClientGet(t *testing.T) {
	var gotUA string
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("png-bytes"))
	})
	mux.HandleFunc("/gone.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/moved.png", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok.png", http.StatusFound)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := &config.Config{Network: config.Network{TimeoutSeconds: 5, UserAgent: "test-agent"}}
	bc := &byteCounter{}
	c := New(cfg, logging.Discard(), time.Second, bc)

	b, err := c.Get(context.Background(), ts.URL+"/ok.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(b) != "png-bytes" || gotUA != "test-agent" {
		t.Fatalf("body=%q ua=%q", b, gotUA)
	}
	if bc.n != int64(len("png-bytes")) {
		t.Fatalf("bytes counted = %d", bc.n)
	}

	if _, err := c.Get(context.Background(), ts.URL+"/moved.png"); err != nil {
		t.Fatalf("redirect: %v", err)
	}
	if gotUA != "test-agent" {
		t.Fatalf("user agent lost across redirect: %q", gotUA)
	}

	_, err = c.Get(context.Background(), ts.URL+"/gone.png")
	if StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "removed") {
		t.Fatalf("unfriendly message: %v", err)
	}
}

func TestClientGetTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()
	c := NewWithHTTP(&http.Client{Timeout: 50 * time.Millisecond}, "", logging.Discard(), nil)
	if _, err := c.Get(context.Background(), ts.URL); err == nil {
		t.Fatal("expected timeout error")
	}
	if StatusCode(nil) != 0 {
		t.Fatal("StatusCode(nil) should be 0")
	}
}

func TestUserAgentDefault(t *testing.T) {
	if ua := UserAgent(nil); !strings.HasPrefix(ua, "iconscrape/") {
		t.Fatalf("default ua: %q", ua)
	}
}

func TestClientTimeouts(t *testing.T) {
	cfg := config.Default()
	if got := NewHTTPClient(cfg, time.Minute).Timeout; got != 30*time.Second {
		t.Fatalf("search timeout = %s", got)
	}
	if got := NewImageHTTPClient(cfg).Timeout; got != 60*time.Second {
		t.Fatalf("image timeout = %s", got)
	}

	// a config file that sets neither value
	bare := &config.Config{}
	if got := NewHTTPClient(bare, 30*time.Second).Timeout; got != 30*time.Second {
		t.Fatalf("search fallback = %s", got)
	}
	if got := NewImageHTTPClient(bare).Timeout; got != DefaultImageTimeout {
		t.Fatalf("image fallback = %s", got)
	}

	cfg.Network.ImageTimeoutSeconds = 5
	if got := NewImageHTTPClient(cfg).Timeout; got != 5*time.Second {
		t.Fatalf("configured image timeout = %s", got)
	}
	if got := NewHTTPClient(cfg, time.Minute).Timeout; got != 30*time.Second {
		t.Fatalf("image setting leaked into search timeout: %s", got)
	}
}
