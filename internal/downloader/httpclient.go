package downloader

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"iconscrape/internal/config"
)

// DefaultImageTimeout bounds an icon fetch when network.image_timeout_seconds is unset.
const DefaultImageTimeout = 60 * time.Second

// NewHTTPClient builds the client used for search pages. Every request is
// bounded by network.timeout_seconds (fallback applies when unset).
func NewHTTPClient(cfg *config.Config, fallback time.Duration) *http.Client {
	timeout := fallback
	if cfg != nil && cfg.Network.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Network.TimeoutSeconds) * time.Second
	}
	return newHTTPClient(timeout)
}

// NewImageHTTPClient builds the client used by the archive builder. Every
// request is bounded by network.image_timeout_seconds.
func NewImageHTTPClient(cfg *config.Config) *http.Client {
	timeout := DefaultImageTimeout
	if cfg != nil && cfg.Network.ImageTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Network.ImageTimeoutSeconds) * time.Second
	}
	return newHTTPClient(timeout)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
	client := &http.Client{Transport: tr, Timeout: timeout}
	// Keep the User-Agent across redirects; CDNs often bounce icon URLs once.
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return fmt.Errorf("stopped after %d redirects", len(via))
		}
		if ua := via[len(via)-1].Header.Get("User-Agent"); ua != "" {
			req.Header.Set("User-Agent", ua)
		}
		return nil
	}
	return client
}

// UserAgent returns the configured User-Agent, or
// "iconscrape/<version> (<goos>/<goarch>)" when not set.
func UserAgent(cfg *config.Config) string {
	if cfg != nil && strings.TrimSpace(cfg.Network.UserAgent) != "" {
		return strings.TrimSpace(cfg.Network.UserAgent)
	}
	return fmt.Sprintf("iconscrape/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}

// Version is overridden by cmd/iconscrape at startup.
var Version = "dev"
