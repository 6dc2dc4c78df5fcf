package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"iconscrape/internal/config"
	"iconscrape/internal/logging"
)

// maxBodyBytes caps a single response; icons and search pages are far smaller.
const maxBodyBytes = 32 << 20

// Client performs bounded GET requests and reads whole bodies into memory.
type Client struct {
	http *http.Client
	ua   string
	log  *logging.Logger
	m    interface{ AddBytes(int64) }
}

// New returns a Client using NewHTTPClient. m may be nil.
func New(cfg *config.Config, log *logging.Logger, fallback time.Duration, m interface{ AddBytes(int64) }) *Client {
	return NewWithHTTP(NewHTTPClient(cfg, fallback), UserAgent(cfg), log, m)
}

// NewImage returns a Client for icon fetches, bounded by
// network.image_timeout_seconds. m may be nil.
func NewImage(cfg *config.Config, log *logging.Logger, m interface{ AddBytes(int64) }) *Client {
	return NewWithHTTP(NewImageHTTPClient(cfg), UserAgent(cfg), log, m)
}

// NewWithHTTP wraps an existing *http.Client, e.g. an httptest server client.
func NewWithHTTP(hc *http.Client, ua string, log *logging.Logger, m interface{ AddBytes(int64) }) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{http: hc, ua: ua, log: log, m: m}
}

// Get fetches url and returns the body. Any status other than 200 yields a
// *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("url required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{
			URL:        logging.SanitizeURL(url),
			Code:       resp.StatusCode,
			Status:     resp.Status,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxBodyBytes {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", logging.SanitizeURL(url), maxBodyBytes)
	}
	if c.m != nil {
		c.m.AddBytes(int64(len(b)))
	}
	c.log.Debugf("GET %s host=%s bytes=%d in %s", logging.SanitizeURL(url), hostFromURL(url), len(b), time.Since(start).Round(time.Millisecond))
	return b, nil
}
