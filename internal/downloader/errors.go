package downloader

import (
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"
)

// StatusError is returned by Client.Get for any response other than 200 OK.
type StatusError struct {
	URL        string
	Code       int
	Status     string
	RetryAfter time.Duration // from the Retry-After header, 0 when absent
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("GET %s: %s", e.URL, friendlyHTTPStatusMessage(e.Code, e.Status))
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	return msg
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now).Round(time.Second)
	}
	return 0
}

// StatusCode extracts the HTTP status from err, or 0 when err is not a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func friendlyHTTPStatusMessage(code int, status string) string {
	switch code {
	case http.StatusTooManyRequests:
		return "429 Too Many Requests: rate limited"
	case http.StatusForbidden:
		return "403 Forbidden: the site refused this client"
	case http.StatusNotFound:
		return "404 Not Found: the icon may have been removed"
	default:
		if strings.TrimSpace(status) == "" {
			return fmt.Sprintf("%d %s", code, http.StatusText(code))
		}
		return status
	}
}

// hostFromURL extracts hostname from a URL string.
func hostFromURL(raw string) string {
	if u, err := neturl.Parse(raw); err == nil && u != nil {
		return u.Hostname()
	}
	return ""
}
