package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
)

// UserFriendlyError provides actionable error messages for end users
type UserFriendlyError struct {
	Message    string // User-facing message explaining what went wrong
	Suggestion string // Actionable steps to fix the issue
	DocsLink   string // Optional link to documentation
	Details    error  // Original error for debugging/logs
}

func (e *UserFriendlyError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString("How to fix:\n")
		sb.WriteString(e.Suggestion)
	}

	if e.DocsLink != "" {
		sb.WriteString("\n\n")
		sb.WriteString("Documentation: ")
		sb.WriteString(e.DocsLink)
	}

	return sb.String()
}

func (e *UserFriendlyError) Unwrap() error {
	return e.Details
}

// NewFriendlyError creates a user-friendly error
func NewFriendlyError(message, suggestion string) *UserFriendlyError {
	return &UserFriendlyError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// WithDetails adds the underlying error details
func (e *UserFriendlyError) WithDetails(err error) *UserFriendlyError {
	e.Details = err
	return e
}

// WithDocs adds a documentation link
func (e *UserFriendlyError) WithDocs(link string) *UserFriendlyError {
	e.DocsLink = link
	return e
}

// NetworkError returns a network-related error with helpful suggestions
func NetworkError(err error) *UserFriendlyError {
	msg := "Network error occurred"
	suggestion := "Check your internet connection and try again"

	if err != nil {
		errStr := err.Error()

		switch {
		case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "name resolution"):
			msg = "Cannot resolve hostname - DNS lookup failed"
			suggestion = "1. Check your internet connection\n2. Verify DNS settings"
		case strings.Contains(errStr, "connection refused"):
			msg = "Server refused connection"
			suggestion = "The server may be down or blocking requests. Try again later."
		case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
			msg = "Connection timed out"
			suggestion = "Server is slow or unreachable. Try:\n1. Increase network.timeout_seconds\n2. Lower concurrency.fetch_workers\n3. Try again later"
		case strings.Contains(errStr, "certificate") || strings.Contains(errStr, "x509"):
			msg = "SSL/TLS certificate verification failed"
			suggestion = "You may be behind a corporate proxy; install its CA certificate"
		}
	}

	return &UserFriendlyError{
		Message:    msg,
		Suggestion: suggestion,
		Details:    err,
	}
}

// ScrapeError describes a search page that could not be used.
func ScrapeError(query string, statusCode int, err error) *UserFriendlyError {
	msg := fmt.Sprintf("Search for %q failed", query)
	suggestion := "Try again later; the search site may be temporarily unavailable"
	switch {
	case statusCode == http.StatusTooManyRequests:
		msg = fmt.Sprintf("Search for %q was rate limited", query)
		suggestion = "Wait a minute, then search fewer keywords at once or lower concurrency.search_workers"
	case statusCode == http.StatusForbidden:
		msg = fmt.Sprintf("Search for %q was refused (403)", query)
		suggestion = "The site may block automated clients. Set network.user_agent to a browser user agent"
	case statusCode >= 500:
		msg = fmt.Sprintf("Search site error for %q (%d)", query, statusCode)
	case statusCode != 0 && statusCode != http.StatusOK:
		msg = fmt.Sprintf("Search for %q returned status %d", query, statusCode)
	}
	return &UserFriendlyError{Message: msg, Suggestion: suggestion, Details: err}
}

// ConfigError returns configuration-related errors
func ConfigError(field, issue string) *UserFriendlyError {
	return &UserFriendlyError{
		Message:    fmt.Sprintf("Configuration error in field '%s': %s", field, issue),
		Suggestion: "Run 'iconscrape config validate' to check your configuration",
	}
}

// DatabaseError returns database-related errors with recovery suggestions
func DatabaseError(err error) *UserFriendlyError {
	msg := "Database error"
	suggestion := "The history database lives in general.data_root/state.db"

	if err != nil {
		errStr := err.Error()

		if strings.Contains(errStr, "locked") {
			msg = "Database is locked by another process"
			suggestion = "Close other iconscrape instances and try again"
		}

		if strings.Contains(errStr, "corrupt") || strings.Contains(errStr, "malformed") {
			msg = "Database is corrupted"
			suggestion = "It only holds history. Move general.data_root/state.db aside and run again"
		}
	}

	return &UserFriendlyError{
		Message:    msg,
		Suggestion: suggestion,
		Details:    err,
	}
}

// PathError returns file/directory path related errors
func PathError(path string, err error) *UserFriendlyError {
	msg := fmt.Sprintf("Path error: %s", path)
	suggestion := "Check that the path exists and you have permission to access it"

	if err != nil {
		errStr := err.Error()

		if strings.Contains(errStr, "permission denied") {
			msg = fmt.Sprintf("Permission denied: %s", path)
			suggestion = fmt.Sprintf("Ensure you have write permission:\n  chmod u+w %s", path)
		}

		if strings.Contains(errStr, "no such file or directory") {
			msg = fmt.Sprintf("Directory does not exist: %s", path)
			suggestion = fmt.Sprintf("Create the directory:\n  mkdir -p %s", path)
		}

		if strings.Contains(errStr, "not a directory") {
			msg = fmt.Sprintf("Path exists but is not a directory: %s", path)
			suggestion = "Remove the file or choose a different general.output_root"
		}
	}

	return &UserFriendlyError{
		Message:    msg,
		Suggestion: suggestion,
		Details:    err,
	}
}

// DiskSpaceError reports that an archive does not fit in its directory.
func DiskSpaceError(path string, required, available uint64) *UserFriendlyError {
	return &UserFriendlyError{
		Message: fmt.Sprintf("Insufficient disk space in %s", path),
		Suggestion: fmt.Sprintf("Need %s, only %s available. Free up space or set general.output_root to another disk",
			humanize.Bytes(required), humanize.Bytes(available)),
	}
}
