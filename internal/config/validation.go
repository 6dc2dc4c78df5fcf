package config

import (
	"fmt"
	"strings"

	friendlyerrors "iconscrape/internal/errors"
)

// ValidationError represents a detailed config validation error
type ValidationError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Config validation error in '%s': %s", e.Field, e.Message)
}

// ValidateDetailed performs comprehensive validation with friendly error messages
func (c *Config) ValidateDetailed() []ValidationError {
	var errs []ValidationError

	if c.Version != 1 {
		errs = append(errs, ValidationError{
			Field:      "version",
			Value:      c.Version,
			Message:    fmt.Sprintf("Unsupported version: %d", c.Version),
			Suggestion: "Use version: 1",
		})
	}

	if c.General.DataRoot == "" {
		errs = append(errs, ValidationError{
			Field:      "general.data_root",
			Message:    "Required field missing",
			Suggestion: "Set to a directory for iconscrape data:\n  data_root: ~/.local/share/iconscrape",
		})
	}

	if c.General.OutputRoot == "" {
		errs = append(errs, ValidationError{
			Field:      "general.output_root",
			Message:    "Required field missing",
			Suggestion: "Set to the directory archives are saved to:\n  output_root: ~/Downloads",
		})
	}

	if name := c.General.ArchiveName; name != "" && !strings.HasSuffix(strings.ToLower(name), ".zip") {
		errs = append(errs, ValidationError{
			Field:      "general.archive_name",
			Value:      name,
			Message:    "Archive name should end in .zip",
			Suggestion: "Use e.g. archive_name: " + DefaultArchiveName,
		})
	}

	if c.Source.SearchURL != "" && !strings.Contains(c.Source.SearchURL, "{query}") {
		errs = append(errs, ValidationError{
			Field:      "source.search_url",
			Value:      c.Source.SearchURL,
			Message:    "Missing {query} token",
			Suggestion: "Example: https://www.flaticon.com/search?word={query}",
		})
	}

	if c.Network.TimeoutSeconds < 1 {
		errs = append(errs, ValidationError{
			Field:      "network.timeout_seconds",
			Value:      c.Network.TimeoutSeconds,
			Message:    "Must be at least 1 second",
			Suggestion: "Recommended: 10-60 seconds",
		})
	}

	if c.Network.TimeoutSeconds > 600 {
		errs = append(errs, ValidationError{
			Field:      "network.timeout_seconds",
			Value:      c.Network.TimeoutSeconds,
			Message:    "Very long timeout (>10 minutes)",
			Suggestion: "A search page or icon should load well within 60 seconds",
		})
	}

	if c.Network.ImageTimeoutSeconds > 600 {
		errs = append(errs, ValidationError{
			Field:      "network.image_timeout_seconds",
			Value:      c.Network.ImageTimeoutSeconds,
			Message:    "Very long timeout (>10 minutes)",
			Suggestion: "Leave it unset for the 60 second default",
		})
	}

	workers := []struct {
		field string
		n     int
	}{
		{"concurrency.search_workers", c.Concurrency.SearchWorkers},
		{"concurrency.fetch_workers", c.Concurrency.FetchWorkers},
	}
	for _, w := range workers {
		if w.n > 32 {
			errs = append(errs, ValidationError{
				Field:      w.field,
				Value:      w.n,
				Message:    "Unusually high (>32 workers)",
				Suggestion: "The search site may rate limit you. Try 2-8.",
			})
		}
	}

	lvl := strings.ToLower(c.Logging.Level)
	validLevels := []string{"", "debug", "info", "warn", "error"}
	found := false
	for _, valid := range validLevels {
		if lvl == valid {
			found = true
			break
		}
	}
	if !found {
		errs = append(errs, ValidationError{
			Field:      "logging.level",
			Value:      c.Logging.Level,
			Message:    "Invalid log level",
			Suggestion: "Use one of: debug, info, warn, error",
		})
	}

	if c.Metrics.PrometheusTextfile.Enabled && c.Metrics.PrometheusTextfile.Path == "" {
		errs = append(errs, ValidationError{
			Field:      "metrics.prometheus_textfile.path",
			Message:    "Textfile metrics enabled without a path",
			Suggestion: "Set path, e.g. /var/lib/node_exporter/textfile/iconscrape.prom",
		})
	}

	return errs
}

// ValidateWithFriendlyErrors returns a user-friendly validation error
func (c *Config) ValidateWithFriendlyErrors() error {
	if err := c.Validate(); err != nil {
		return err
	}

	errs := c.ValidateDetailed()
	if len(errs) == 0 {
		return nil
	}

	var msg strings.Builder
	msg.WriteString("Configuration validation failed:\n\n")

	for i, err := range errs {
		msg.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
		if err.Value != nil {
			msg.WriteString(fmt.Sprintf("   Current value: %v\n", err.Value))
		}
		if err.Suggestion != "" {
			for _, line := range strings.Split(err.Suggestion, "\n") {
				msg.WriteString(fmt.Sprintf("   → %s\n", line))
			}
		}
		msg.WriteString("\n")
	}

	return friendlyerrors.NewFriendlyError(
		"Config validation failed",
		msg.String(),
	)
}
