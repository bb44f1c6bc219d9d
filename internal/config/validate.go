package config

import (
	"fmt"
	"os"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// At least one library required
	if c.Libraries.Movies.Root == "" && c.Libraries.Series.Root == "" {
		errs = append(errs, "libraries: at least one library (movies or series) must be configured")
	}

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	// TMDB validation
	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required")
	}

	if c.Metadata.BatchLimit < 0 {
		errs = append(errs, fmt.Sprintf("metadata.batch_limit: must be positive, got %d", c.Metadata.BatchLimit))
	}
	if c.Events.RetentionDays < 0 {
		errs = append(errs, fmt.Sprintf("events.retention_days: must not be negative, got %d", c.Events.RetentionDays))
	}

	// Library path warnings (non-fatal)
	if c.Libraries.Movies.Root != "" {
		if _, err := os.Stat(c.Libraries.Movies.Root); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("libraries.movies.root: warning: directory %q does not exist", c.Libraries.Movies.Root))
		}
	}
	if c.Libraries.Series.Root != "" {
		if _, err := os.Stat(c.Libraries.Series.Root); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("libraries.series.root: warning: directory %q does not exist", c.Libraries.Series.Root))
		}
	}

	return errs
}
