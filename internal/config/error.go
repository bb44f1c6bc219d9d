package config

import "strings"

// ConfigError splits validation findings into fatal errors and warnings,
// so callers can log the warnings and abort only on real errors.
type ConfigError struct {
	Path     string
	Errors   []string
	Warnings []string
}

func (e *ConfigError) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	return strings.Join(e.Errors, "; ")
}

// Fatal reports whether startup should abort.
func (e *ConfigError) Fatal() bool { return len(e.Errors) > 0 }

// Check runs Validate and sorts its findings into errors and warnings.
func (c *Config) Check(path string) *ConfigError {
	ce := &ConfigError{Path: path}
	for _, msg := range c.Validate() {
		if strings.Contains(msg, "warning:") {
			ce.Warnings = append(ce.Warnings, msg)
			continue
		}
		ce.Errors = append(ce.Errors, msg)
	}
	return ce
}
