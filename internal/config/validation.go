// Package config handles configuration loading and validation for expandd.
package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig checks the whole configuration, collecting every problem
// rather than stopping at the first.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Engine.BufferCap < 0 {
		errs = append(errs, ValidationError{
			Field:   "engine.buffer_cap",
			Message: fmt.Sprintf("must be non-negative, got %d", c.Engine.BufferCap),
		})
	}
	if c.Engine.SettleMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "engine.settle_ms",
			Message: fmt.Sprintf("must be non-negative, got %d", c.Engine.SettleMs),
		})
	}

	if c.Heartbeat.IntervalSec < 0 {
		errs = append(errs, ValidationError{
			Field:   "heartbeat.interval_sec",
			Message: fmt.Sprintf("must be non-negative, got %d", c.Heartbeat.IntervalSec),
		})
	}
	if c.Heartbeat.Cycles < 0 {
		errs = append(errs, ValidationError{
			Field:   "heartbeat.cycles",
			Message: fmt.Sprintf("must be non-negative, got %d", c.Heartbeat.Cycles),
		})
	}

	if c.Rules.DebounceMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "rules.debounce_ms",
			Message: fmt.Sprintf("must be non-negative, got %d", c.Rules.DebounceMs),
		})
	}
	if c.Rules.Path != "" {
		switch {
		case strings.HasSuffix(c.Rules.Path, ".json"),
			strings.HasSuffix(c.Rules.Path, ".yaml"),
			strings.HasSuffix(c.Rules.Path, ".yml"):
		default:
			errs = append(errs, ValidationError{
				Field:   "rules.path",
				Message: "must end in .json, .yaml, or .yml",
			})
		}
	}

	if c.Storage.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "storage.path",
			Message: "must not be empty",
		})
	}

	if c.IPC.Enabled && c.IPC.SocketPath == "" {
		errs = append(errs, ValidationError{
			Field:   "ipc.socket_path",
			Message: "must not be empty when IPC is enabled",
		})
	}
	if c.IPC.TimeoutSec < 0 {
		errs = append(errs, ValidationError{
			Field:   "ipc.timeout_sec",
			Message: fmt.Sprintf("must be non-negative, got %d", c.IPC.TimeoutSec),
		})
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("must be debug, info, warn, or error, got %q", c.Logging.Level),
		})
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("must be text or json, got %q", c.Logging.Format),
		})
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr", "file":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("must be stdout, stderr, or file, got %q", c.Logging.Output),
		})
	}
	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		errs = append(errs, ValidationError{
			Field:   "logging.file_path",
			Message: "must not be empty when output is file",
		})
	}
	if c.Logging.RingLines < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.ring_lines",
			Message: fmt.Sprintf("must be non-negative, got %d", c.Logging.RingLines),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
