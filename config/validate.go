package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jrife/warden/collection/backend/plugins"
	"go.uber.org/zap/zapcore"
)

// FieldError is a validation error of one configuration field
type FieldError struct {
	// Field is the dotted path to the field, e.g. "bbolt.open_timeout"
	Field   string
	Message string
}

// Error implements error
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError of a configuration
type ValidationError struct {
	Errors []FieldError
}

// Error implements error
func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	messages := make([]string, len(e.Errors))

	for i, err := range e.Errors {
		messages[i] = err.Error()
	}

	return fmt.Sprintf("configuration validation failed with %d errors: %s", len(e.Errors), strings.Join(messages, "; "))
}

// Validate returns a ValidationError listing every invalid field
func Validate(cfg *Config) error {
	var errs []FieldError

	if !slices.Contains(plugins.Names(), cfg.Backend) {
		errs = append(errs, FieldError{
			Field:   "backend",
			Message: fmt.Sprintf("unknown backend %q, expected one of %s", cfg.Backend, strings.Join(plugins.Names(), ", ")),
		})
	}

	if cfg.Memory.CapacityHint < 0 {
		errs = append(errs, FieldError{Field: "memory.capacity_hint", Message: "must not be negative"})
	}

	if cfg.Memory.TXCapacityHint < 0 {
		errs = append(errs, FieldError{Field: "memory.tx_capacity_hint", Message: "must not be negative"})
	}

	if cfg.BBolt.OpenTimeout < 0 {
		errs = append(errs, FieldError{Field: "bbolt.open_timeout", Message: "must not be negative"})
	}

	if cfg.SQLite.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "sqlite.busy_timeout", Message: "must not be negative"})
	}

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, FieldError{Field: "log.level", Message: err.Error()})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}
