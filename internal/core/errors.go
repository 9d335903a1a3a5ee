package core

import (
	"errors"
	"fmt"
)

// ValidationError reports caller-supplied data that violates a domain rule.
// It is always recoverable by the caller and never retried internally.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigError reports a category catalog that failed to load or parse.
// It is fatal at startup; no operation proceeds without a loaded catalog.
type ConfigError struct {
	Source string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid catalog: %s", e.Reason)
	}
	return fmt.Sprintf("invalid catalog %s: %s", e.Source, e.Reason)
}

// StorageError reports a failure of the persistence medium. The operation it
// wraps has no partial effect; retrying is left to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
