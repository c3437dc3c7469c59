package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingEnv indicates one or more required variables are unset
	ErrMissingEnv = errors.New("missing required environment variables")

	// ErrInvalidValue indicates a field has an invalid value
	ErrInvalidValue = errors.New("invalid field value")
)

// MissingEnvError names every required variable that was not provided.
// Its message is shown to operators and end users verbatim.
type MissingEnvError struct {
	Vars []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("Missing required environment variables: %s. Please set them in your environment or .env file.",
		strings.Join(e.Vars, ", "))
}

func (e *MissingEnvError) Unwrap() error {
	return ErrMissingEnv
}

// ValidationError wraps configuration validation errors with context
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field '%s' (%q): %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(field, value string, err error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Err: err}
}

// LoadError wraps configuration loading errors with file context
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new load error
func NewLoadError(file string, err error) *LoadError {
	return &LoadError{File: file, Err: err}
}
