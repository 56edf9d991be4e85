package utils

import (
	"errors"
	"fmt"
)

// ErrorWithSuggestion wraps an error with a user-friendly suggestion.
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface.
func (e *ErrorWithSuggestion) Error() string {
	return fmt.Sprintf("%s\n\nSuggestion: %s", e.Err.Error(), e.Suggestion)
}

// GetSuggestion returns the suggestion text.
func (e *ErrorWithSuggestion) GetSuggestion() string {
	return e.Suggestion
}

// Unwrap returns the underlying error for error chain support.
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// WrapWithSuggestion wraps an existing error with a suggestion.
func WrapWithSuggestion(err error, suggestion string) error {
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// ErrNoAPIToken returns an error for when no API token is configured.
func ErrNoAPIToken() error {
	return &ErrorWithSuggestion{
		Err:        errors.New("no API token configured"),
		Suggestion: "Store a token with 'timeat auth set' or set TIMEAT_API_TOKEN",
	}
}

// ErrNoWorkspace returns an error for when no workspace is configured.
func ErrNoWorkspace() error {
	return &ErrorWithSuggestion{
		Err:        errors.New("no workspace configured"),
		Suggestion: "Set api.workspace_id in your config file",
	}
}

// ErrAPIUnreachable returns an error for when the tracking API cannot be reached.
func ErrAPIUnreachable(err error) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("time-tracking API unreachable: %w", err),
		Suggestion: "Check your network connection and api.base_url in your config file",
	}
}

// ErrUnknownStoreBackend returns an error for an unrecognized store backend name.
func ErrUnknownStoreBackend(name string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("unknown store backend: %q", name),
		Suggestion: "Set store.backend to 'file' or 'sqlite' in your config file",
	}
}
