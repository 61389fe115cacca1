package github

import "fmt"

// SourceError represents errors from source tracker operations.
type SourceError struct {
	Type    string // transport_error, not_found, invalid_input, export_error
	Message string
	Err     error
	Context string
}

func (e *SourceError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("source tracker error (%s) for %s: %s", e.Type, e.Context, e.Message)
	}
	return fmt.Sprintf("source tracker error (%s): %s", e.Type, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsNotFoundError checks if the error indicates a missing issue.
func IsNotFoundError(err error) bool {
	if srcErr, ok := err.(*SourceError); ok {
		return srcErr.Type == "not_found"
	}
	return false
}

// IsTransportError checks if the error is a retryable transport failure.
func IsTransportError(err error) bool {
	if srcErr, ok := err.(*SourceError); ok {
		return srcErr.Type == "transport_error"
	}
	return false
}
