package mapping

import (
	"fmt"
	"strings"
)

// ValidationError aggregates every problem found in a mapping file so a
// malformed configuration reports all issues at once and halts the run.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("mapping configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// LoadError represents a failure reading or parsing a mapping file.
type LoadError struct {
	FilePath string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load mapping file '%s': %v", e.FilePath, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsValidationError checks whether the error is a mapping validation
// failure.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}
