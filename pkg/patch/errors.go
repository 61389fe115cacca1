package patch

import "fmt"

// BuildError represents a failure to assemble a patch document.
type BuildError struct {
	Type    string // validation_gap, iteration_error
	Message string
	Err     error
	Context string
}

func (e *BuildError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("patch build error (%s) for %s: %s", e.Type, e.Context, e.Message)
	}
	return fmt.Sprintf("patch build error (%s): %s", e.Type, e.Message)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsValidationGap checks whether the record is missing a field the
// target system requires. Such records are skipped with a recorded
// failure, not treated as fatal.
func IsValidationGap(err error) bool {
	if buildErr, ok := err.(*BuildError); ok {
		return buildErr.Type == "validation_gap"
	}
	return false
}
