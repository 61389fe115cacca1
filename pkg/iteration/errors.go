package iteration

import "fmt"

// ResolverError represents errors from iteration resolution.
type ResolverError struct {
	Type    string // load_error, create_error, invalid_input
	Message string
	Err     error
	Context string
}

func (e *ResolverError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("iteration resolver error (%s) for %s: %s", e.Type, e.Context, e.Message)
	}
	return fmt.Sprintf("iteration resolver error (%s): %s", e.Type, e.Message)
}

func (e *ResolverError) Unwrap() error {
	return e.Err
}

// IsLoadError checks if the error came from the initial cache load.
func IsLoadError(err error) bool {
	if resErr, ok := err.(*ResolverError); ok {
		return resErr.Type == "load_error"
	}
	return false
}
