package workitem

import "fmt"

// StoreError represents errors from work item store operations.
type StoreError struct {
	Type    string // transport_error, authentication_error, validation_error, not_found
	Message string
	Err     error
	Context string // work item id, query, operation
}

func (e *StoreError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("work item store error (%s) for %s: %s", e.Type, e.Context, e.Message)
	}
	return fmt.Sprintf("work item store error (%s): %s", e.Type, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsTransportError checks if the error is a retryable transport failure.
func IsTransportError(err error) bool {
	if storeErr, ok := err.(*StoreError); ok {
		return storeErr.Type == "transport_error"
	}
	return false
}

// IsValidationError checks if the store rejected the patch document.
func IsValidationError(err error) bool {
	if storeErr, ok := err.(*StoreError); ok {
		return storeErr.Type == "validation_error"
	}
	return false
}

// IsNotFoundError checks if the work item does not exist.
func IsNotFoundError(err error) bool {
	if storeErr, ok := err.(*StoreError); ok {
		return storeErr.Type == "not_found"
	}
	return false
}
