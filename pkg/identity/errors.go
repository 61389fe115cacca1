package identity

import "fmt"

// LookupError wraps a store failure during identity resolution. It is
// returned inside a Failed LookupResult, never thrown past that
// boundary.
type LookupError struct {
	Issue string
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("identity lookup failed for %s: %v", e.Issue, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
