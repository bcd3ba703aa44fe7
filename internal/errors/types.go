// Package errors classifies failures for the save pipeline so the queue
// can decide between retrying with backoff and failing fast.
package errors

import "fmt"

// Category determines how the save queue reacts to an error.
type Category int

const (
	// Recoverable errors are retried with exponential backoff.
	// Examples: 5xx responses, timeouts, connection resets.
	Recoverable Category = iota

	// Irrecoverable errors fail immediately without retry.
	// Examples: 400 Bad Request, 401 Unauthorized, malformed payloads.
	Irrecoverable
)

func (c Category) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError carries a Category alongside the original error so retry
// policy can be decided without string matching.
type ClassifiedError struct {
	Category   Category
	StatusCode int    // HTTP status (0 for non-HTTP errors)
	Body       string // response body, kept for diagnostics
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// IsIrrecoverable reports whether err must not be retried.
func IsIrrecoverable(err error) bool {
	if classified, ok := err.(*ClassifiedError); ok {
		return classified.Category == Irrecoverable
	}
	return false
}
