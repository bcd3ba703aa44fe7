package types

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/studykit/cardsync/internal/savequeue"
)

// ------------------------------
// Shared Interfaces
// ------------------------------

// Executor interface for dependency injection (used by queued saves).
type Executor interface {
	Submit(context.Context, string, savequeue.Job) error
}

// HTTPClient interface for dependency injection.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ------------------------------
// Shared Errors
// ------------------------------

// ErrNotFound is returned when the backing record does not exist.
var ErrNotFound = fmt.Errorf("record not found")

// ------------------------------
// Validation
// ------------------------------

// recordIDRegex matches platform record IDs: 24 lowercase hex characters.
var recordIDRegex = regexp.MustCompile(`^[a-f0-9]{24}$`)

// ValidateRecordID checks the platform record ID format. Validation
// failures happen before a save enters the queue and are never retried.
func ValidateRecordID(recordID string) error {
	if recordID == "" {
		return fmt.Errorf("recordId is required")
	}
	if !recordIDRegex.MatchString(recordID) {
		return fmt.Errorf("recordId must be a 24-character hex identifier")
	}
	return nil
}

// ValidateSaveType checks that a save names a known section.
func ValidateSaveType(t SaveType) error {
	if t == "" {
		return fmt.Errorf("save type is required")
	}
	if !t.Valid() {
		return fmt.Errorf("unknown save type %q", t)
	}
	return nil
}

// ValidateIDPresent checks a required identifier field is non-empty.
func ValidateIDPresent(id, fieldName string) error {
	if id == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}
