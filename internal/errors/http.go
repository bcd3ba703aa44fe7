package errors

import "fmt"

// ClassifyHTTPStatus maps an HTTP response to a ClassifiedError.
// 4xx client errors are irrecoverable except 408 and 429; 5xx server
// errors and anything unexpected are treated as recoverable.
func ClassifyHTTPStatus(statusCode int, body string, underlying error) *ClassifiedError {
	return &ClassifiedError{
		Category:   categoryForStatus(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: underlying,
	}
}

func categoryForStatus(statusCode int) Category {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408, 429: // timeout / rate limit, worth retrying
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		// Unexpected status codes: be conservative and retry.
		return Recoverable
	}
}

// NewHTTPError builds a classified error for a failed request to the
// platform API. operation names the call site, e.g. "update record".
func NewHTTPError(statusCode int, body, operation string) *ClassifiedError {
	return ClassifyHTTPStatus(statusCode, body, fmt.Errorf("%s failed: HTTP %d", operation, statusCode))
}

// NewNetworkError builds a classified error for a transport-level failure.
// Network errors are always recoverable; they may be transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}

// NewValidationError builds an irrecoverable error for bad caller input.
// Validation failures must never be retried.
func NewValidationError(err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Irrecoverable,
		Underlying: err,
	}
}
