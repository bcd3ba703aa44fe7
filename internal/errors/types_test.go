package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassifyHTTPStatus_Categories(t *testing.T) {
	cases := []struct {
		status int
		want   Category
	}{
		{400, Irrecoverable},
		{401, Irrecoverable},
		{403, Irrecoverable},
		{404, Irrecoverable},
		{408, Recoverable},
		{429, Recoverable},
		{500, Recoverable},
		{503, Recoverable},
		{302, Recoverable}, // unexpected, retried conservatively
	}
	for _, c := range cases {
		got := ClassifyHTTPStatus(c.status, "", fmt.Errorf("status %d", c.status))
		if got.Category != c.want {
			t.Fatalf("status %d: category = %v, want %v", c.status, got.Category, c.want)
		}
	}
}

func TestIsIrrecoverable(t *testing.T) {
	if IsIrrecoverable(errors.New("plain")) {
		t.Fatal("plain errors must default to recoverable")
	}
	if !IsIrrecoverable(NewValidationError(errors.New("missing recordId"))) {
		t.Fatal("validation errors must be irrecoverable")
	}
	if IsIrrecoverable(NewNetworkError("get record", errors.New("conn reset"))) {
		t.Fatal("network errors must be recoverable")
	}
}

func TestClassifiedError_Format(t *testing.T) {
	err := NewHTTPError(500, "boom", "update record")
	if !strings.Contains(err.Error(), "HTTP 500") || !strings.Contains(err.Error(), "Recoverable") {
		t.Fatalf("unexpected error string: %s", err.Error())
	}

	underlying := errors.New("inner")
	wrapped := &ClassifiedError{Category: Irrecoverable, Underlying: underlying}
	if !errors.Is(wrapped, underlying) {
		t.Fatal("Unwrap must expose the underlying error")
	}
}
