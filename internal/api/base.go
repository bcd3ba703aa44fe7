// Package api talks to the platform's record REST API and builds the
// queued save jobs that write to it.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HTTPClient interface for dependency injection.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Record is the raw-format record document: platform field IDs mapped to
// their stored values. Managed fields hold JSON serialized as a string.
type Record map[string]any

// Field returns the record's value for a field ID as its serialized
// string form, and whether a usable (non-null, non-empty) value exists.
func (r Record) Field(id string) (string, bool) {
	v, ok := r[id]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	default:
		// Some deployments return the field already parsed; re-serialize
		// so preservation still copies it verbatim as one field value.
		b, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// ID returns the record's own identifier.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}
