package standardize

import "github.com/google/uuid"

// newID generates an identity for records that arrive without one.
func newID() string { return uuid.NewString() }
