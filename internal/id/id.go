package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator produces fresh opaque ids.
type Generator func() string

// New returns a random (version 4) UUID string.
func New() string {
	return uuid.NewString()
}

// Sequence returns a Generator yielding prefix-1, prefix-2, ... for deterministic tests and fixtures.
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// Valid reports whether s is a well-formed UUID.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}

// Short returns the first eight characters of an id for display.
func Short(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}
