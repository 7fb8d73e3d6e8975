// Package kvstore provides the flat key-value persistence the ledger is stored in.
package kvstore

import (
	"errors"
	"fmt"
	"regexp"
)

// Store is a synchronous key-value store. Values are opaque bytes (JSON in practice).
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// ErrInvalidKey is returned for keys that cannot be stored safely.
var ErrInvalidKey = errors.New("invalid key")

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Open returns a Store for the named backend rooted at path.
// Backends: "file" (path is a directory), "sqlite" (path is a database file), "memory" (path ignored).
func Open(backend, path string) (Store, error) {
	switch backend {
	case "file", "":
		return NewFileStore(path)
	case "sqlite":
		return OpenSQLite(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", backend)
	}
}

// Close closes s if it holds resources.
func Close(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
