package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable means a store reported it was not ready.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound means no batch or record exists for the key.
	ErrNotFound = errors.New("not found")
)

// WriteError records a failed write against one store.
type WriteError struct {
	Store string // adapter name
	Op    string // "batch", "record" or "flush"
	Key   string // period key or record id
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store write failed: %s %s %q: %v", e.Store, e.Op, e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// wrapWrite wraps err in a WriteError unless it already is one.
func wrapWrite(store, op, key string, err error) error {
	if err == nil {
		return nil
	}
	var we *WriteError
	if errors.As(err, &we) {
		return err
	}
	return &WriteError{Store: store, Op: op, Key: key, Err: err}
}
