package sneequals

import (
	"errors"
	"fmt"
)

// ReadOnlyError is the panic value raised by any attempted mutation of a
// tracking facade. The tracked graph is immutable input for the duration of
// a session; writing through a facade is a programmer error and is rejected
// regardless of whether the session has ended.
type ReadOnlyError struct {
	// Op is the rejected operation ("set", "delete", "set-index", "append").
	Op string

	// Key is the object key or decimal array index involved, when known.
	Key string
}

// Error implements the error interface.
func (e *ReadOnlyError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("sneequals: read-only violation: %s %q on tracked value", e.Op, e.Key)
	}
	return fmt.Sprintf("sneequals: read-only violation: %s on tracked value", e.Op)
}

// RevokedError is the panic value raised by any access through a facade
// whose session has ended. Failing loudly here is deliberate: a facade that
// escaped its session must never silently serve stale data.
type RevokedError struct {
	// Op is the attempted operation ("get", "has", "keys", "track", ...).
	Op string
}

// Error implements the error interface.
func (e *RevokedError) Error() string {
	return fmt.Sprintf("sneequals: %s on revoked session", e.Op)
}

// IsReadOnly returns true if err is a read-only violation.
// Uses errors.As to handle wrapped errors.
func IsReadOnly(err error) bool {
	var ro *ReadOnlyError
	return errors.As(err, &ro)
}

// IsRevoked returns true if err is a revoked-session access.
// Uses errors.As to handle wrapped errors.
func IsRevoked(err error) bool {
	var rv *RevokedError
	return errors.As(err, &rv)
}
