package store

import "errors"

// Sentinel errors of the document store. Handlers and transports map these to
// and from HTTP status codes.
var (
	// ErrNotFound reports a read, update or delete against an absent document.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a create with an id that is already in use.
	ErrConflict = errors.New("conflict")
	// ErrInvalidPath reports a malformed collection or id segment.
	ErrInvalidPath = errors.New("invalid path")
)
