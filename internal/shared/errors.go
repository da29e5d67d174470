package shared

import "errors"

var (
	// ErrNotFound indicates a missing record.
	ErrNotFound = errors.New("not found")
	// ErrSessionClosed indicates an operation against a closed editing session.
	ErrSessionClosed = errors.New("editing session closed")
)
