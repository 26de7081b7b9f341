package domain

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated means there is no current identity. Send and subscribe
// become no-ops in that state; callers surface it as a status message.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrUserNotFound is returned by UserDirectory lookups.
var ErrUserNotFound = errors.New("user not found")

// WriteError reports that one half of a mirrored write failed. The other
// half is neither retried nor rolled back.
type WriteError struct {
	Side WriteSide
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s-side write failed: %v", e.Side, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// DecodeError reports a single document whose payload could not be parsed.
// The event is dropped and processing continues.
type DecodeError struct {
	DocID string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode document %s: %v", e.DocID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
