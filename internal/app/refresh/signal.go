// Package refresh holds the counter the presentation layer watches to know
// when to scroll to the newest message. The counter only promises "has
// changed since last observed"; it carries no ordering of its own.
package refresh

import "sync/atomic"

type Signal struct {
	n atomic.Int64
}

func NewSignal() *Signal {
	return &Signal{}
}

// Bump increments the signal and returns the new value.
func (s *Signal) Bump() int64 {
	return s.n.Add(1)
}

// Value returns the current counter value.
func (s *Signal) Value() int64 {
	return s.n.Load()
}
