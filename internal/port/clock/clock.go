// Package clock defines the engine time source.
package clock

import "time"

// Clock supplies the current time. Every timestamp the engine writes
// (create times, last-updated, history events) comes from one Clock, so
// tests can pin time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
