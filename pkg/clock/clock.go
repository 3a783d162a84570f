// Package clock abstracts wall-clock reads so term derivation and
// enrollment-period checks can be pinned in tests.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock in UTC.
type System struct{}

// Now implements Clock.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant.
type Fixed time.Time

// Now implements Clock.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Func adapts a plain function to Clock.
type Func func() time.Time

// Now implements Clock.
func (f Func) Now() time.Time {
	return f()
}

// Today truncates t to midnight in its own location.
func Today(c Clock) time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
