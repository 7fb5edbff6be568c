// Package system provides the wall clock used to time script runs.
package system

import "time"

// Clock implements instance.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current local time. The monotonic reading is kept so that
// durations computed with Sub are immune to wall-clock adjustments.
func (Clock) Now() time.Time {
	return time.Now()
}
