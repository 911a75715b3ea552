package utils

import "time"

// Clock abstracts wall-clock reads and timer scheduling so retry logic can be
// tested without real waits.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc schedules f to run after d and returns a handle that can
	// cancel the pending call.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled call.
type Timer interface {
	// Stop cancels the pending call. It reports whether the call was still
	// pending.
	Stop() bool
}

type realClock struct{}

// NewClock returns a Clock backed by the runtime timer wheel.
func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
