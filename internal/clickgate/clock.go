package clickgate

import "time"

// Timer is a cancellable deferred action.
type Timer interface {
	// Stop prevents the action from running. It reports false when the
	// action already ran or was already stopped.
	Stop() bool
}

// Clock schedules deferred actions. Tests swap in clocktest.Clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock returns a Clock backed by the runtime timers.
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
