package application

import "time"

// Timer is a cancellable handle for scheduled future work. Stop reports
// whether the timer was cancelled before firing.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn to run once after d and returns its handle.
type TimerFactory func(d time.Duration, fn func()) Timer

// StdTimerFactory backs timers with time.AfterFunc.
func StdTimerFactory(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
