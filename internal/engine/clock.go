package engine

import "time"

// Task is a handle to a scheduled action. Stop reports whether the call
// prevented the action from running.
type Task interface {
	Stop() bool
}

// Clock schedules the engine's tick and revert actions.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Task
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// RealClock is backed by the runtime timers.
func RealClock() Clock { return realClock{} }
