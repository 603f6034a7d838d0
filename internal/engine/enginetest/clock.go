// Package enginetest provides a manually advanced clock for driving engine
// timers in tests.
package enginetest

import (
	"sync"
	"time"

	engine "github.com/CodeAndHammer/parludo/internal/engine"
)

type fakeTask struct {
	clock   *FakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTask) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// FakeClock fires scheduled functions only when advanced.
type FakeClock struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*fakeTask
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) engine.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTask{clock: c, at: c.now.Add(d), f: f}
	c.tasks = append(c.tasks, t)
	return t
}

// Advance moves time forward by d, running due tasks in order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var next *fakeTask
		for _, t := range c.tasks {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.f()
	}
}

// Pending counts scheduled tasks that have neither fired nor been stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
