// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package clock provides an abstract layer over the standard time package so
// that code stamping sync metadata can be tested with a fixed time.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock is an interface to the standard library time.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the part of *time.Timer callers need to cancel a pending call.
type Timer interface {
	Stop() bool
}

type clock struct{}

func (c *clock) Now() time.Time {
	return time.Now()
}

func (c *clock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// New returns an instance of a real clock.
func New() Clock {
	return &clock{}
}

// Mock is a manually driven clock for tests.
type Mock struct {
	mu          sync.RWMutex
	currentTime time.Time
	timers      []*mockTimer
}

// NewMock returns a mock clock set to a fixed instant.
func NewMock() *Mock {
	return &Mock{
		currentTime: time.Date(2026, time.January, 2, 15, 4, 5, 0, time.UTC),
	}
}

// SetNow sets the current time of the mock clock and fires the timers that
// became due.
func (c *Mock) SetNow(t time.Time) {
	c.mu.Lock()
	c.currentTime = t
	due := c.dueLocked()
	c.mu.Unlock()

	fire(due)
}

// Advance moves the mock clock forward by d. Timers that became due run
// synchronously on the caller's goroutine, earliest first.
func (c *Mock) Advance(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	due := c.dueLocked()
	c.mu.Unlock()

	fire(due)
}

// AfterFunc arms a timer that fires on the first Advance or SetNow that
// moves the mock time to now+d or later.
func (c *Mock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &mockTimer{mock: c, at: c.currentTime.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// PendingTimers returns the number of armed timers.
func (c *Mock) PendingTimers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.timers)
}

func (c *Mock) dueLocked() []*mockTimer {
	var due, rest []*mockTimer
	for _, t := range c.timers {
		if t.at.After(c.currentTime) {
			rest = append(rest, t)
		} else {
			due = append(due, t)
		}
	}
	c.timers = rest
	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	return due
}

func (c *Mock) remove(t *mockTimer) bool {
	for i, cur := range c.timers {
		if cur == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

func fire(due []*mockTimer) {
	for _, t := range due {
		t.f()
	}
}

type mockTimer struct {
	mock *Mock
	at   time.Time
	f    func()
}

// Stop reports whether the timer was still armed.
func (t *mockTimer) Stop() bool {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()
	return t.mock.remove(t)
}

// Now returns the current mock time.
func (c *Mock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

// UnixMilli returns c.Now() as epoch milliseconds, the unit of every
// timestamp in sync metadata.
func UnixMilli(c Clock) int64 {
	return c.Now().UnixMilli()
}
