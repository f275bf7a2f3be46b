// Package timer provides a cancellable one-second countdown used to
// enforce exam time limits. It is self-contained and reusable.
package timer

import (
	"sync"
	"time"
)

// Countdown decrements once per tick interval while running, stops
// itself at zero and reports expiry. All methods are safe for
// concurrent use; the tick goroutine mutates only the countdown's own
// state.
type Countdown struct {
	mu        sync.Mutex
	initial   int
	remaining int
	running   bool
	interval  time.Duration
	stopCh    chan struct{}
	onExpire  func()
}

// New creates a countdown holding the given number of seconds, ticking
// once per second. onExpire, if non-nil, is invoked once from the tick
// goroutine when the countdown reaches zero.
func New(seconds int, onExpire func()) *Countdown {
	return NewWithInterval(seconds, time.Second, onExpire)
}

// NewWithInterval is like New with a custom tick interval, for tests.
func NewWithInterval(seconds int, interval time.Duration, onExpire func()) *Countdown {
	return &Countdown{
		initial:   seconds,
		remaining: seconds,
		interval:  interval,
		onExpire:  onExpire,
	}
}

// Start begins ticking. Starting an already-running countdown, or one
// with no time remaining, is a no-op.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running || c.remaining <= 0 {
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	go c.run(c.stopCh)
}

func (c *Countdown) run(stopCh chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if expired := c.tick(stopCh); expired {
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
		case <-stopCh:
			return
		}
	}
}

// tick decrements remaining time and reports whether this tick drained
// the countdown. A tick from a superseded goroutine (stale stopCh) is
// ignored.
func (c *Countdown) tick(stopCh chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.stopCh != stopCh {
		return false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false
		c.stopCh = nil
		return true
	}
	return false
}

// Stop halts ticking and releases the tick goroutine. Stopping a
// stopped countdown is a no-op.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) stopLocked() {
	if !c.running {
		return
	}
	c.running = false
	close(c.stopCh)
	c.stopCh = nil
}

// Reset stops the countdown and restores the initial duration, or the
// provided override when newSeconds is non-nil.
func (c *Countdown) Reset(newSeconds *int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	if newSeconds != nil {
		c.remaining = *newSeconds
		if c.remaining < 0 {
			c.remaining = 0
		}
	} else {
		c.remaining = c.initial
	}
}

// AddTime adds delta seconds to the remaining time. Negative deltas are
// allowed; remaining never drops below zero.
func (c *Countdown) AddTime(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining += delta
	if c.remaining < 0 {
		c.remaining = 0
	}
}

// SetTime replaces the remaining time.
func (c *Countdown) SetTime(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	c.remaining = seconds
}

// SecondsRemaining returns the current remaining time in seconds.
func (c *Countdown) SecondsRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// IsExpired reports whether the countdown has run out.
func (c *Countdown) IsExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining <= 0
}

// IsRunning reports whether the countdown is ticking.
func (c *Countdown) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
