package timecode

import (
	"sync/atomic"
	"time"
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Clock is the running timecode for a single take. A Clock is started once
// and discarded after Stop; a new take gets a new Clock with a new ID.
type Clock struct {
	id      int
	now     func() time.Time
	start   time.Time
	stopped time.Time
	running bool
	final   string
}

// NewClock creates an idle clock. now defaults to time.Now, whose values carry
// a monotonic reading.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{
		id:    nextID(),
		now:   now,
		final: Zero,
	}
}

// ID identifies this clock instance. Tick messages tagged with another ID are stale.
func (c *Clock) ID() int {
	return c.id
}

// Start records the start instant. Starting a stopped clock does nothing.
func (c *Clock) Start() {
	if c.running || !c.start.IsZero() {
		return
	}
	c.start = c.now()
	c.running = true
}

// Running reports whether the clock is between Start and Stop.
func (c *Clock) Running() bool {
	return c.running
}

// Elapsed returns the time since Start, or the frozen duration after Stop.
func (c *Clock) Elapsed() time.Duration {
	if c.start.IsZero() {
		return 0
	}
	if !c.running {
		return c.stopped.Sub(c.start)
	}
	return c.now().Sub(c.start)
}

// Tick returns the current timecode. After Stop it returns the frozen value
// and false so the caller does not reschedule.
func (c *Clock) Tick() (string, bool) {
	if !c.running {
		return c.final, false
	}
	return Format(c.now().Sub(c.start)), true
}

// Stop halts the clock and returns the frozen timecode.
func (c *Clock) Stop() string {
	if !c.running {
		return c.final
	}
	c.stopped = c.now()
	c.final = Format(c.stopped.Sub(c.start))
	c.running = false
	return c.final
}
