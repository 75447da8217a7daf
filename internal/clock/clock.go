// Package clock implements the periodic clock with overrun detection
// (§4.C): a repeating timer whose owner rendezvous with each tick via
// Barrier, and which detects and recovers from a caller that falls behind
// by more than one period. Grounded on original_source/os/os_clock.c
// (tm_handler/os_clock_barrier's busy/overrun bookkeeping), realized with
// a self-rescheduling time.AfterFunc instead of POSIX CLOCK_REALTIME
// timers plus a channel in place of the named suspend semaphore.
package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vancore/van/internal/interfaces"
)

// Stats mirrors the bookkeeping os_clock_trace prints: cycle count,
// busy/min/max transition time, and the overrun tally.
type Stats struct {
	Name     string
	Cycles   int
	Interval time.Duration
	Busy     time.Duration
	Min      time.Duration
	Max      time.Duration
	Overruns int
	Started  time.Time
	Stopped  time.Time
}

// Clock is a single periodic timer slot.
type Clock struct {
	id       int
	name     string
	interval time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	cStart    time.Time
	sStart    time.Time
	sEnd      time.Time
	cycles   int
	overruns int
	busy     time.Duration
	min      time.Duration
	max      time.Duration
	stopped  bool

	suspended int32 // atomic: 1 while Barrier is waiting for the next tick
	wake      chan struct{}

	observer interfaces.Observer
}

// ID returns the clock's table slot index.
func (c *Clock) ID() int { return c.id }

// Name returns the clock's name, assigned at Init.
func (c *Clock) Name() string { return c.name }

func (c *Clock) fire() {
	if atomic.SwapInt32(&c.suspended, 0) == 1 {
		// A Barrier caller was waiting; release it.
		select {
		case c.wake <- struct{}{}:
		default:
		}
	} else if c.observer != nil {
		c.observer.ObserveOverrun(c.name)
	}

	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if !stopped {
		c.timer.Reset(c.interval)
	}
}

// Barrier blocks the caller until the next tick (or returns immediately,
// reporting an overrun, if the caller is already behind by more than one
// period). Returns true on overrun, matching os_clock_barrier's -1 return.
func (c *Clock) Barrier() bool {
	c.mu.Lock()
	c.cycles++
	now := time.Now()
	elapsed := now.Sub(c.cStart)
	overrun := elapsed > c.interval

	c.busy = elapsed
	if c.cycles == 1 || elapsed < c.min {
		c.min = elapsed
	}
	if elapsed > c.max {
		c.max = elapsed
	}
	c.mu.Unlock()

	if overrun {
		c.mu.Lock()
		c.overruns++
		c.mu.Unlock()
		if c.observer != nil {
			c.observer.ObserveOverrun(c.name)
		}
		c.timer.Reset(c.interval)
	} else {
		atomic.StoreInt32(&c.suspended, 1)
		<-c.wake
	}

	c.mu.Lock()
	c.cStart = time.Now()
	c.mu.Unlock()

	return overrun
}

// Trace returns a snapshot of the clock's statistics.
func (c *Clock) Trace() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Name:     c.name,
		Cycles:   c.cycles,
		Interval: c.interval,
		Busy:     c.busy,
		Min:      c.min,
		Max:      c.max,
		Overruns: c.overruns,
		Started:  c.sStart,
		Stopped:  c.sEnd,
	}
}
