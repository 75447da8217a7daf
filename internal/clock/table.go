package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/vancore/van/internal/constants"
	"github.com/vancore/van/internal/interfaces"
)

// Table is the process-wide table of live clocks, bound to
// constants.ClockLimit entries, mirroring the source's static tm_t.elem
// array (original_source/os/os_clock.c).
type Table struct {
	mu     sync.Mutex
	clocks [constants.ClockLimit]*Clock

	observer interfaces.Observer
}

// NewTable creates an empty clock table. observer may be nil.
func NewTable(observer interfaces.Observer) *Table {
	return &Table{observer: observer}
}

// Create installs a periodic clock with the given name and interval and
// starts it immediately. Exceeding constants.ClockLimit live clocks traps.
func (t *Table) Create(name string, interval time.Duration) *Clock {
	if interval <= 0 {
		panic("clock: interval must be positive")
	}

	t.mu.Lock()
	idx := -1
	for i, c := range t.clocks {
		if c == nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		panic(fmt.Sprintf("clock: table full, limit is %d", constants.ClockLimit))
	}

	now := time.Now()
	c := &Clock{
		id:       idx,
		name:     name,
		interval: interval,
		cStart:   now,
		sStart:   now,
		wake:     make(chan struct{}, 1),
		observer: t.observer,
	}
	c.timer = time.AfterFunc(interval, c.fire)
	t.clocks[idx] = c
	t.mu.Unlock()

	return c
}

// Stop disarms the clock's timer without freeing its table slot.
func (t *Table) Stop(c *Clock) {
	c.mu.Lock()
	c.stopped = true
	c.sEnd = time.Now()
	c.mu.Unlock()
	c.timer.Stop()
}

// Start re-arms a stopped clock.
func (t *Table) Start(c *Clock) {
	c.mu.Lock()
	c.stopped = false
	c.cStart = time.Now()
	c.mu.Unlock()
	c.timer.Reset(c.interval)
}

// Delete stops and frees the clock's table slot.
func (t *Table) Delete(c *Clock) {
	c.timer.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clocks[c.id] == c {
		t.clocks[c.id] = nil
	}
}

// Msleep blocks the calling goroutine for the given number of
// milliseconds, matching os_clock_msleep. There is no ecosystem sleep
// primitive worth reaching for here: time.Sleep already does exactly this.
func Msleep(msec int) {
	if msec < 1 {
		return
	}
	time.Sleep(time.Duration(msec) * time.Millisecond)
}
