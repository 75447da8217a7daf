package van

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vancore/van/internal/constants"
	"github.com/vancore/van/internal/interfaces"
)

// endpointCounters tracks per-endpoint traffic, the cable-domain analogue
// of the teacher's per-device I/O counters.
type endpointCounters struct {
	bytesIn         atomic.Uint64
	bytesOut        atomic.Uint64
	ringMessagesIn  atomic.Uint64
	ringMessagesOut atomic.Uint64
	backpressure    atomic.Uint64
}

// Metrics tracks operational statistics across every cable endpoint,
// worker thread, and clock in a Runtime. It implements
// internal/interfaces.Observer directly, so it can be handed straight to
// cable.NewRuntime/clock.NewTable as the observer, grounded on the
// teacher's metrics.go Record*/Snapshot/Observer shape. Worker queue
// depths are recorded only for callers of ObserveQueueDepth;
// internal/worker does not report them.
type Metrics struct {
	endpoints [constants.EndpointCount]endpointCounters

	queueDepth    sync.Map // thread name -> *atomic.Int64 (last observed depth)
	maxQueueDepth sync.Map // thread name -> *atomic.Int64
	overruns      sync.Map // clock name -> *atomic.Uint64

	startTime atomic.Int64
}

// NewMetrics creates an empty Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.startTime.Store(time.Now().UnixNano())
	return m
}

// ObservePayload implements interfaces.Observer.
func (m *Metrics) ObservePayload(endpointID int, direction interfaces.Direction, bytes uint64) {
	if endpointID < 0 || endpointID >= constants.EndpointCount {
		return
	}
	c := &m.endpoints[endpointID]
	if direction == interfaces.DirectionIn {
		c.bytesIn.Add(bytes)
	} else {
		c.bytesOut.Add(bytes)
	}
}

// ObserveRingMessage implements interfaces.Observer.
func (m *Metrics) ObserveRingMessage(endpointID int, direction interfaces.Direction) {
	if endpointID < 0 || endpointID >= constants.EndpointCount {
		return
	}
	c := &m.endpoints[endpointID]
	if direction == interfaces.DirectionIn {
		c.ringMessagesIn.Add(1)
	} else {
		c.ringMessagesOut.Add(1)
	}
}

// ObserveBackpressure implements interfaces.Observer.
func (m *Metrics) ObserveBackpressure(endpointID int) {
	if endpointID < 0 || endpointID >= constants.EndpointCount {
		return
	}
	m.endpoints[endpointID].backpressure.Add(1)
}

// ObserveQueueDepth implements interfaces.Observer.
func (m *Metrics) ObserveQueueDepth(threadName string, depth int) {
	counter := m.counterFor(&m.queueDepth, threadName)
	counter.Store(int64(depth))

	maxCounter := m.counterFor(&m.maxQueueDepth, threadName)
	for {
		current := maxCounter.Load()
		if int64(depth) <= current {
			break
		}
		if maxCounter.CompareAndSwap(current, int64(depth)) {
			break
		}
	}
}

// ObserveOverrun implements interfaces.Observer.
func (m *Metrics) ObserveOverrun(clockName string) {
	v, _ := m.overruns.LoadOrStore(clockName, new(atomic.Uint64))
	v.(*atomic.Uint64).Add(1)
}

func (m *Metrics) counterFor(store *sync.Map, key string) *atomic.Int64 {
	v, _ := store.LoadOrStore(key, new(atomic.Int64))
	return v.(*atomic.Int64)
}

// EndpointSnapshot is a point-in-time view of one endpoint's counters.
type EndpointSnapshot struct {
	BytesIn         uint64
	BytesOut        uint64
	RingMessagesIn  uint64
	RingMessagesOut uint64
	Backpressure    uint64
}

// Snapshot is a point-in-time view of every counter Metrics tracks.
type Snapshot struct {
	Endpoints     [constants.EndpointCount]EndpointSnapshot
	QueueDepth    map[string]int64
	MaxQueueDepth map[string]int64
	Overruns      map[string]uint64
	UptimeNs      int64
}

// Snapshot returns a consistent-enough point-in-time copy of the metrics
// for reporting; individual fields may be a few nanoseconds stale
// relative to each other under concurrent load, same as the teacher's
// Snapshot.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		QueueDepth:    map[string]int64{},
		MaxQueueDepth: map[string]int64{},
		Overruns:      map[string]uint64{},
		UptimeNs:      time.Now().UnixNano() - m.startTime.Load(),
	}
	for i := range m.endpoints {
		c := &m.endpoints[i]
		snap.Endpoints[i] = EndpointSnapshot{
			BytesIn:         c.bytesIn.Load(),
			BytesOut:        c.bytesOut.Load(),
			RingMessagesIn:  c.ringMessagesIn.Load(),
			RingMessagesOut: c.ringMessagesOut.Load(),
			Backpressure:    c.backpressure.Load(),
		}
	}
	m.queueDepth.Range(func(k, v any) bool {
		snap.QueueDepth[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	m.maxQueueDepth.Range(func(k, v any) bool {
		snap.MaxQueueDepth[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	m.overruns.Range(func(k, v any) bool {
		snap.Overruns[k.(string)] = v.(*atomic.Uint64).Load()
		return true
	})
	return snap
}

var _ interfaces.Observer = (*Metrics)(nil)
