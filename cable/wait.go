package cable

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vancore/van/internal/constants"
	"github.com/vancore/van/internal/uapi"
)

// waitSlot is one row of the process-wide wait table, the Go realization
// of cab_wait_t: an edge-triggered probe latch paired with a suspend
// channel, shared by every endpoint assigned to the same WaitSet.
type waitSlot struct {
	probe atomic.Bool
	wake  chan struct{}
}

// WaitSet lets a caller block until any one of several endpoints becomes
// readable or writable, matching os_c_wait_init/os_c_wait/os_c_wait_release
// (§4.D.8). Endpoints assigned to a WaitSet must be non-blocking: the
// point of waiting externally is to multiplex several endpoints on one
// goroutine instead of dedicating a goroutine to each.
type WaitSet struct {
	rt  *Runtime
	idx int
}

// Wait blocks until at least one assigned endpoint has signalled since
// the last Wait call, edge-triggered: a signal that arrived before Wait
// was called is not lost, but back-to-back signals on the same endpoint
// before Wait is polled again are observed as a single wakeup.
func (w *WaitSet) Wait() {
	slot := w.rt.waitSlotAt(w.idx)
	if !slot.probe.Swap(false) {
		<-slot.wake
	}
}

// Release frees the wait slot and detaches it from every endpoint that
// was assigned to it, matching os_c_wait_release.
func (w *WaitSet) Release() {
	w.rt.releaseWaitSet(w.idx)
}

func newWaitSlot() *waitSlot {
	return &waitSlot{wake: make(chan struct{}, 1)}
}

// waitTable is the fixed-size table of wait slots owned by a Runtime.
type waitTable struct {
	mu    sync.Mutex
	slots [constants.EndpointCount]*waitSlot
}

func (rt *Runtime) waitSlotAt(idx int) *waitSlot {
	rt.waitTable.mu.Lock()
	defer rt.waitTable.mu.Unlock()
	return rt.waitTable.slots[idx]
}

// WaitInit assigns a fresh wait slot to the given endpoints and returns a
// WaitSet to block on it, matching os_c_wait_init.
func (rt *Runtime) WaitInit(endpoints ...*Endpoint) *WaitSet {
	if len(endpoints) < 1 {
		panic("cable: WaitInit requires at least one endpoint")
	}

	rt.waitTable.mu.Lock()
	idx := -1
	for i, s := range rt.waitTable.slots {
		if s == nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		rt.waitTable.mu.Unlock()
		panic(fmt.Sprintf("cable: wait table full, limit is %d", constants.EndpointCount))
	}
	slot := newWaitSlot()
	rt.waitTable.slots[idx] = slot
	rt.waitTable.mu.Unlock()

	for _, ep := range endpoints {
		if ep.mode != uapi.ModeNonBlocking {
			panic(fmt.Sprintf("cable: %s must be opened non-blocking to join a WaitSet", ep.name))
		}
		ep.waitSlot = slot
		ep.syncWait.Store(true)
	}

	return &WaitSet{rt: rt, idx: idx}
}

func (rt *Runtime) releaseWaitSet(idx int) {
	rt.waitTable.mu.Lock()
	defer rt.waitTable.mu.Unlock()

	slot := rt.waitTable.slots[idx]
	if slot == nil {
		return
	}

	rt.epMu.Lock()
	for _, ep := range rt.endpoints {
		if ep != nil && ep.waitSlot == slot {
			ep.syncWait.Store(false)
			ep.waitSlot = nil
		}
	}
	rt.epMu.Unlock()

	rt.waitTable.slots[idx] = nil
}
