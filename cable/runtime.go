// Package cable implements the shared-memory cable transport (§4.D): a
// bidirectional, in-order, flow-controlled byte-message channel between a
// controller and a follower endpoint, coordinated by a fixed 4-slot
// control ring per direction and backed by a fixed-size payload buffer
// per direction. Grounded throughout on original_source/os/os_cable.c;
// the surrounding Runtime/Endpoint/Open shape follows the teacher's
// backend.go Device/CreateAndServe texture.
package cable

import (
	"fmt"
	"sync"

	"github.com/vancore/van/internal/constants"
	"github.com/vancore/van/internal/interfaces"
	"github.com/vancore/van/internal/sem"
	"github.com/vancore/van/internal/shm"
	"github.com/vancore/van/internal/uapi"
	"github.com/vancore/van/internal/worker"
)

// Runtime owns the shared-memory region backing every cable pair and the
// table of currently-open endpoints, the Go analogue of the source's
// process-wide cab_dev[] plus the mapped shm segment.
type Runtime struct {
	region  *shm.Region
	creator bool

	epMu      sync.Mutex
	endpoints [constants.EndpointCount]*Endpoint

	waitTable waitTable

	threads  *worker.Table
	logger   interfaces.Logger
	observer interfaces.Observer
}

// NewRuntime creates (if creator) or attaches to the shared-memory file
// at path and returns a Runtime ready to Open endpoints against it,
// matching os_cab_init's shm-mapping step. logger and observer may be
// nil.
func NewRuntime(path string, creator bool, logger interfaces.Logger, observer interfaces.Observer) (*Runtime, error) {
	var region *shm.Region
	var err error
	if creator {
		region, err = shm.Create(path, TotalShmSize)
	} else {
		region, err = shm.Attach(path, TotalShmSize)
	}
	if err != nil {
		return nil, fmt.Errorf("cable: mapping %s: %w", path, err)
	}

	return &Runtime{
		region:   region,
		creator:  creator,
		threads:  worker.NewTable(logger),
		logger:   logger,
		observer: observer,
	}, nil
}

// Open attaches to one of the four fixed endpoints and starts its
// interrupt-handling goroutine, matching os_c_open. cfg.ID selects which
// endpoint (and, transitively, which pair and which side of it); the
// pair's shared-memory layout and role are derived from the static
// endpointSlots table, not supplied by the caller.
func (rt *Runtime) Open(cfg uapi.EndpointConfig) (*Endpoint, error) {
	slot, ok := endpointSlots[cfg.ID]
	if !ok {
		return nil, fmt.Errorf("cable: unknown endpoint id %d", cfg.ID)
	}

	rt.epMu.Lock()
	if rt.endpoints[cfg.ID] != nil {
		rt.epMu.Unlock()
		return nil, fmt.Errorf("cable: endpoint %s already open", slot.name)
	}
	rt.epMu.Unlock()

	layout := pairRegion(slot.pair)

	var inRingOff, outRingOff, inBufOff, outBufOff int
	if slot.role == uapi.RoleController {
		inRingOff, outRingOff = layout.ringAOff, layout.ringBOff
		inBufOff, outBufOff = layout.bufAOff, layout.bufBOff
	} else {
		inRingOff, outRingOff = layout.ringBOff, layout.ringAOff
		inBufOff, outBufOff = layout.bufBOff, layout.bufAOff
	}

	myInt, err := sem.Named(cfg.MyIntName)
	if err != nil {
		return nil, fmt.Errorf("cable: opening %s semaphore: %w", cfg.MyIntName, err)
	}
	otherInt, err := sem.Named(cfg.OtherIntName)
	if err != nil {
		return nil, fmt.Errorf("cable: opening %s semaphore: %w", cfg.OtherIntName, err)
	}

	name := cfg.Name
	if name == "" {
		name = slot.name
	}

	ep := &Endpoint{
		id:            cfg.ID,
		name:          name,
		role:          slot.role,
		mode:          cfg.Mode,
		myInt:         myInt,
		otherInt:      otherInt,
		suspendWriter: make(chan struct{}, 1),
		suspendReader: make(chan struct{}, 1),
		logger:        rt.logger,
		observer:      rt.observer,
	}
	ep.in.ring = newRingView(rt.region.Bytes[inRingOff : inRingOff+uapi.RingSize])
	ep.out.ring = newRingView(rt.region.Bytes[outRingOff : outRingOff+uapi.RingSize])
	ep.in.buf = rt.region.Bytes[inBufOff : inBufOff+constants.PayloadSize]
	ep.out.buf = rt.region.Bytes[outBufOff : outBufOff+constants.PayloadSize]

	thread := rt.threads.Create(name+"_int", worker.PrioritySoftRT, constants.EndpointThreadQueueSize)
	ep.thread = thread
	ep.destroyThread = func() { rt.threads.Destroy(thread) }
	thread.Send(ep.interruptLoop)

	rt.epMu.Lock()
	rt.endpoints[cfg.ID] = ep
	rt.epMu.Unlock()

	return ep, nil
}

// Close tears an endpoint down and frees its table slot, matching
// os_c_close.
func (rt *Runtime) Close(ep *Endpoint) {
	if ep == nil {
		return
	}

	rt.waitTable.mu.Lock()
	for _, s := range rt.waitTable.slots {
		if s == ep.waitSlot && s != nil {
			ep.syncWait.Store(false)
			ep.waitSlot = nil
		}
	}
	rt.waitTable.mu.Unlock()

	ep.Close()

	rt.epMu.Lock()
	if rt.endpoints[ep.id] == ep {
		rt.endpoints[ep.id] = nil
	}
	rt.epMu.Unlock()
}

// Ripcord performs best-effort cleanup on abnormal exit: it closes every
// still-open endpoint, unmaps the shared-memory region and, if this
// Runtime created the file, unlinks it, matching os_cab_ripcord/os_cab_exit.
// Named semaphores are not unlinked here. It
// never panics, so it is safe to call from a deferred recover handler.
func (rt *Runtime) Ripcord(coverage bool) {
	rt.epMu.Lock()
	open := make([]*Endpoint, 0, constants.EndpointCount)
	for _, ep := range rt.endpoints {
		if ep != nil {
			open = append(open, ep)
		}
	}
	rt.epMu.Unlock()

	for _, ep := range open {
		func() {
			defer func() { recover() }()
			rt.Close(ep)
		}()
	}

	if coverage && rt.logger != nil {
		rt.logger.Debugf("cable: ripcord closed %d endpoint(s)", len(open))
	}

	if rt.region != nil {
		_ = rt.region.Close()
	}
}
