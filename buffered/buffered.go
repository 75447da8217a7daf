// Package buffered implements the buffered endpoint (§4.E): a cable
// endpoint wrapped in two fixed-capacity record queues (internal/record),
// with the cable's async read/write callbacks doing the shuffling between
// the queues and the wire. It decouples a user calling read/write at its
// own pace from the interrupt goroutine delivering/consuming payloads at
// the cable's pace. Grounded on original_source/os/os_buffered.c.
package buffered

import (
	"fmt"
	"sync"

	"github.com/vancore/van/cable"
	"github.com/vancore/van/internal/constants"
	"github.com/vancore/van/internal/interfaces"
	"github.com/vancore/van/internal/record"
	"github.com/vancore/van/internal/uapi"
)

// configs is the static, one-entry name table (§6), preserved literally
// for compatibility: only "/display" names a buffered endpoint.
var configs = map[string]uapi.EndpointConfig{
	"/display": {
		ID:           uapi.EndpointDisplay,
		Mode:         uapi.ModeBlocking,
		MyIntName:    "van_disp_int",
		OtherIntName: "van_c_di_int",
	},
}

// recordOverhead is the one placeholder byte record.WriteRecord needs past
// the real payload to hold the terminator.
const recordOverhead = 1

// Endpoint is one open buffered endpoint: a cable endpoint plus the in
// (cable -> user) and out (user -> cable) record queues shuffled between
// it by the installed async callbacks.
type Endpoint struct {
	name  string
	cable *cable.Endpoint

	in  *record.Queue
	out *record.Queue

	mu          sync.Mutex
	readNeeded  bool // in-queue was full when deliver_from_cable last tried it
	writeNeeded bool // out-queue was empty when fill_from_user last tried it

	observer interfaces.Observer
}

// Open looks up name in the static table, attaches the underlying cable
// endpoint, and installs the async callbacks, matching os_buf_open. Both
// latches start set, so the first successful Write kicks AWrite and the
// first successful Read kicks ARead, matching the source's trigger=1
// initial state.
// observer may be nil; when non-nil it is sent ObserveBackpressure calls
// whenever a queue is full/empty on the producing side.
func Open(rt *cable.Runtime, name string, observer interfaces.Observer) (*Endpoint, error) {
	cfg, ok := configs[name]
	if !ok {
		return nil, fmt.Errorf("buffered: unknown name %q", name)
	}

	ep, err := rt.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("buffered: opening %q: %w", name, err)
	}

	b := &Endpoint{
		name:        name,
		cable:       ep,
		in:          record.New(constants.BufferedQueueSize),
		out:         record.New(constants.BufferedQueueSize),
		readNeeded:  true,
		writeNeeded: true,
		observer:    observer,
	}
	ep.Action(cable.AsyncCallbacks{
		Read:  b.deliverFromCable,
		Write: b.fillFromUser,
	})
	return b, nil
}

// Close tears the underlying cable endpoint down and releases this
// buffered endpoint's queues.
func (b *Endpoint) Close(rt *cable.Runtime) {
	rt.Close(b.cable)
}

// deliverFromCable is installed as the cable endpoint's async Read
// callback: it tries to land one record in the in-queue so a later Read
// can drain it, matching os_buf_int_readable.
func (b *Endpoint) deliverFromCable(_ int, buf []byte) int {
	rec := make([]byte, len(buf)+recordOverhead)
	copy(rec, buf)
	if !b.in.WriteRecord(rec) {
		b.mu.Lock()
		b.readNeeded = true
		b.mu.Unlock()
		if b.observer != nil {
			b.observer.ObserveBackpressure(b.cable.ID())
		}
		return 0
	}
	return len(buf)
}

// fillFromUser is installed as the cable endpoint's async Write callback:
// it pops the next queued record, if any, into the cable's output buffer,
// matching os_buf_int_writable.
func (b *Endpoint) fillFromUser(_ int, buf []byte) int {
	n := b.out.ReadRecord(buf)
	if n < 1 {
		b.mu.Lock()
		b.writeNeeded = true
		b.mu.Unlock()
		if b.observer != nil {
			b.observer.ObserveBackpressure(b.cable.ID())
		}
		return 0
	}
	return n
}

// Write queues src as one record for delivery over the cable, returning
// the number of bytes written or 0 if the out-queue has no room, matching
// os_buf_write. When the out-queue was previously empty and the cable's
// write trigger is latched, this kicks the interrupt thread via AWrite
// instead of waiting for its own schedule.
func (b *Endpoint) Write(src []byte) int {
	if len(src) < 1 {
		panic("buffered: Write requires at least one byte")
	}

	rec := make([]byte, len(src)+recordOverhead)
	copy(rec, src)
	if !b.out.WriteRecord(rec) {
		if b.observer != nil {
			b.observer.ObserveBackpressure(b.cable.ID())
		}
		return 0
	}

	b.mu.Lock()
	needed := b.writeNeeded
	b.writeNeeded = false
	b.mu.Unlock()
	if needed {
		b.cable.AWrite()
	}
	return len(src)
}

// Read dequeues the next record delivered from the cable into dst,
// returning its length or 0 if the in-queue is empty, matching
// os_buf_read. When the in-queue was previously full and the cable's
// read trigger is latched, this kicks the interrupt thread via ARead.
func (b *Endpoint) Read(dst []byte) int {
	n := b.in.ReadRecord(dst)
	if n < 1 {
		return 0
	}

	b.mu.Lock()
	needed := b.readNeeded
	b.readNeeded = false
	b.mu.Unlock()
	if needed {
		b.cable.ARead()
	}
	return n
}

// Writable returns the number of bytes currently free in the out-queue,
// matching os_buf_wmem. Used by external event loops to decide whether a
// Write would succeed.
func (b *Endpoint) Writable() int {
	return b.out.FreeBytes()
}

// Sync returns the number of bytes currently occupied in the in-queue,
// matching os_buf_rmem. A non-zero result means Read would succeed.
func (b *Endpoint) Sync() int {
	return b.in.UsedBytes()
}
