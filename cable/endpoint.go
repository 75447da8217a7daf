package cable

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vancore/van/internal/interfaces"
	"github.com/vancore/van/internal/sem"
	"github.com/vancore/van/internal/uapi"
	"github.com/vancore/van/internal/worker"
)

// AsyncCallbacks are the user-installed hooks that turn an endpoint from
// synchronous Read/Write into the async awrite/aread model (§4.D.7).
// Read is called with the bytes of a delivered input payload and must
// return how many of them it consumed; Write is called when an output
// buffer is free and must return how many bytes it filled (0 means "no
// data yet", the endpoint will be asked again on the next AWrite trigger).
type AsyncCallbacks struct {
	Read  func(endpointID int, payload []byte) int
	Write func(endpointID int, buf []byte) int
}

// channel is one direction (in or out) of an endpoint: the control ring
// that carries availability/consumed messages plus the payload buffer
// whose ownership those messages hand back and forth.
type channel struct {
	ring   *ringView
	buf    []byte // exactly constants.PayloadSize bytes
	pCount atomic.Int32
}

// Endpoint is one side of a cable pair, the Go realization of cab_dev_t
// (original_source/os/os_cable.c). A pair's two endpoints view the same
// shared-memory region with in/out swapped.
type Endpoint struct {
	id   int
	name string
	role uapi.Role
	mode uapi.Mode

	myInt    sem.Semaphore
	otherInt sem.Semaphore

	in  channel
	out channel

	pendingIn  atomic.Bool
	pendingOut atomic.Bool
	down       atomic.Bool
	msgID      atomic.Uint32

	qMu sync.Mutex

	writeMu       sync.Mutex
	readMu        sync.Mutex
	syncWrite     atomic.Bool
	syncRead      atomic.Bool
	suspendWriter chan struct{}
	suspendReader chan struct{}

	aioMu           sync.Mutex
	aioUse          atomic.Bool
	aioReadTrigger  atomic.Bool
	aioWriteTrigger atomic.Bool
	aio             AsyncCallbacks

	syncWait atomic.Bool
	waitSlot *waitSlot

	thread        *worker.Worker
	destroyThread func()

	logger   interfaces.Logger
	observer interfaces.Observer
}

// ID returns the endpoint's static id (§6).
func (ep *Endpoint) ID() int { return ep.id }

// Name returns the endpoint's static name (§6).
func (ep *Endpoint) Name() string { return ep.name }

// Write hands count bytes of buf to the peer, matching os_c_write. In
// blocking mode it suspends until the peer has consumed this payload; in
// non-blocking mode it returns 0 immediately when a
// payload is still outstanding. Writing while the peer hasn't drained a
// prior payload in blocking mode, or a payload larger than
// constants.PayloadSize, is a contract violation and traps.
func (ep *Endpoint) Write(buf []byte) int {
	if len(buf) < 1 {
		panic("cable: Write requires at least one byte")
	}
	if len(buf) > len(ep.out.buf) {
		panic(fmt.Sprintf("cable: %s write of %d bytes exceeds payload size %d", ep.name, len(buf), len(ep.out.buf)))
	}

	ep.writeMu.Lock()
	defer ep.writeMu.Unlock()

	if ep.pendingOut.Load() {
		if ep.mode == uapi.ModeNonBlocking {
			return 0
		}
		panic(fmt.Sprintf("cable: %s write while a prior payload is still pending", ep.name))
	}

	copy(ep.out.buf, buf)
	ep.out.pCount.Store(int32(len(buf)))
	ep.pendingOut.Store(true)

	if ep.mode == uapi.ModeBlocking {
		ep.syncWrite.Store(true)
	}
	ep.sendControl(int32(len(buf)), false)
	if ep.observer != nil {
		ep.observer.ObservePayload(ep.id, interfaces.DirectionOut, uint64(len(buf)))
	}

	if ep.mode == uapi.ModeBlocking {
		<-ep.suspendWriter
	}
	return len(buf)
}

// Read copies the next available input payload into buf and releases it
// back to the peer, matching os_c_read. In blocking mode it suspends
// until a payload arrives; in non-blocking mode it returns 0 immediately
// when none is available. A buf too small for the pending payload is a
// contract violation and traps, matching OS_TRAP_IF(count > b_size) on
// the destination side.
func (ep *Endpoint) Read(buf []byte) int {
	if len(buf) < 1 {
		panic("cable: Read requires at least one byte")
	}

	ep.readMu.Lock()
	defer ep.readMu.Unlock()

	n := ep.waitForInput()
	if n < 1 {
		return 0
	}
	if int(n) > len(buf) {
		panic(fmt.Sprintf("cable: %s read of %d bytes exceeds destination size %d", ep.name, n, len(buf)))
	}

	copy(buf, ep.in.buf[:n])
	ep.sendControl(0, true)
	if ep.observer != nil {
		ep.observer.ObservePayload(ep.id, interfaces.DirectionIn, uint64(n))
	}
	return int(n)
}

// waitForInput blocks (in blocking mode) or polls once (in non-blocking
// mode) for the next input payload, returning its size or 0.
func (ep *Endpoint) waitForInput() int32 {
	if ep.mode == uapi.ModeNonBlocking {
		return ep.in.pCount.Swap(0)
	}

	ep.syncRead.Store(true)
	for {
		if n := ep.in.pCount.Swap(0); n > 0 {
			ep.syncRead.Store(false)
			return n
		}
		<-ep.suspendReader
	}
}

// ZBuffer is a zero-copy view of a delivered input payload, backed
// directly by the endpoint's in-buffer slot. The caller must Release it
// before (or will have it implicitly released by) the next ZRead call on
// the same endpoint, matching os_c_zread's auto-release-previous
// convention.
type ZBuffer struct {
	ep       *Endpoint
	data     []byte
	released atomic.Bool
}

// Bytes returns the zero-copy payload view. It is only valid until
// Release is called.
func (z *ZBuffer) Bytes() []byte { return z.data }

// Release hands the payload buffer back to the peer. Safe to call more
// than once; only the first call has effect.
func (z *ZBuffer) Release() {
	if z.released.CompareAndSwap(false, true) {
		z.ep.releasePendingIn()
	}
}

func (ep *Endpoint) releasePendingIn() {
	if ep.pendingIn.Swap(false) {
		ep.sendControl(0, true)
	}
}

// ZRead returns a zero-copy view of the next input payload without
// copying it out, matching os_c_zread. Calling ZRead again before
// releasing the previous handle implicitly releases it first.
func (ep *Endpoint) ZRead() (*ZBuffer, int) {
	ep.readMu.Lock()
	defer ep.readMu.Unlock()

	ep.releasePendingIn()

	n := ep.waitForInput()
	if n < 1 {
		return nil, 0
	}

	ep.pendingIn.Store(true)
	if ep.observer != nil {
		ep.observer.ObservePayload(ep.id, interfaces.DirectionIn, uint64(n))
	}
	return &ZBuffer{ep: ep, data: ep.in.buf[:n]}, int(n)
}

// sendControl pushes one message onto the out ring and wakes the peer's
// interrupt thread, matching cab_q_add.
func (ep *Endpoint) sendControl(size int32, consumed bool) {
	ep.qMu.Lock()
	id := uint8(ep.msgID.Add(1) - 1)
	ep.out.ring.push(id, size, consumed)
	ep.qMu.Unlock()
	if ep.observer != nil {
		ep.observer.ObserveRingMessage(ep.id, interfaces.DirectionOut)
	}
	ep.otherInt.Post()
}

// Action installs the async read/write callbacks that make AWrite/ARead
// meaningful, matching os_c_action. It must be called before any
// synchronous or asynchronous transfer has started on this endpoint.
func (ep *Endpoint) Action(cb AsyncCallbacks) {
	if cb.Read == nil || cb.Write == nil {
		panic("cable: Action requires both Read and Write callbacks")
	}

	ep.aioMu.Lock()
	defer ep.aioMu.Unlock()
	if ep.aioUse.Load() {
		panic(fmt.Sprintf("cable: %s Action called twice", ep.name))
	}
	if ep.pendingOut.Load() || ep.syncRead.Load() || ep.syncWrite.Load() {
		panic(fmt.Sprintf("cable: %s Action must be installed before any transfer starts", ep.name))
	}

	ep.aio = cb
	ep.aioUse.Store(true)
}

// ARead asks the interrupt thread to re-check for a deliverable input
// payload via the installed Read callback, matching os_c_aread.
func (ep *Endpoint) ARead() {
	if !ep.aioUse.Load() {
		panic(fmt.Sprintf("cable: %s ARead without Action", ep.name))
	}
	ep.aioReadTrigger.Store(true)
	ep.myInt.Post()
}

// AWrite asks the interrupt thread to re-check for fillable output space
// via the installed Write callback, matching os_c_awrite.
func (ep *Endpoint) AWrite() {
	if !ep.aioUse.Load() {
		panic(fmt.Sprintf("cable: %s AWrite without Action", ep.name))
	}
	ep.aioWriteTrigger.Store(true)
	ep.myInt.Post()
}

// interruptLoop is the endpoint's dedicated interrupt-handling goroutine,
// the Go realization of cab_int_exec. It runs for the lifetime of the
// endpoint, exiting only once Close sets down and wakes it.
func (ep *Endpoint) interruptLoop() {
	for {
		if ep.aioUse.Load() {
			if ep.aioReadTrigger.CompareAndSwap(true, false) {
				ep.deliverInput(ep.in.pCount.Load())
			}
			if ep.aioWriteTrigger.CompareAndSwap(true, false) {
				ep.dispatchOutput()
			}
		}

		ep.myInt.Wait()
		if ep.down.Load() {
			return
		}

		ep.in.ring.drain(func(slot uapi.RingSlot) {
			if ep.observer != nil {
				ep.observer.ObserveRingMessage(ep.id, interfaces.DirectionIn)
			}
			if slot.Size > 0 {
				ep.deliverInput(slot.Size)
			}
			if slot.Consumed != 0 {
				if !ep.pendingOut.Swap(false) {
					panic(fmt.Sprintf("cable: %s received a consumed ack with no pending output", ep.name))
				}
				ep.dispatchOutput()
			}
		})
	}
}

// deliverInput makes a newly-arrived input payload visible to the
// consumer side: for a synchronous reader it stores the size and wakes a
// suspended Read/ZRead; for an async endpoint it invokes the Read
// callback directly and folds a partial consumption back into pCount,
// matching cab_int_read.
func (ep *Endpoint) deliverInput(count int32) {
	if !ep.aioUse.Load() {
		ep.in.pCount.Store(count)
		if ep.syncRead.Load() {
			select {
			case ep.suspendReader <- struct{}{}:
			default:
			}
		} else if ep.syncWait.Load() {
			ep.triggerWait()
		}
		return
	}

	if count < 1 {
		return
	}
	consumed := ep.aio.Read(ep.id, ep.in.buf[:count])
	if consumed < 0 || int32(consumed) > count {
		panic(fmt.Sprintf("cable: %s async read callback consumed %d of %d bytes", ep.name, consumed, count))
	}
	if int32(consumed) != count {
		ep.in.pCount.Store(count - int32(consumed))
		return
	}
	ep.in.pCount.Store(0)
	ep.sendControl(0, true)
}

// dispatchOutput reacts to the peer having consumed our previous output
// payload: for a synchronous writer it wakes a suspended Write; for an
// async endpoint it invokes the Write callback to refill the output
// buffer, matching cab_int_write.
func (ep *Endpoint) dispatchOutput() {
	if !ep.aioUse.Load() {
		if ep.syncWrite.Load() {
			ep.syncWrite.Store(false)
			select {
			case ep.suspendWriter <- struct{}{}:
			default:
			}
		} else if ep.syncWait.Load() {
			ep.triggerWait()
		}
		return
	}

	if ep.pendingOut.Load() {
		return
	}
	count := ep.aio.Write(ep.id, ep.out.buf)
	if count < 1 {
		return
	}
	ep.out.pCount.Store(int32(count))
	ep.pendingOut.Store(true)
	ep.sendControl(int32(count), false)
}

// triggerWait wakes the multi-endpoint wait slot this endpoint was
// assigned to by WaitInit, edge-triggered on the probe's 0→1 transition,
// matching cab_wait_trigger.
func (ep *Endpoint) triggerWait() {
	ws := ep.waitSlot
	if ws == nil {
		panic(fmt.Sprintf("cable: %s has syncWait set without an assigned wait slot", ep.name))
	}
	if !ws.probe.Swap(true) {
		select {
		case ws.wake <- struct{}{}:
		default:
		}
	}
}

// Close tears the endpoint down: flips down, kicks my_interrupt, joins
// the interrupt thread, closes both semaphores, and discards any stale
// control messages left in the input ring, matching os_c_close. The
// table slot itself is freed by Runtime.Close.
func (ep *Endpoint) Close() {
	ep.down.Store(true)
	ep.myInt.Post()
	if ep.destroyThread != nil {
		ep.destroyThread()
	}
	ep.myInt.Close()
	ep.otherInt.Close()
	ep.in.ring.drain(func(uapi.RingSlot) {})
}
