package cable

import (
	"fmt"

	"github.com/vancore/van/internal/uapi"
)

// ringView overlays a uapi.Ring onto a fixed byte window of the shared
// region. Every read/write goes through Marshal/Unmarshal rather than an
// unsafe cast, so the wire layout stays explicit and portable — grounded
// on internal/uapi's marshal-field-by-field convention.
type ringView struct {
	mem []byte // exactly uapi.RingSize bytes
}

func newRingView(mem []byte) *ringView {
	if len(mem) != uapi.RingSize {
		panic(fmt.Sprintf("cable: ring view given %d bytes, want %d", len(mem), uapi.RingSize))
	}
	return &ringView{mem: mem}
}

func (r *ringView) load() uapi.Ring {
	return uapi.UnmarshalRing(r.mem)
}

func (r *ringView) store(ring uapi.Ring) {
	uapi.PutRing(r.mem, ring)
}

// push appends a message to the ring, trapping on overflow — the control
// ring is sized so a correctly-paced pair never fills it
// (constants.RingSlots slots, one payload in flight per direction at a
// time), matching cab_q_add's OS_TRAP_IF(head == q->tail).
func (r *ringView) push(id uint8, size int32, consumed bool) {
	ring := r.load()

	head := ring.Head
	slot := uapi.RingSlot{ID: id, Size: size}
	if consumed {
		slot.Consumed = 1
	}
	ring.Slots[head] = slot

	head++
	if int(head) >= len(ring.Slots) {
		head = 0
	}
	if head == ring.Tail {
		panic("cable: control ring overflow")
	}
	ring.Head = head

	r.store(ring)
}

// drain invokes fn for every pending message in FIFO order, advancing
// tail as it goes. fn sees a copy of the slot; drain does not mutate
// Consumed/Size itself.
func (r *ringView) drain(fn func(slot uapi.RingSlot)) {
	ring := r.load()
	for ring.Tail != ring.Head {
		slot := ring.Slots[ring.Tail]
		fn(slot)

		ring.Tail++
		if int(ring.Tail) >= len(ring.Slots) {
			ring.Tail = 0
		}
	}
	r.store(ring)
}
