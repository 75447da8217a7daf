package uapi

import (
	"encoding/binary"
)

// MarshalSlot encodes a RingSlot into its 12-byte wire form.
func MarshalSlot(s *RingSlot) []byte {
	buf := make([]byte, RingSlotSize)
	PutSlot(buf, s)
	return buf
}

// PutSlot encodes s directly into buf, which must be at least RingSlotSize
// bytes. This is the hot-path variant used when writing straight into the
// mapped shared-memory region instead of allocating an intermediate buffer.
func PutSlot(buf []byte, s *RingSlot) {
	_ = buf[:RingSlotSize]
	buf[0] = s.ID
	buf[1], buf[2], buf[3] = 0, 0, 0
	binary.LittleEndian.PutUint32(buf[4:8], uint32(s.Size))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(s.Consumed))
}

// UnmarshalSlot decodes a RingSlot from its 12-byte wire form.
func UnmarshalSlot(data []byte) RingSlot {
	_ = data[:RingSlotSize]
	var s RingSlot
	s.ID = data[0]
	s.Size = int32(binary.LittleEndian.Uint32(data[4:8]))
	s.Consumed = int32(binary.LittleEndian.Uint32(data[8:12]))
	return s
}

// MarshalRing encodes a whole Ring (4 slots + head/tail) into its wire form.
func MarshalRing(r *Ring) []byte {
	buf := make([]byte, RingSize)
	PutRing(buf, r)
	return buf
}

// PutRing encodes r directly into buf, which must be at least RingSize bytes.
func PutRing(buf []byte, r *Ring) {
	_ = buf[:RingSize]
	for i := range r.Slots {
		PutSlot(buf[i*RingSlotSize:], &r.Slots[i])
	}
	off := 4 * RingSlotSize
	binary.LittleEndian.PutUint32(buf[off:off+4], r.Head)
	binary.LittleEndian.PutUint32(buf[off+4:off+8], r.Tail)
}

// UnmarshalRing decodes a whole Ring from its wire form.
func UnmarshalRing(data []byte) Ring {
	_ = data[:RingSize]
	var r Ring
	for i := range r.Slots {
		r.Slots[i] = UnmarshalSlot(data[i*RingSlotSize:])
	}
	off := 4 * RingSlotSize
	r.Head = binary.LittleEndian.Uint32(data[off : off+4])
	r.Tail = binary.LittleEndian.Uint32(data[off+4 : off+8])
	return r
}
