package uapi

import (
	"testing"
	"unsafe"
)

func TestStructSizes(t *testing.T) {
	if got := unsafe.Sizeof(RingSlot{}); got != 12 {
		t.Errorf("sizeof(RingSlot) = %d, want 12", got)
	}
	if got := unsafe.Sizeof(Ring{}); got != 56 {
		t.Errorf("sizeof(Ring) = %d, want 56", got)
	}
}

func TestSlotMarshalUnmarshal(t *testing.T) {
	original := RingSlot{ID: 7, Size: 128, Consumed: 1}

	data := MarshalSlot(&original)
	if len(data) != RingSlotSize {
		t.Fatalf("MarshalSlot length = %d, want %d", len(data), RingSlotSize)
	}

	got := UnmarshalSlot(data)
	if got != original {
		t.Errorf("UnmarshalSlot = %+v, want %+v", got, original)
	}
}

func TestRingMarshalUnmarshal(t *testing.T) {
	var original Ring
	original.Slots[0] = RingSlot{ID: 1, Size: 2048}
	original.Slots[1] = RingSlot{ID: 2, Consumed: 1}
	original.Head = 2
	original.Tail = 0

	data := MarshalRing(&original)
	if len(data) != RingSize {
		t.Fatalf("MarshalRing length = %d, want %d", len(data), RingSize)
	}

	got := UnmarshalRing(data)
	if got != original {
		t.Errorf("UnmarshalRing = %+v, want %+v", got, original)
	}
}

func TestPutSlotIntoSharedBuffer(t *testing.T) {
	buf := make([]byte, RingSize)
	s := RingSlot{ID: 3, Size: 9, Consumed: 0}
	PutSlot(buf[RingSlotSize:], &s)

	got := UnmarshalSlot(buf[RingSlotSize:])
	if got != s {
		t.Errorf("round trip through shared buffer = %+v, want %+v", got, s)
	}
}
