package backend

import "testing"

func TestProduceDrainsQueueInOrder(t *testing.T) {
	m := NewMemSink()
	m.Queue([]byte("first"))
	m.Queue([]byte("second"))

	data, ok := m.Produce()
	if !ok || string(data) != "first" {
		t.Fatalf("Produce = %q, %v; want \"first\", true", data, ok)
	}
	data, ok = m.Produce()
	if !ok || string(data) != "second" {
		t.Fatalf("Produce = %q, %v; want \"second\", true", data, ok)
	}
	if _, ok := m.Produce(); ok {
		t.Fatal("Produce on an empty outbox should report ok=false")
	}
}

func TestConsumeAccumulatesDelivered(t *testing.T) {
	m := NewMemSink()
	m.Consume([]byte("a"))
	m.Consume([]byte("b"))

	got := m.Delivered()
	if len(got) != 2 || string(got[0]) != "a" || string(got[1]) != "b" {
		t.Fatalf("Delivered = %v, want [a b]", got)
	}
}

func TestCloseClearsQueues(t *testing.T) {
	m := NewMemSink()
	m.Queue([]byte("x"))
	m.Consume([]byte("y"))

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := m.Produce(); ok {
		t.Fatal("Produce after Close should report ok=false")
	}
	if got := m.Delivered(); len(got) != 0 {
		t.Fatalf("Delivered after Close = %v, want empty", got)
	}
}
