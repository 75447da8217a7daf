// Package backend provides Sink implementations for van.
package backend

import (
	"sync"

	"github.com/vancore/van"
)

// MemSink is an in-memory, in-process Sink: an outbox FIFO the caller
// fills for Produce to drain, and an inbox FIFO Consume appends to for
// the caller to inspect. Grounded on the teacher's backend.Memory,
// reduced from a sharded random-access byte array to a pair of plain
// record queues since a buffered endpoint only ever moves whole records.
type MemSink struct {
	mu     sync.Mutex
	outbox [][]byte
	inbox  [][]byte
	closed bool
}

// NewMemSink returns an empty MemSink.
func NewMemSink() *MemSink {
	return &MemSink{}
}

// Queue appends data to the outbox for a later Produce call to pick up.
func (m *MemSink) Queue(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox = append(m.outbox, append([]byte(nil), data...))
}

// Produce implements van.Sink.
func (m *MemSink) Produce() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.outbox) == 0 {
		return nil, false
	}
	data := m.outbox[0]
	m.outbox = m.outbox[1:]
	return data, true
}

// Consume implements van.Sink.
func (m *MemSink) Consume(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = append(m.inbox, append([]byte(nil), data...))
}

// Delivered returns every record Consume has received so far, in order.
func (m *MemSink) Delivered() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.inbox))
	copy(out, m.inbox)
	return out
}

// Close implements van.Sink.
func (m *MemSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.outbox = nil
	m.inbox = nil
	return nil
}

var _ van.Sink = (*MemSink)(nil)
