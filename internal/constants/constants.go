// Package constants holds the internal tunables shared across the cable,
// worker, clock, and shared-memory packages.
package constants

// Shared-memory layout constants (bit-exact across the wire, §3 of the spec).
const (
	// PayloadSize is the size in bytes of one payload buffer (OS_BUF_SIZE).
	PayloadSize = 2048

	// RingSlots is the fixed slot count of one control ring.
	RingSlots = 4

	// EndpointCount is the number of named endpoints in the static table
	// (CAB_COUNT): ctrl_batt, ctrl_disp, battery, display.
	EndpointCount = 4

	// WordAlign is the alignment boundary applied to the second cable pair's
	// offset in the shared region.
	WordAlign = 8
)

// Resource limits (bound process-wide tables; exceeding any of these traps).
const (
	// ThreadLimit bounds the worker-thread table (OS_THREAD_LIMIT).
	ThreadLimit = 16

	// ThreadQueueLimit bounds a single worker's input queue (≤1024).
	ThreadQueueLimit = 1024

	// EndpointThreadQueueSize is the queue depth given to each endpoint's
	// interrupt-thread (OS_THREAD_Q_SIZE).
	EndpointThreadQueueSize = 8

	// ClockLimit bounds the concurrently armed clock table (OS_CLOCK_LIMIT).
	ClockLimit = 4

	// ThreadNameLimit is the maximum byte length of a worker thread's name.
	ThreadNameLimit = 16

	// BufferedQueueSize is the byte capacity of each buffered-endpoint
	// record queue (BUF_Q_SIZE).
	BufferedQueueSize = 2048
)

// RecordTerminator is the byte every record queue message is suffixed with.
const RecordTerminator = '#'

// ShmFile is the historical default path of the backing shared-memory file.
const ShmFile = "/tmp/van.shm"

// ShmSize is the total size of the backing file/mapping: four endpoint
// slots, each holding one ring plus one payload buffer plus bookkeeping.
func ShmSize(ringSize int) int {
	return (ringSize + PayloadSize + 4) * EndpointCount
}

// Align rounds v up to the next multiple of to, which must be a power of two.
func Align(v, to int) int {
	return (v + to - 1) &^ (to - 1)
}
