package van

import "github.com/vancore/van/internal/constants"

// Re-exported tunables, so callers configuring a Runtime never need to
// import internal/constants directly.
const (
	// PayloadSize is the size in bytes of one cable payload buffer.
	PayloadSize = constants.PayloadSize

	// EndpointCount is the number of named endpoints in the static table:
	// ctrl_batt, ctrl_disp, battery, display.
	EndpointCount = constants.EndpointCount

	// ThreadLimit bounds the number of concurrently live worker threads.
	ThreadLimit = constants.ThreadLimit

	// ThreadQueueLimit bounds a single worker's input queue depth.
	ThreadQueueLimit = constants.ThreadQueueLimit

	// ClockLimit bounds the number of concurrently armed clocks.
	ClockLimit = constants.ClockLimit

	// BufferedQueueSize is the byte capacity of each buffered-endpoint
	// record queue.
	BufferedQueueSize = constants.BufferedQueueSize

	// ShmFile is the historical default path of the backing shared-memory
	// file.
	ShmFile = constants.ShmFile
)
