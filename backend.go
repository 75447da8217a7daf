package van

// Sink is the pluggable "user side" of a buffered endpoint (§4.E domain
// stack supplement): something that supplies records for a buffered
// endpoint to write and consumes records a buffered endpoint has read,
// standing in for a real terminal or socket in tests and demos. Grounded
// on the teacher's Backend interface, reduced from a random-access block
// device (ReadAt/WriteAt/Size) to a record stream, since a buffered
// endpoint only ever moves whole records, never arbitrary byte offsets.
type Sink interface {
	// Produce returns the next record to send, or ok=false if none is
	// queued yet.
	Produce() (data []byte, ok bool)

	// Consume accepts one record read from a buffered endpoint.
	Consume(data []byte)

	// Close releases any resources held by the Sink.
	Close() error
}
