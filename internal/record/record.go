// Package record implements the fixed-capacity byte-record queue used by
// the buffered endpoint (§4.A of the design): a single contiguous buffer
// split into a "first" and "second" run so that a reader draining the
// front of the buffer and a writer appending at the back never collide,
// with record boundaries marked by a terminator byte instead of a length
// prefix. Grounded on the source's os_queue.c (os_mq_init/os_mq_write/
// os_mq_read and friends).
package record

import (
	"sync"

	"github.com/vancore/van/internal/constants"
)

// Queue is a fixed-capacity byte ring holding '#'-terminated records.
// Every exported method is safe for concurrent use; the zero value is not
// usable, construct with New.
type Queue struct {
	mu sync.Mutex

	buf  []byte
	size int

	firstIdx  int
	firstSize int
	secondIdx int
	secondSize int

	lockIdx  int
	lockSize int
}

// New allocates a record queue backed by size bytes.
func New(size int) *Queue {
	return &Queue{buf: make([]byte, size), size: size}
}

// UsedBytes returns the number of bytes currently occupied by committed
// records (both runs combined).
func (q *Queue) UsedBytes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.firstSize + q.secondSize
}

// FreeBytes returns the number of bytes available for the next Alloc of
// the given size to succeed; it must be called with no outstanding
// uncommitted reservation, just like the source's os_mq_wmem.
func (q *Queue) FreeBytes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.lockSize > 0 {
		panic("record: FreeBytes called with an outstanding reservation")
	}
	return q.freeBytesLocked()
}

func (q *Queue) freeBytesLocked() int {
	if q.secondSize > 0 {
		return q.firstIdx - q.secondIdx - q.secondSize
	}
	return q.size - q.firstIdx - q.firstSize
}

// alloc reserves size bytes from the first-available run, returning the
// slice to write into. Only one reservation may be outstanding at a time;
// callers must Commit before the next Alloc.
func (q *Queue) alloc(size int) []byte {
	if size < 1 || q.lockSize > 0 {
		panic("record: invalid alloc")
	}

	if q.secondSize > 0 {
		free := q.firstIdx - q.secondIdx - q.secondSize
		if free < 1 || size > free {
			return nil
		}
		q.lockIdx = q.secondIdx + q.secondSize
		q.lockSize = size
		return q.buf[q.lockIdx : q.lockIdx+size]
	}

	free := q.size - q.firstIdx - q.firstSize
	if size <= free {
		q.lockIdx = q.firstIdx + q.firstSize
		q.lockSize = size
		return q.buf[q.lockIdx : q.lockIdx+size]
	}
	if size > q.firstIdx {
		return nil
	}

	q.lockIdx = 0
	q.lockSize = size
	return q.buf[0:size]
}

// commit folds the most recent alloc into the first or second run.
func (q *Queue) commit(size int) {
	if size < 1 || size != q.lockSize {
		panic("record: commit size mismatch")
	}

	if q.firstSize == 0 && q.secondSize == 0 {
		q.firstIdx = q.lockIdx
		q.firstSize = q.lockSize
		q.lockIdx, q.lockSize = 0, 0
		return
	}

	if q.lockIdx == q.firstIdx+q.firstSize {
		q.firstSize += q.lockSize
	} else {
		q.secondSize += q.lockSize
	}
	q.lockIdx, q.lockSize = 0, 0
}

// peek returns the first run without consuming it.
func (q *Queue) peek() []byte {
	if q.firstSize < 1 {
		return nil
	}
	return q.buf[q.firstIdx : q.firstIdx+q.firstSize]
}

// consume removes size bytes from the front of the queue, rotating the
// second run into the first slot if the first run is now empty.
func (q *Queue) consume(size int) {
	if size >= q.firstSize {
		q.firstIdx = q.secondIdx
		q.firstSize = q.secondSize
		q.secondIdx = 0
		q.secondSize = 0
		return
	}
	q.firstIdx += size
	q.firstSize -= size
}

// WriteRecord writes buf as a single terminated record. buf must carry one
// trailing placeholder byte past the real payload; that last byte is
// overwritten with the terminator, matching the source's
// replace-end-of-string-with-delimiter convention, so a payload of n bytes
// needs a buf of length n+1. Returns false if there is not enough free
// space, in which case nothing is written (back-pressure, not an error).
func (q *Queue) WriteRecord(buf []byte) bool {
	if len(buf) < 1 {
		panic("record: empty record")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	dest := q.alloc(len(buf))
	if dest == nil {
		return false
	}

	copy(dest, buf)
	dest[len(buf)-1] = constants.RecordTerminator

	q.commit(len(buf))
	return true
}

// ReadRecord copies the next queued record (without its terminator) into
// buf and returns its length, or 0 if the queue is empty. Panics if buf is
// too small to hold the record, matching the source's fatal OS_TRAP_IF.
func (q *Queue) ReadRecord(buf []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	src := q.peek()
	if src == nil {
		return 0
	}

	end := -1
	for i, b := range src {
		if b == constants.RecordTerminator {
			end = i
			break
		}
	}
	if end < 0 {
		panic("record: no terminator found in queued run")
	}

	size := end + 1
	if size < 2 || size > len(buf) {
		panic("record: destination buffer too small")
	}

	copy(buf, src[:size])
	q.consume(size)

	return size - 1
}
