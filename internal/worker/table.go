package worker

import (
	"fmt"
	"sync"

	"github.com/eapache/queue"

	"github.com/vancore/van/internal/constants"
	"github.com/vancore/van/internal/interfaces"
)

// Table is the process-wide table of live workers, bound to
// constants.ThreadLimit entries — the Go analogue of the source's static
// os_thread_list (original_source/os/os_pthread.c).
type Table struct {
	mu      sync.Mutex
	workers [constants.ThreadLimit]*Worker
	count   int
	logger  interfaces.Logger
}

// NewTable creates an empty worker table.
func NewTable(logger interfaces.Logger) *Table {
	return &Table{logger: logger}
}

// Create allocates a table slot, starts the worker's dispatch goroutine,
// and returns the running worker. qSize bounds the worker's input queue
// and must not exceed constants.ThreadQueueLimit. Exceeding
// constants.ThreadLimit live workers traps, matching the source's
// TRAP_IF(i >= OS_THREAD_LIMIT).
func (t *Table) Create(name string, prio Priority, qSize int) *Worker {
	if qSize < 1 || qSize > constants.ThreadQueueLimit {
		panic(fmt.Sprintf("worker: invalid queue size %d for %q", qSize, name))
	}
	if len(name) > constants.ThreadNameLimit {
		panic(fmt.Sprintf("worker: name %q exceeds limit of %d", name, constants.ThreadNameLimit))
	}

	t.mu.Lock()
	idx := -1
	for i, w := range t.workers {
		if w == nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		panic(fmt.Sprintf("worker: table full, limit is %d", constants.ThreadLimit))
	}

	w := &Worker{
		idx:    idx,
		name:   name,
		prio:   prio.normalize(),
		q:      queue.New(),
		limit:  qSize,
		state:  StateSuspended,
		done:   make(chan struct{}),
		logger: t.logger,
	}
	w.cond = sync.NewCond(&w.mu)
	t.workers[idx] = w
	t.count++
	t.mu.Unlock()

	go w.dispatch()

	return w
}

// Destroy stops the worker's dispatch goroutine after it drains any
// pending messages, and frees its table slot.
func (t *Table) Destroy(w *Worker) {
	if w == nil {
		return
	}
	w.destroy()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.workers[w.idx] == w {
		t.workers[w.idx] = nil
		t.count--
	}
	w.mu.Lock()
	w.state = StateDeleted
	w.mu.Unlock()
}

// Count returns the number of live workers.
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
