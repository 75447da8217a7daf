// Package worker implements the named, priority-scheduled worker thread
// abstraction (§4.B): each worker owns a bounded FIFO input queue and a
// goroutine that drains it, invoking the callback carried by each queued
// message. Grounded on the source's os_thread_cb dispatch loop
// (original_source/os/os_pthread.c) with the goroutine/context shape of
// the teacher's internal/queue/runner.go ioLoop.
package worker

import (
	"fmt"
	"sync"

	"github.com/eapache/queue"

	"github.com/vancore/van/internal/interfaces"
)

// Priority mirrors the source's os_thread_prio_t scheduling classes. It is
// informational in this implementation: Go's scheduler does not expose
// SCHED_RR priorities to goroutines, so Priority affects neither
// scheduling nor dispatch ordering — goroutines run at the priority the
// Go runtime gives them.
type Priority int

const (
	PriorityDefault    Priority = 5
	PriorityForeground Priority = 35
	PriorityBackground Priority = 40
	PrioritySoftRT     Priority = 50
	PriorityHardRT     Priority = 99
)

// normalize maps any value outside the known set to PriorityDefault,
// matching os_thread_prio()'s fallback switch.
func (p Priority) normalize() Priority {
	switch p {
	case PriorityHardRT, PrioritySoftRT, PriorityBackground, PriorityForeground, PriorityDefault:
		return p
	default:
		return PriorityDefault
	}
}

// State mirrors os_thread_state_t.
type State int

const (
	StateSuspended State = iota
	StateRunning
	StateTerminated
	StateFinished
	StateDeleted
)

// Message is a unit of work posted to a worker's input queue: a single
// zero-argument callback invoked on the worker's own goroutine.
type Message func()

// Worker is a named, single-goroutine dispatch loop with a bounded FIFO
// input queue.
type Worker struct {
	idx  int
	name string
	prio Priority

	mu        sync.Mutex
	cond      *sync.Cond
	q         *queue.Queue
	limit     int
	state     State
	terminate bool
	done      chan struct{}

	logger interfaces.Logger
}

// Name returns the worker's name, assigned at Create time.
func (w *Worker) Name() string { return w.name }

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// QueueDepth returns the number of messages currently queued.
func (w *Worker) QueueDepth() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.q.Length()
}

// Send enqueues msg for processing on the worker's goroutine. Exceeding
// the worker's queue bound is a contract violation (the caller is
// producing faster than any consumer design in this domain should allow)
// and traps rather than silently dropping or blocking, matching the
// fatal-resource-limit class of error documented for table/queue bounds.
func (w *Worker) Send(msg Message) {
	if msg == nil {
		panic("worker: nil message")
	}

	w.mu.Lock()
	if w.state == StateTerminated || w.state == StateDeleted {
		w.mu.Unlock()
		panic(fmt.Sprintf("worker: Send to %s after Destroy", w.name))
	}
	if w.q.Length() >= w.limit {
		w.mu.Unlock()
		panic(fmt.Sprintf("worker: %s input queue exceeded limit %d", w.name, w.limit))
	}
	w.q.Add(msg)
	w.mu.Unlock()

	w.cond.Signal()
}

// dispatch is the goroutine body: lock, drain the whole queue, invoke each
// message outside the lock, repeat, suspending on an empty queue — the
// same lock/drain/invoke/repeat shape as os_thread_cb.
func (w *Worker) dispatch() {
	for {
		w.mu.Lock()
		for w.q.Length() == 0 && !w.terminate {
			w.state = StateSuspended
			w.cond.Wait()
		}
		if w.terminate && w.q.Length() == 0 {
			w.state = StateTerminated
			w.mu.Unlock()
			close(w.done)
			return
		}
		w.state = StateRunning
		w.mu.Unlock()

		for {
			w.mu.Lock()
			if w.q.Length() == 0 {
				w.mu.Unlock()
				break
			}
			msg := w.q.Remove().(Message)
			w.mu.Unlock()

			func() {
				defer func() {
					if r := recover(); r != nil {
						if w.logger != nil {
							w.logger.Printf("worker %s: message panicked: %v", w.name, r)
						}
						panic(r)
					}
				}()
				msg()
			}()
		}
	}
}

// destroy asks the dispatch goroutine to drain what remains and exit, then
// blocks until it has.
func (w *Worker) destroy() {
	w.mu.Lock()
	w.terminate = true
	w.mu.Unlock()
	w.cond.Signal()
	<-w.done
}
