package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendProcessesInOrder(t *testing.T) {
	table := NewTable(nil)
	w := table.Create("seq", PriorityDefault, 16)
	defer table.Destroy(w)

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		w.Send(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("messages were not all processed")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Fatalf("expected in-order processing, got %v", order)
		}
	}
}

func TestQueueDepthReflectsPending(t *testing.T) {
	table := NewTable(nil)
	block := make(chan struct{})
	w := table.Create("blocker", PriorityDefault, 16)
	defer func() {
		close(block)
		table.Destroy(w)
	}()

	w.Send(func() { <-block })

	// Give the first message a moment to be picked up and start blocking.
	time.Sleep(10 * time.Millisecond)

	w.Send(func() {})
	w.Send(func() {})

	if got := w.QueueDepth(); got != 2 {
		t.Fatalf("expected 2 queued messages behind the blocker, got %d", got)
	}
}

func TestSendPanicsPastQueueLimit(t *testing.T) {
	table := NewTable(nil)
	block := make(chan struct{})
	w := table.Create("full", PriorityDefault, 2)
	defer func() {
		close(block)
		table.Destroy(w)
	}()

	w.Send(func() { <-block })
	time.Sleep(10 * time.Millisecond)
	w.Send(func() {})
	w.Send(func() {})

	defer func() {
		if recover() == nil {
			t.Fatal("expected Send to panic past the queue limit")
		}
	}()
	w.Send(func() {})
}

func TestTableEnforcesThreadLimit(t *testing.T) {
	table := NewTable(nil)
	var created []*Worker
	defer func() {
		for _, w := range created {
			table.Destroy(w)
		}
	}()

	for i := 0; i < 16; i++ {
		w := table.Create("w", PriorityDefault, 4)
		created = append(created, w)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected Create to panic past the 16-worker table limit")
		}
	}()
	table.Create("one-too-many", PriorityDefault, 4)
}

func TestDestroyDrainsPendingMessages(t *testing.T) {
	table := NewTable(nil)
	w := table.Create("drain", PriorityDefault, 16)

	var processed int32
	for i := 0; i < 5; i++ {
		w.Send(func() { atomic.AddInt32(&processed, 1) })
	}

	table.Destroy(w)

	if got := atomic.LoadInt32(&processed); got != 5 {
		t.Fatalf("expected all 5 messages drained before Destroy returned, got %d", got)
	}
}
