package clock

import (
	"testing"
	"time"
)

func TestBarrierWaitsForTick(t *testing.T) {
	table := NewTable(nil)
	c := table.Create("tick", 20*time.Millisecond)
	defer table.Delete(c)

	start := time.Now()
	overrun := c.Barrier()
	elapsed := time.Since(start)

	if overrun {
		t.Fatal("expected no overrun on the first barrier call")
	}
	if elapsed < 10*time.Millisecond {
		t.Fatalf("Barrier returned suspiciously fast: %v", elapsed)
	}
}

func TestBarrierDetectsOverrun(t *testing.T) {
	table := NewTable(nil)
	c := table.Create("slow", 10*time.Millisecond)
	defer table.Delete(c)

	// Simulate a caller that takes far longer than one period between
	// barrier calls.
	time.Sleep(50 * time.Millisecond)

	if overrun := c.Barrier(); !overrun {
		t.Fatal("expected an overrun after sleeping past several periods")
	}

	stats := c.Trace()
	if stats.Overruns != 1 {
		t.Fatalf("expected 1 recorded overrun, got %d", stats.Overruns)
	}
}

func TestTraceReflectsCycles(t *testing.T) {
	table := NewTable(nil)
	c := table.Create("counted", 10*time.Millisecond)
	defer table.Delete(c)

	for i := 0; i < 3; i++ {
		c.Barrier()
	}

	stats := c.Trace()
	if stats.Cycles != 3 {
		t.Fatalf("expected 3 cycles, got %d", stats.Cycles)
	}
	if stats.Name != "counted" {
		t.Fatalf("expected name %q, got %q", "counted", stats.Name)
	}
}

func TestTableEnforcesClockLimit(t *testing.T) {
	table := NewTable(nil)
	var created []*Clock
	defer func() {
		for _, c := range created {
			table.Delete(c)
		}
	}()

	for i := 0; i < 4; i++ {
		created = append(created, table.Create("c", time.Second))
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected Create to panic past the 4-clock table limit")
		}
	}()
	table.Create("one-too-many", time.Second)
}

func TestStopPreventsFurtherTicks(t *testing.T) {
	table := NewTable(nil)
	c := table.Create("stoppable", 10*time.Millisecond)
	table.Stop(c)
	defer table.Delete(c)

	done := make(chan struct{})
	go func() {
		c.Barrier()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Barrier should not return once the clock is stopped")
	case <-time.After(50 * time.Millisecond):
	}

	// Unblock the goroutine so the test doesn't leak it.
	table.Start(c)
	<-done
}
