package sem

import (
	"testing"
	"time"
)

func TestUnnamedWaitPost(t *testing.T) {
	s := NewUnnamed(0)

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Post")
	case <-time.After(20 * time.Millisecond):
	}

	s.Post()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Post")
	}
}

func TestUnnamedTryWait(t *testing.T) {
	s := NewUnnamed(1)

	if !s.TryWait() {
		t.Fatal("TryWait should succeed when count is 1")
	}
	if s.TryWait() {
		t.Fatal("TryWait should fail when count is 0")
	}

	s.Post()
	if !s.TryWait() {
		t.Fatal("TryWait should succeed after Post")
	}
}

func TestNamedRendezvousSameProcess(t *testing.T) {
	a, err := Named("van_test_int")
	if err != nil {
		t.Fatalf("Named: %v", err)
	}
	defer Unlink("van_test_int")

	done := make(chan struct{})
	go func() {
		a.Wait()
		close(done)
	}()

	b, err := Named("van_test_int")
	if err != nil {
		t.Fatalf("Named (second attach): %v", err)
	}
	b.Post()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("semaphore did not rendezvous across two Named() calls with the same name")
	}
}
