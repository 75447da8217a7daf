package van

import (
	"testing"
	"time"

	"github.com/vancore/van/internal/uapi"
)

func TestHarnessRoundTrip(t *testing.T) {
	h, err := NewHarness(t.TempDir()+"/van.shm", uapi.EndpointCtrlBatt, uapi.EndpointBattery, uapi.ModeBlocking)
	if err != nil {
		t.Fatalf("NewHarness: %v", err)
	}
	defer h.Close()

	done := make(chan int, 1)
	go func() {
		buf := make([]byte, 8)
		done <- h.Other.Read(buf)
	}()
	if n := h.Ctrl.Write([]byte("hi")); n != 2 {
		t.Fatalf("Write returned %d, want 2", n)
	}
	select {
	case n := <-done:
		if n != 2 {
			t.Fatalf("Read returned %d, want 2", n)
		}
	case <-time.After(time.Second):
		t.Fatal("Read never unblocked")
	}
}
