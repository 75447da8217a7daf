package buffered

import (
	"testing"
	"time"

	"github.com/vancore/van/cable"
	"github.com/vancore/van/internal/sem"
	"github.com/vancore/van/internal/uapi"
)

// openTestDisplay opens a "/display" buffered endpoint plus the raw
// controller endpoint of the same pair, so the test can drive the wire
// side directly.
func openTestDisplay(t *testing.T) (*cable.Runtime, *cable.Endpoint, *Endpoint) {
	t.Helper()

	path := t.TempDir() + "/van.shm"
	rt, err := cable.NewRuntime(path, true, nil, nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	t.Cleanup(func() { rt.Ripcord(false) })
	t.Cleanup(func() {
		sem.Unlink("van_c_di_int")
		sem.Unlink("van_disp_int")
	})

	ctrl, err := rt.Open(uapi.EndpointConfig{
		ID:           uapi.EndpointCtrlDisp,
		Mode:         uapi.ModeBlocking,
		MyIntName:    "van_c_di_int",
		OtherIntName: "van_disp_int",
	})
	if err != nil {
		t.Fatalf("Open controller: %v", err)
	}

	disp, err := Open(rt, "/display", nil)
	if err != nil {
		t.Fatalf("Open buffered endpoint: %v", err)
	}

	return rt, ctrl, disp
}

func waitForCondition(t *testing.T, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestOpenUnknownNameFails(t *testing.T) {
	path := t.TempDir() + "/van.shm"
	rt, err := cable.NewRuntime(path, true, nil, nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	t.Cleanup(func() { rt.Ripcord(false) })

	if _, err := Open(rt, "/nope", nil); err == nil {
		t.Fatal("expected Open of an unknown name to fail")
	}
}

func TestDeliverFromCableThenRead(t *testing.T) {
	_, ctrl, disp := openTestDisplay(t)

	if n := ctrl.Write([]byte("hello")); n != 5 {
		t.Fatalf("controller Write returned %d, want 5", n)
	}

	dst := make([]byte, 64)
	var got int
	waitForCondition(t, func() bool {
		got = disp.Read(dst)
		return got > 0
	})
	if got != 5 || string(dst[:got]) != "hello" {
		t.Fatalf("Read returned %q (n=%d), want %q", dst[:got], got, "hello")
	}
}

func TestWriteThenFillFromUserDeliversToCable(t *testing.T) {
	_, ctrl, disp := openTestDisplay(t)

	if n := disp.Write([]byte("world")); n != 5 {
		t.Fatalf("buffered Write returned %d, want 5", n)
	}

	dst := make([]byte, 64)
	done := make(chan int, 1)
	go func() { done <- ctrl.Read(dst) }()

	select {
	case n := <-done:
		if n != 5 || string(dst[:n]) != "world" {
			t.Fatalf("controller Read returned %q (n=%d), want %q", dst[:n], n, "world")
		}
	case <-time.After(time.Second):
		t.Fatal("controller Read never unblocked")
	}
}

func TestWritableAndSyncReflectQueueState(t *testing.T) {
	_, _, disp := openTestDisplay(t)

	free := disp.Writable()
	if free <= 0 {
		t.Fatalf("Writable on a fresh out-queue = %d, want > 0", free)
	}

	if used := disp.Sync(); used != 0 {
		t.Fatalf("Sync on a fresh in-queue = %d, want 0", used)
	}

	disp.Write([]byte("abc"))
	if got := disp.Writable(); got != free-4 {
		t.Fatalf("Writable after a 3-byte write = %d, want %d", got, free-4)
	}
}

// TestBackpressureWhenInQueueFull drives scenario 4 (buffered display
// under back-pressure): the controller keeps writing faster than the
// test drains the in-queue, so some writes must block until
// deliver_from_cable's latched read trigger is re-armed by a later Read.
func TestBackpressureWhenInQueueFull(t *testing.T) {
	_, ctrl, disp := openTestDisplay(t)

	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte('a' + i%26)
	}

	const writes = 12
	done := make(chan struct{}, writes)
	for i := 0; i < writes; i++ {
		go func() {
			if n := ctrl.Write(payload); n != len(payload) {
				t.Errorf("controller Write returned %d, want %d", n, len(payload))
			}
			done <- struct{}{}
		}()
	}

	// Give the writers a head start so the in-queue fills and at least one
	// blocks on back-pressure before we start draining it.
	time.Sleep(20 * time.Millisecond)

	dst := make([]byte, 512)
	completed := 0
	deadline := time.Now().Add(2 * time.Second)
	for completed < writes && time.Now().Before(deadline) {
		if n := disp.Read(dst); n > 0 {
			if string(dst[:n]) != string(payload) {
				t.Fatalf("drained record did not match the payload")
			}
		}
		select {
		case <-done:
			completed++
		default:
		}
		time.Sleep(time.Millisecond)
	}
	// Drain whatever is left latched in done without blocking further.
	for completed < writes {
		select {
		case <-done:
			completed++
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d/%d writes completed: back-pressure never cleared", completed, writes)
		}
	}
}

func TestCloseDoesNotPanic(t *testing.T) {
	rt, _, disp := openTestDisplay(t)
	disp.Close(rt)
}
