package van

import (
	"fmt"
	"testing"
	"time"

	"github.com/vancore/van/internal/sem"
	"github.com/vancore/van/internal/uapi"
)

func TestInitOpenCloseExitRoundTrip(t *testing.T) {
	path := t.TempDir() + "/van.shm"
	rt, err := Init(&Config{ShmPath: path, Creator: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	ns := fmt.Sprintf("/van_rt_test_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		sem.Unlink(ns + "_ctrl")
		sem.Unlink(ns + "_batt")
	})

	ctrl, err := rt.Open(uapi.EndpointConfig{
		ID:           uapi.EndpointCtrlBatt,
		Mode:         uapi.ModeBlocking,
		MyIntName:    ns + "_ctrl",
		OtherIntName: ns + "_batt",
	})
	if err != nil {
		t.Fatalf("Open controller: %v", err)
	}
	batt, err := rt.Open(uapi.EndpointConfig{
		ID:           uapi.EndpointBattery,
		Mode:         uapi.ModeBlocking,
		MyIntName:    ns + "_batt",
		OtherIntName: ns + "_ctrl",
	})
	if err != nil {
		t.Fatalf("Open follower: %v", err)
	}

	done := make(chan int, 1)
	go func() {
		buf := make([]byte, 8)
		done <- batt.Read(buf)
	}()
	if n := ctrl.Write([]byte("hi")); n != 2 {
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

	snap := rt.Metrics.Snapshot()
	if snap.Endpoints[uapi.EndpointCtrlBatt].BytesOut != 2 {
		t.Fatalf("expected metrics to observe the write, got %+v", snap.Endpoints[uapi.EndpointCtrlBatt])
	}

	rt.Exit()
}

func TestInitDefaultsNilConfigFields(t *testing.T) {
	path := t.TempDir() + "/van.shm"
	rt, err := Init(&Config{ShmPath: path, Creator: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer rt.Exit()

	if rt.Metrics == nil || rt.Workers == nil || rt.Clocks == nil {
		t.Fatal("expected Init to populate every subsystem")
	}
}
