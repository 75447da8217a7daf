package van

import (
	"fmt"
	"time"

	"github.com/vancore/van/cable"
	"github.com/vancore/van/internal/sem"
	"github.com/vancore/van/internal/uapi"
)

// Harness bundles a Runtime with one already-open endpoint pair backed by
// a caller-chosen shared-memory path, for tests and demos that need a
// working cable without a second process. Grounded on the teacher's
// testing.go MockBackend: an exported, ready-to-use test double instead
// of hand-rolled setup duplicated across every test file.
type Harness struct {
	Runtime *Runtime
	Ctrl    *cable.Endpoint
	Other   *cable.Endpoint

	ctrlIntName  string
	otherIntName string
}

// NewHarness creates a Runtime backed by path and opens ctrlID/otherID as
// a loopback pair in the given mode. path should be unique per harness
// (tests typically use t.TempDir()); Close removes both the semaphores it
// creates and the file at path.
func NewHarness(path string, ctrlID, otherID int, mode uapi.Mode) (*Harness, error) {
	rt, err := Init(&Config{ShmPath: path, Creator: true})
	if err != nil {
		return nil, err
	}

	ns := fmt.Sprintf("van_harness_%d", time.Now().UnixNano())
	ctrlInt := ns + "_a"
	otherInt := ns + "_b"

	ctrl, err := rt.Open(uapi.EndpointConfig{
		ID: ctrlID, Mode: mode, MyIntName: ctrlInt, OtherIntName: otherInt,
	})
	if err != nil {
		rt.Exit()
		return nil, err
	}
	other, err := rt.Open(uapi.EndpointConfig{
		ID: otherID, Mode: mode, MyIntName: otherInt, OtherIntName: ctrlInt,
	})
	if err != nil {
		rt.Close(ctrl)
		rt.Exit()
		return nil, err
	}

	return &Harness{
		Runtime:      rt,
		Ctrl:         ctrl,
		Other:        other,
		ctrlIntName:  ctrlInt,
		otherIntName: otherInt,
	}, nil
}

// Close tears down both endpoints and the shared-memory file, and unlinks
// both named semaphores this harness created.
func (h *Harness) Close() {
	h.Runtime.Exit()
	sem.Unlink(h.ctrlIntName)
	sem.Unlink(h.otherIntName)
}
