//go:build !linux

package sem

import "sync"

// Named semaphores require SysV IPC, available only on linux in this
// implementation. On other platforms we fall back to a process-local
// registry keyed by name: cross-process rendezvous is unavailable, but a
// single-process pair of endpoints (the common case for tests and the demo
// CLI) still works correctly.
var (
	registryMu sync.Mutex
	registry   = map[string]*Unnamed{}
)

func newNamedSemaphore(name string) (Semaphore, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if s, ok := registry[name]; ok {
		return s, nil
	}
	s := NewUnnamed(0)
	registry[name] = s
	return s, nil
}

func unlinkNamedSemaphore(name string) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
	return nil
}
