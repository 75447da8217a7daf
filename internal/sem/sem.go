// Package sem provides the counting semaphore abstraction the cable
// transport uses for "my-interrupt"/"other-interrupt" wake-ups (§9, "Named
// semaphores as cross-process wake"). A named semaphore rendezvous between
// two processes that agree on a name; an unnamed one only ever needs to be
// shared within this process's memory.
package sem

import "sync"

// Semaphore is a classic counting semaphore: Post increments, Wait
// decrements-or-blocks, TryWait decrements-or-reports-not-ready.
type Semaphore interface {
	Wait()
	TryWait() bool
	Post()
	Close() error
}

// Named opens (creating if necessary) a semaphore identified by name,
// initial value 0, suitable for cross-process rendezvous when creator and
// peer run in separate OS processes sharing the same shared-memory file.
// On platforms without a SysV IPC implementation it falls back to an
// in-process Unnamed semaphore, which only works when both endpoints of a
// pair live in this process.
func Named(name string) (Semaphore, error) {
	return newNamedSemaphore(name)
}

// Unlink removes a named semaphore's kernel-persistent state.
// Runtime.Exit and Ripcord do not call it; the caller that chose the
// semaphore names unlinks them itself once teardown is done.
func Unlink(name string) error {
	return unlinkNamedSemaphore(name)
}

// Unnamed is an in-process counting semaphore backed by a mutex and
// condition variable — the single-process fallback described in §9.
type Unnamed struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

// NewUnnamed returns an Unnamed semaphore with the given initial value.
func NewUnnamed(initial int) *Unnamed {
	u := &Unnamed{count: initial}
	u.cond = sync.NewCond(&u.mu)
	return u
}

func (u *Unnamed) Wait() {
	u.mu.Lock()
	for u.count == 0 {
		u.cond.Wait()
	}
	u.count--
	u.mu.Unlock()
}

func (u *Unnamed) TryWait() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.count == 0 {
		return false
	}
	u.count--
	return true
}

func (u *Unnamed) Post() {
	u.mu.Lock()
	u.count++
	u.mu.Unlock()
	u.cond.Signal()
}

func (u *Unnamed) Close() error { return nil }
