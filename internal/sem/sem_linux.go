//go:build linux

package sem

import (
	"fmt"
	"hash/fnv"

	"golang.org/x/sys/unix"
)

// sysvSemaphore is a single-member SysV IPC semaphore set, standing in for
// the source's named POSIX semaphore (sem_open/sem_wait/sem_post). The key
// is derived from the semaphore's name so that any two processes agreeing
// on the name attach to the same kernel object, the same way sem_open's
// name argument works.
type sysvSemaphore struct {
	id int
}

func keyFromName(name string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	// Mask to stay within a positive key_t; SysV keys are 32-bit.
	return int(h.Sum32() & 0x3fffffff)
}

func newNamedSemaphore(name string) (Semaphore, error) {
	key := keyFromName(name)

	// IPC_CREAT|IPC_EXCL first, so the creator observes a fresh semaphore
	// initialised to 0 by the kernel; a peer attaching later falls through
	// to a plain Semget against the same key.
	id, err := unix.Semget(key, 1, unix.IPC_CREAT|unix.IPC_EXCL|0o600)
	if err != nil {
		id, err = unix.Semget(key, 1, 0o600)
		if err != nil {
			return nil, fmt.Errorf("sem: semget(%q): %w", name, err)
		}
	}
	return &sysvSemaphore{id: id}, nil
}

func unlinkNamedSemaphore(name string) error {
	key := keyFromName(name)
	id, err := unix.Semget(key, 1, 0o600)
	if err != nil {
		// Already gone; treat as success, matching sem_unlink(ENOENT).
		return nil
	}
	_, _, errno := unix.Syscall(unix.SYS_SEMCTL, uintptr(id), 0, unix.IPC_RMID)
	if errno != 0 {
		return fmt.Errorf("sem: semctl(IPC_RMID): %w", errno)
	}
	return nil
}

func (s *sysvSemaphore) op(delta int16, flags int16) error {
	sop := unix.Sembuf{Semnum: 0, Semop: delta, Semflg: flags}
	for {
		err := unix.Semop(s.id, []unix.Sembuf{sop})
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

func (s *sysvSemaphore) Wait() {
	if err := s.op(-1, 0); err != nil {
		panic(fmt.Sprintf("sem: wait failed: %v", err))
	}
}

func (s *sysvSemaphore) TryWait() bool {
	err := s.op(-1, int16(unix.IPC_NOWAIT))
	if err == nil {
		return true
	}
	if err == unix.EAGAIN {
		return false
	}
	panic(fmt.Sprintf("sem: trywait failed: %v", err))
}

func (s *sysvSemaphore) Post() {
	if err := s.op(1, 0); err != nil {
		panic(fmt.Sprintf("sem: post failed: %v", err))
	}
}

func (s *sysvSemaphore) Close() error {
	// SysV semaphores have no per-handle close distinct from IPC_RMID;
	// removal happens only through Unlink, which Runtime.Exit does not
	// call, so Close just drops the reference.
	return nil
}
