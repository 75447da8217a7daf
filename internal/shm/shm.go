// Package shm creates and maps the shared-memory region backing a cable
// pair: a plain file, sized once by the creator, mapped MAP_SHARED by every
// attaching process. Grounded on the teacher's internal/queue/runner.go mmap
// setup (open fd, Ftruncate/size it, Mmap, keep an unsafe.Pointer base).
package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Region is a memory-mapped shared region plus the bookkeeping needed to
// tear it down correctly depending on whether this process created it.
type Region struct {
	Bytes   []byte
	path    string
	creator bool
	fd      int
}

// Create opens (or truncates) the backing file at path, sizes it to size
// bytes, and maps it read/write shared. Per REDESIGN FLAG #1, the mapped
// region is unconditionally zeroed here — the source zeroed conditionally
// on a particular startup code path, which this implementation treats as a
// bug rather than a behaviour to preserve.
func Create(path string, size int) (*Region, error) {
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR|unix.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("shm: open %s: %w", path, err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: ftruncate %s to %d: %w", path, size, err)
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}
	for i := range data {
		data[i] = 0
	}

	return &Region{Bytes: data, path: path, creator: true, fd: fd}, nil
}

// Attach opens an existing shared-memory file created by Create in another
// (or this) process and maps it without touching its contents.
func Attach(path string, size int) (*Region, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("shm: open %s: %w", path, err)
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}

	return &Region{Bytes: data, path: path, creator: false, fd: fd}, nil
}

// Close unmaps the region and closes the descriptor. If this process is the
// creator, the backing file is also removed (Runtime.Exit/Ripcord teardown
// ordering, §4.D.9/§9).
func (r *Region) Close() error {
	if r == nil {
		return nil
	}
	err := unix.Munmap(r.Bytes)
	_ = unix.Close(r.fd)
	if r.creator {
		_ = os.Remove(r.path)
	}
	return err
}

// IsCreator reports whether this process created the region.
func (r *Region) IsCreator() bool { return r.creator }
