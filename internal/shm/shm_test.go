package shm

import (
	"path/filepath"
	"testing"
)

func TestCreateZeroesRegion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "van.shm")

	r, err := Create(path, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer r.Close()

	for i, b := range r.Bytes {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: %v", i, b)
		}
	}
	if !r.IsCreator() {
		t.Fatal("expected IsCreator() true for Create")
	}
}

func TestAttachSeesCreatorWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "van.shm")

	creator, err := Create(path, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer creator.Close()

	creator.Bytes[0] = 0xAB
	creator.Bytes[4095] = 0xCD

	peer, err := Attach(path, 4096)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer peer.Close()

	if peer.Bytes[0] != 0xAB || peer.Bytes[4095] != 0xCD {
		t.Fatal("attached region did not observe creator's writes")
	}
	if peer.IsCreator() {
		t.Fatal("expected IsCreator() false for Attach")
	}

	peer.Bytes[10] = 0xEF
	if creator.Bytes[10] != 0xEF {
		t.Fatal("writes through the attached mapping are not visible to the creator mapping")
	}
}
