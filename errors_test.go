package van

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessageIncludesOpAndEndpoint(t *testing.T) {
	err := NewEndpointError("Open", 2, CodeAlreadyOpen, "endpoint already open")
	msg := err.Error()
	if !strings.Contains(msg, "op=Open") || !strings.Contains(msg, "endpoint=2") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestWrapErrorPreservesCode(t *testing.T) {
	inner := NewEndpointError("Write", 0, CodeContractViolation, "pending payload")
	wrapped := WrapError("Runtime.Open", inner)
	if wrapped.Code != CodeContractViolation {
		t.Fatalf("expected code to survive wrapping, got %s", wrapped.Code)
	}
	if wrapped.Op != "Runtime.Open" {
		t.Fatalf("expected outer op to replace inner op, got %s", wrapped.Op)
	}
}

func TestWrapErrorNilReturnsNil(t *testing.T) {
	if WrapError("Op", nil) != nil {
		t.Fatal("expected WrapError(nil) to return nil")
	}
}

func TestIsCodeMatchesThroughUnwrap(t *testing.T) {
	base := NewError("shm.Create", CodeIOError, "mmap failed")
	wrapped := WrapError("Runtime.Init", base)
	if !IsCode(wrapped, CodeIOError) {
		t.Fatal("expected IsCode to find CodeIOError through the wrap")
	}
	if IsCode(wrapped, CodeNotFound) {
		t.Fatal("expected IsCode to reject a mismatched code")
	}
}

func TestErrorIsCompatibleWithErrorsIs(t *testing.T) {
	a := NewError("Open", CodeResourceLimit, "table full")
	b := NewError("Close", CodeResourceLimit, "unrelated")
	if !errors.Is(a, b) {
		t.Fatal("expected errors.Is to match on Code")
	}
}
