package registry

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterLookup(t *testing.T) {
	r := New()
	sentinel := errors.New("ran")

	r.Register("SendFSK", func(ctx context.Context, arg string) error {
		return sentinel
	})

	// Lookup is case-insensitive.
	exec, ok := r.Lookup("sendfsk")
	if !ok {
		t.Fatal("Lookup(sendfsk) not found")
	}
	if err := exec(context.Background(), ""); err != sentinel {
		t.Errorf("exec() = %v, want sentinel", err)
	}

	if _, ok := r.Lookup("ReceiveFSK"); ok {
		t.Error("Lookup(ReceiveFSK) found unregistered app")
	}
}

func TestRegisterIdempotent(t *testing.T) {
	r := New()
	calls := 0

	r.Register("SendFSK", func(ctx context.Context, arg string) error {
		calls++
		return nil
	})
	// Same name again: replaces, does not duplicate.
	r.Register("sendfsk", func(ctx context.Context, arg string) error {
		calls += 10
		return nil
	})

	if got := len(r.Names()); got != 1 {
		t.Fatalf("len(Names()) = %d, want 1", got)
	}
	exec, _ := r.Lookup("SENDFSK")
	exec(context.Background(), "")
	if calls != 10 {
		t.Errorf("calls = %d, want 10 (replacement should win)", calls)
	}
}

func TestUnregisterOrderIndependent(t *testing.T) {
	r := New()
	noop := func(ctx context.Context, arg string) error { return nil }

	r.Register("SendFSK", noop)
	r.Register("ReceiveFSK", noop)

	r.Unregister("ReceiveFSK")
	r.Unregister("SendFSK")
	// Unknown and repeated unregisters are no-ops.
	r.Unregister("SendFSK")
	r.Unregister("NeverExisted")

	if got := len(r.Names()); got != 0 {
		t.Errorf("len(Names()) = %d, want 0", got)
	}
}
