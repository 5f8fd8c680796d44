package probe

import (
	"context"
	"testing"
	"time"
)

func TestProbeTimeoutReturnsFalse(t *testing.T) {
	// 192.0.2.0/24 is TEST-NET-1, reserved for documentation; packets are
	// black-holed, so a short timeout reliably expires without a real
	// device ever needing to be reachable.
	ok, err := Probe(context.Background(), "192.0.2.1", 50*time.Millisecond, false)
	if err != nil {
		t.Fatalf("unexpected error without raiseOnTimeout: %v", err)
	}
	if ok {
		t.Fatal("expected unreachable target to report false")
	}
}

func TestProbeTimeoutRaises(t *testing.T) {
	_, err := Probe(context.Background(), "192.0.2.1", 50*time.Millisecond, true)
	if err == nil {
		t.Fatal("expected timeout error when raiseOnTimeout is set")
	}
}

func TestProbeZeroTimeoutDoesNotBlock(t *testing.T) {
	done := make(chan struct{})
	go func() {
		Probe(context.Background(), "192.0.2.1", 0, false)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("probe with zero timeout blocked instead of returning promptly")
	}
}

func TestProbeContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := Probe(ctx, "192.0.2.1", 5*time.Second, false)
	if ok {
		t.Fatal("expected false when context already cancelled")
	}
	_ = err
}
