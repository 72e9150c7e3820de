package oak

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSuspendingProxy_SendBlocksUntilRecvCompletes(t *testing.T) {
	p := NewSuspendingProxy[int]()
	sendDone := make(chan error, 1)

	go func() {
		sendDone <- p.Input().Send(context.Background(), 42)
	}()

	ev, complete, ok, err := p.recv(context.Background())
	if !ok || err != nil || ev != 42 {
		t.Fatalf("expected to receive 42, got ev=%d ok=%v err=%v", ev, ok, err)
	}

	select {
	case <-sendDone:
		t.Fatal("Send should not complete before the completion callback is invoked")
	case <-time.After(10 * time.Millisecond):
	}

	complete(nil)
	select {
	case err := <-sendDone:
		if err != nil {
			t.Errorf("unexpected Send error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("expected Send to unblock after complete(nil)")
	}
}

func TestSuspendingProxy_CompleteWithErrorPropagatesToSender(t *testing.T) {
	p := NewSuspendingProxy[int]()
	sendDone := make(chan error, 1)

	go func() {
		sendDone <- p.Input().Send(context.Background(), 1)
	}()

	_, complete, ok, err := p.recv(context.Background())
	if !ok || err != nil {
		t.Fatalf("unexpected recv failure: ok=%v err=%v", ok, err)
	}
	complete(errIO)

	if err := <-sendDone; !errors.Is(err, errIO) {
		t.Errorf("expected errIO to propagate to the sender, got %v", err)
	}
}

func TestSuspendingProxy_CompleteIsIdempotent(t *testing.T) {
	p := NewSuspendingProxy[int]()
	sendDone := make(chan error, 1)
	go func() { sendDone <- p.Input().Send(context.Background(), 1) }()

	_, complete, _, _ := p.recv(context.Background())
	complete(nil)
	complete(errIO) // second call must be a no-op, not a panic or a second send

	if err := <-sendDone; err != nil {
		t.Errorf("expected the first complete() call to win, got %v", err)
	}
}

func TestSuspendingProxy_FinishEndsTheStreamCleanly(t *testing.T) {
	p := NewSuspendingProxy[int]()
	p.Finish()
	_, _, ok, err := p.recv(context.Background())
	if ok || err != nil {
		t.Errorf("expected clean end-of-stream, got ok=%v err=%v", ok, err)
	}
}

func TestSuspendingProxy_ReleaseSurfacesProxyDeinitialized(t *testing.T) {
	p := NewSuspendingProxy[int]()
	p.Release()
	_, _, ok, err := p.recv(context.Background())
	if ok || !errors.Is(err, ErrProxyDeinitialized) {
		t.Errorf("expected ok=false err=ErrProxyDeinitialized, got ok=%v err=%v", ok, err)
	}
}

func TestSuspendingProxy_BindTwiceFails(t *testing.T) {
	p := NewSuspendingProxy[int]()
	if err := p.bind(); err != nil {
		t.Fatalf("first bind should succeed: %v", err)
	}
	if err := p.bind(); !errors.Is(err, ErrProxyAlreadyInUse) {
		t.Errorf("expected ErrProxyAlreadyInUse, got %v", err)
	}
}
