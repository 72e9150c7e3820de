package oak

import (
	"context"
	"errors"
	"testing"
)

func TestBufferedProxy_BindTwiceReturnsAlreadyInUse(t *testing.T) {
	p := NewBufferedProxy[int](4)
	if err := p.bind(); err != nil {
		t.Fatalf("first bind should succeed: %v", err)
	}
	if err := p.bind(); !errors.Is(err, ErrProxyAlreadyInUse) {
		t.Errorf("expected ErrProxyAlreadyInUse, got %v", err)
	}
}

func TestBufferedProxy_OverflowDropsOldest(t *testing.T) {
	p := NewBufferedProxy[int](2)
	ctx := context.Background()
	_ = p.Input().Send(ctx, 1)
	_ = p.Input().Send(ctx, 2)
	_ = p.Input().Send(ctx, 3) // should evict 1

	for _, want := range []int{2, 3} {
		ev, _, ok, err := p.recv(ctx)
		if !ok || err != nil {
			t.Fatalf("expected event %d, got ok=%v err=%v", want, ok, err)
		}
		if ev != want {
			t.Errorf("expected %d, got %d", want, ev)
		}
	}
}

func TestBufferedProxy_SendAfterFinishReturnsSendAfterTerminate(t *testing.T) {
	p := NewBufferedProxy[int](4)
	p.Finish()
	if err := p.Input().Send(context.Background(), 1); !errors.Is(err, ErrSendAfterTerminate) {
		t.Errorf("expected ErrSendAfterTerminate, got %v", err)
	}
}

func TestBufferedProxy_RecvAfterFinishDrainsThenReportsEndOfStream(t *testing.T) {
	p := NewBufferedProxy[int](4)
	_ = p.Input().Send(context.Background(), 1)
	p.Finish()

	ev, _, ok, err := p.recv(context.Background())
	if !ok || err != nil || ev != 1 {
		t.Fatalf("expected to drain queued event 1 first, got ev=%d ok=%v err=%v", ev, ok, err)
	}
	_, _, ok, err = p.recv(context.Background())
	if ok || err != nil {
		t.Errorf("expected clean end-of-stream (ok=false, err=nil), got ok=%v err=%v", ok, err)
	}
}

func TestBufferedProxy_CancelSurfacesTheGivenError(t *testing.T) {
	p := NewBufferedProxy[int](4)
	p.Cancel(errIO)
	_, _, ok, err := p.recv(context.Background())
	if ok || !errors.Is(err, errIO) {
		t.Errorf("expected ok=false err=errIO, got ok=%v err=%v", ok, err)
	}
}

func TestBufferedProxy_ReleaseSurfacesProxyDeinitialized(t *testing.T) {
	p := NewBufferedProxy[int](4)
	p.Release()
	_, _, ok, err := p.recv(context.Background())
	if ok || !errors.Is(err, ErrProxyDeinitialized) {
		t.Errorf("expected ok=false err=ErrProxyDeinitialized, got ok=%v err=%v", ok, err)
	}
}
