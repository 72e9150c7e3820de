package oak

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestActor_CancelStopsTheManagedRunAndWaitReturnsItsError(t *testing.T) {
	proxy := NewBufferedProxy[int](4)

	fn := func(ctx context.Context, proxy Proxy[int]) (int, error) {
		update := func(s *int, e int, _ struct{}) (*Effect[int, struct{}], int) {
			*s = e
			return nil, e
		}
		return RunWithStorage[int, int, int, struct{}](ctx, NewLocalStorage(0), update,
			WithProxy[int, int, int, struct{}](proxy))
	}

	doneCh := make(chan struct{})
	var gotOut int
	var gotErr error
	a := RunActor[int, int](context.Background(), proxy, fn, func(out int, err error) {
		gotOut, gotErr = out, err
		close(doneCh)
	})

	a.Cancel(errIO)

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("expected the actor's completion handler to run after Cancel")
	}
	if !errors.Is(gotErr, errIO) {
		t.Errorf("expected errIO to propagate to the completion handler, got %v", gotErr)
	}
	_ = gotOut

	if err := a.Wait(); !errors.Is(err, errIO) {
		t.Errorf("expected Wait to return errIO, got %v", err)
	}
}

func TestActor_NilProxyIsAutoConstructedAndReachesFn(t *testing.T) {
	fn := func(ctx context.Context, proxy Proxy[int]) (int, error) {
		if proxy == nil {
			t.Fatal("expected RunActor to pass a non-nil auto-constructed proxy to fn")
		}
		update := func(s *int, e int, _ struct{}) (*Effect[int, struct{}], int) {
			*s = e
			return nil, e
		}
		return RunWithStorage[int, int, int, struct{}](ctx, NewLocalStorage(0), update,
			WithProxy[int, int, int, struct{}](proxy))
	}

	doneCh := make(chan struct{})
	a := RunActor[int, int](context.Background(), nil, fn, func(int, error) {
		close(doneCh)
	})

	// Cancel must not panic even though the caller passed a nil proxy.
	a.Cancel(nil)

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("expected the actor's completion handler to run after Cancel")
	}
	if err := a.Wait(); !errors.Is(err, ErrCancelled) {
		t.Errorf("expected Wait to return ErrCancelled, got %v", err)
	}
}
