package oak

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Actor binds a transducer run's lifetime to an external owner: it
// starts the run on its own goroutine (managed by an errgroup.Group the
// same way the shell's role goroutines are managed), exposes Cancel for
// the owner to stop it early, and invokes done exactly once with the
// run's final output and error.
type Actor[E any] struct {
	proxy  Proxy[E]
	group  *errgroup.Group
	cancel context.CancelCauseFunc
}

// RunActor starts run on its own goroutine against a context derived
// from ctx, and returns an Actor the caller can Cancel or Wait on. proxy
// may be nil, in which case RunActor constructs a BufferedProxy with
// DefaultBufferedCapacity (mirroring Run/RunWithStorage's own fallback)
// and passes it to fn so the caller's transducer-driving closure can
// reach the one actually in use. fn should be a closure over
// Run/RunWithStorage and its arguments; done is invoked with whatever fn
// returns once it completes.
func RunActor[E, O any](ctx context.Context, proxy Proxy[E], fn func(context.Context, Proxy[E]) (O, error), done func(O, error)) *Actor[E] {
	if proxy == nil {
		proxy = NewBufferedProxy[E](DefaultBufferedCapacity)
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)

	a := &Actor[E]{proxy: proxy, group: group, cancel: cancel}

	group.Go(func() error {
		out, err := fn(groupCtx, proxy)
		if done != nil {
			done(out, err)
		}
		return err
	})

	return a
}

// Cancel stops the run with err (ErrCancelled if nil), forcibly ending
// the proxy's stream the same way Proxy.Cancel does. a.proxy is never
// nil once RunActor has returned, so this never risks a nil-interface
// panic even when the caller passed a nil proxy to RunActor.
func (a *Actor[E]) Cancel(err error) {
	if err == nil {
		err = ErrCancelled
	}
	a.cancel(err)
	a.proxy.Cancel(err)
}

// Wait blocks until the managed run's goroutine has returned, yielding
// the same error fn returned.
func (a *Actor[E]) Wait() error {
	return a.group.Wait()
}
