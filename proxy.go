package oak

import (
	"context"
	"runtime"
)

// Proxy is the event ingress channel bound to exactly one transducer
// run. Two implementations are provided — [NewBufferedProxy] (fire-and-
// forget, bounded, drop-oldest) and [NewSuspendingProxy] (rendezvous,
// full backpressure) — chosen at construction time, not switched at
// runtime; the run loop's algorithm is identical over either.
type Proxy[E any] interface {
	// ID returns the proxy's stable identity.
	ID() OpaqueID

	// Input returns a cheap, cloneable, send-only handle for producers.
	Input() *Input[E]

	// Cancel forcibly terminates the run with err (or ErrCancelled if
	// err is nil). Idempotent.
	Cancel(err error)

	// Finish closes the stream cleanly: pending events already queued
	// may still be drained, but no further Input.Send calls succeed and
	// recv eventually reports end-of-stream rather than an error.
	Finish()

	// Release marks the proxy as deliberately dropped by its owner: if
	// the run it backs is still live, the run is cancelled with
	// ErrProxyDeinitialized the same way Cancel(ErrProxyDeinitialized)
	// would be. Idempotent, and safe to call after the run has already
	// ended. Release is the only way a dropped proxy cancels its run:
	// letting the last caller-held reference go out of scope does not,
	// since a live run keeps the proxy reachable and the finalizer armed
	// at construction never fires (see armDeinitFinalizer).
	Release()

	// bind associates this proxy with a run. A proxy may be bound at
	// most once in its lifetime.
	bind() error

	// recv draws the next event off the stream. ok is false when the
	// stream ended (via Finish, Cancel, or ctx cancellation); err holds
	// the reason in the Cancel/ctx-cancellation case. complete, when
	// non-nil, must be invoked by the run loop exactly once, immediately
	// after this cycle's Subject.Send returns, to unblock a suspending
	// producer.
	recv(ctx context.Context) (event E, complete func(error), ok bool, err error)
}

// Input is a cheap, cloneable, send-only handle derived from a Proxy.
// Producers hold an Input, never the Proxy itself, so they cannot call
// Cancel/Finish — only the component that constructed the Proxy can.
type Input[E any] struct {
	sender inputSender[E]
}

// inputSender is the per-mode send implementation an Input delegates to.
type inputSender[E any] interface {
	send(ctx context.Context, event E) error
}

// Send submits event to the proxy. For a buffered proxy this returns
// immediately (see BufferedProxy for the drop-oldest overflow policy);
// for a suspending proxy it blocks until the event has been fully
// consumed — update has returned and the resulting output's Subject.Send
// has completed — or ctx is done.
func (in *Input[E]) Send(ctx context.Context, event E) error {
	return in.sender.send(ctx, event)
}

// armDeinitFinalizer registers a finalizer on obj (a *BufferedProxy[E]
// or *SuspendingProxy[E]) that calls cancel(ErrProxyDeinitialized).
// cancel is that proxy's own Cancel method value, so the finalizer
// function itself holds a reference to obj; obj therefore stays
// reachable and the finalizer does not run. Finish/Cancel/Release clear
// it via disarmDeinitFinalizer.
func armDeinitFinalizer(obj any, cancel func(error)) {
	runtime.SetFinalizer(obj, func(any) { cancel(ErrProxyDeinitialized) })
}

// disarmDeinitFinalizer clears a finalizer armed by armDeinitFinalizer,
// called once a proxy has been torn down through its normal API so the
// finalizer never fires against an already-finished run.
func disarmDeinitFinalizer(obj any) {
	runtime.SetFinalizer(obj, nil)
}
