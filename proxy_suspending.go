package oak

import (
	"context"
	"sync"
	"sync/atomic"
)

// SuspendingProxy is the backpressure proxy mode: a rendezvous channel.
// Input.Send blocks until the event has been fully consumed — update has
// returned and the resulting output's Subject.Send has completed — not
// merely accepted into a buffer. Termination is signalled to the run
// loop by the stream ending. The producer side does see errors: Send
// returns ErrSendAfterTerminate once the stream is closed, ctx's error
// if ctx ends first, and the error the run loop's Subject.Send returned
// for that event's cycle.
type SuspendingProxy[E any] struct {
	id    OpaqueID
	ch    chan suspendingRequest[E]
	bound atomic.Bool

	closeOnce sync.Once
	closed    chan struct{}
	errMu     sync.Mutex
	err       error
}

type suspendingRequest[E any] struct {
	event E
	done  chan error
}

// NewSuspendingProxy constructs a suspending (rendezvous) proxy.
func NewSuspendingProxy[E any]() *SuspendingProxy[E] {
	p := &SuspendingProxy[E]{
		id:     newOpaqueID(),
		ch:     make(chan suspendingRequest[E]),
		closed: make(chan struct{}),
	}
	armDeinitFinalizer(p, p.Cancel)
	return p
}

func (p *SuspendingProxy[E]) ID() OpaqueID { return p.id }

func (p *SuspendingProxy[E]) Input() *Input[E] {
	return &Input[E]{sender: suspendingSender[E]{p: p}}
}

func (p *SuspendingProxy[E]) bind() error {
	if !p.bound.CompareAndSwap(false, true) {
		return ErrProxyAlreadyInUse
	}
	return nil
}

func (p *SuspendingProxy[E]) Finish() {
	p.closeOnce.Do(func() { close(p.closed) })
	disarmDeinitFinalizer(p)
}

func (p *SuspendingProxy[E]) Cancel(err error) {
	if err == nil {
		err = ErrCancelled
	}
	p.errMu.Lock()
	if p.err == nil {
		p.err = err
	}
	p.errMu.Unlock()
	p.closeOnce.Do(func() { close(p.closed) })
	disarmDeinitFinalizer(p)
}

// Release cancels the run this proxy backs with ErrProxyDeinitialized.
func (p *SuspendingProxy[E]) Release() {
	p.Cancel(ErrProxyDeinitialized)
}

type suspendingSender[E any] struct {
	p *SuspendingProxy[E]
}

func (s suspendingSender[E]) send(ctx context.Context, event E) error {
	p := s.p
	req := suspendingRequest[E]{event: event, done: make(chan error, 1)}
	select {
	case p.ch <- req:
	case <-p.closed:
		return ErrSendAfterTerminate
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *SuspendingProxy[E]) recv(ctx context.Context) (E, func(error), bool, error) {
	var zero E
	select {
	case req := <-p.ch:
		completed := false
		complete := func(err error) {
			if completed {
				return
			}
			completed = true
			req.done <- err
		}
		return req.event, complete, true, nil
	case <-p.closed:
		p.errMu.Lock()
		err := p.err
		p.errMu.Unlock()
		return zero, nil, false, err
	case <-ctx.Done():
		return zero, nil, false, ctx.Err()
	}
}
