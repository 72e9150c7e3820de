package oak

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultBufferedCapacity is the default queue size for a BufferedProxy,
// per SPEC_FULL.md §8 ("(default 8)").
const DefaultBufferedCapacity = 8

// BufferedProxy is the fire-and-forget proxy mode: a bounded queue with
// policy "buffer newest N, drop oldest on overflow". Producers never
// block; when the queue is full, the oldest queued event is silently
// evicted to make room for the new one (the new event is always
// accepted).
type BufferedProxy[E any] struct {
	id       OpaqueID
	capacity int

	mu     sync.Mutex
	queue  []E
	closed bool
	err    error

	bound  atomic.Bool
	notify chan struct{}
}

// NewBufferedProxy constructs a buffered proxy with the given capacity.
// A capacity <= 0 falls back to DefaultBufferedCapacity.
func NewBufferedProxy[E any](capacity int) *BufferedProxy[E] {
	if capacity <= 0 {
		capacity = DefaultBufferedCapacity
	}
	p := &BufferedProxy[E]{
		id:       newOpaqueID(),
		capacity: capacity,
		notify:   make(chan struct{}, 1),
	}
	armDeinitFinalizer(p, p.Cancel)
	return p
}

func (p *BufferedProxy[E]) ID() OpaqueID { return p.id }

func (p *BufferedProxy[E]) Input() *Input[E] {
	return &Input[E]{sender: bufferedSender[E]{p: p}}
}

func (p *BufferedProxy[E]) bind() error {
	if !p.bound.CompareAndSwap(false, true) {
		return ErrProxyAlreadyInUse
	}
	return nil
}

func (p *BufferedProxy[E]) Finish() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
	}
	p.mu.Unlock()
	disarmDeinitFinalizer(p)
	p.wake()
}

func (p *BufferedProxy[E]) Cancel(err error) {
	if err == nil {
		err = ErrCancelled
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.err = err
	}
	p.mu.Unlock()
	disarmDeinitFinalizer(p)
	p.wake()
}

// Release cancels the run this proxy backs with ErrProxyDeinitialized.
func (p *BufferedProxy[E]) Release() {
	p.Cancel(ErrProxyDeinitialized)
}

func (p *BufferedProxy[E]) wake() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// bufferedSender implements inputSender for BufferedProxy.
type bufferedSender[E any] struct {
	p *BufferedProxy[E]
}

func (s bufferedSender[E]) send(_ context.Context, event E) error {
	p := s.p
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrSendAfterTerminate
	}
	if len(p.queue) >= p.capacity {
		// Drop the oldest to make room; the new event is always
		// accepted under this policy.
		p.queue = p.queue[1:]
	}
	p.queue = append(p.queue, event)
	p.mu.Unlock()
	p.wake()
	return nil
}

func (p *BufferedProxy[E]) recv(ctx context.Context) (E, func(error), bool, error) {
	var zero E
	for {
		p.mu.Lock()
		if p.closed && p.err != nil {
			// Cancelled: stop at once, without draining queued events.
			err := p.err
			p.mu.Unlock()
			return zero, nil, false, err
		}
		if len(p.queue) > 0 {
			event := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()
			return event, nil, true, nil
		}
		if p.closed {
			err := p.err
			p.mu.Unlock()
			return zero, nil, false, err
		}
		p.mu.Unlock()

		select {
		case <-p.notify:
		case <-ctx.Done():
			return zero, nil, false, ctx.Err()
		}
	}
}
