package oak

import (
	"context"
	"sync"
	"time"
)

// Clock is an abstract source of delays, injected into delayed effects
// so tests can control time instead of racing real timers.
type Clock interface {
	// Sleep blocks until duration has elapsed (rounded per tolerance, an
	// implementation-defined coalescing hint) or ctx is done, whichever
	// comes first.
	Sleep(ctx context.Context, duration, tolerance time.Duration) error
}

// RealClock sleeps using the standard library's timer. tolerance rounds
// the requested duration up to the nearest multiple of itself, the same
// coalescing trick a production scheduler uses to batch nearby timers
// together instead of waking the process once per request.
type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, duration, tolerance time.Duration) error {
	d := duration
	if tolerance > 0 {
		if rem := d % tolerance; rem != 0 {
			d += tolerance - rem
		}
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ManualClock is a test double: Sleep blocks until the test has called
// Advance with enough cumulative duration to cover the pending request,
// or until ctx is done. It supports any number of concurrent waiters.
type ManualClock struct {
	mu       sync.Mutex
	requests []*clockRequest
}

type clockRequest struct {
	remaining time.Duration
	done      chan struct{}
}

// NewManualClock returns a ManualClock with no time elapsed.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

func (c *ManualClock) Sleep(ctx context.Context, duration, tolerance time.Duration) error {
	if tolerance > 0 {
		if rem := duration % tolerance; rem != 0 {
			duration += tolerance - rem
		}
	}
	if duration <= 0 {
		return ctx.Err()
	}
	req := &clockRequest{remaining: duration, done: make(chan struct{})}
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Advance moves virtual time forward by `by`, releasing every pending
// Sleep request whose remaining duration has now elapsed. Calling it
// repeatedly accumulates correctly: a Sleep(3*time.Second) request
// outlives the first of two Advance(2*time.Second) calls and is
// released by the second.
func (c *ManualClock) Advance(by time.Duration) {
	c.mu.Lock()
	remaining := c.requests[:0]
	var ready []*clockRequest
	for _, req := range c.requests {
		req.remaining -= by
		if req.remaining <= 0 {
			ready = append(ready, req)
		} else {
			remaining = append(remaining, req)
		}
	}
	c.requests = remaining
	c.mu.Unlock()

	for _, req := range ready {
		close(req.done)
	}
}
