package oak

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Isolator is the execution context the managed goroutine of an
// Operation, DelayedOperation or DelayedEmitEvent effect built with
// EffectExecGlobal runs on: such effects are handed to Isolator.Go.
// Effects built with EffectExecSystem never touch it (their managed
// goroutine is spawned with a bare `go` statement), and Action and
// EmitEvent effects always run inline on the run loop's own goroutine.
type Isolator interface {
	// Go runs fn on whatever execution context this Isolator provides.
	// It must not block the caller waiting for fn to finish.
	Go(fn func())
}

// GoIsolator is the default Isolator: every global-isolated effect gets
// its own goroutine, unbounded, exactly like a bare `go fn()`.
type GoIsolator struct{}

func (GoIsolator) Go(fn func()) { go fn() }

// PooledIsolator bounds the number of concurrently running
// global-isolated effects using a weighted semaphore, so a transducer
// that fans out many Operation effects doesn't unboundedly grow the
// goroutine count. Acquire blocks the *spawn*, not the run loop itself —
// Go still returns once the goroutine has been scheduled to acquire its
// slot, never before.
type PooledIsolator struct {
	ctx context.Context
	sem *semaphore.Weighted
}

// NewPooledIsolator returns an Isolator that runs at most maxConcurrent
// effects at once. ctx bounds how long a queued effect will wait for a
// slot before giving up silently (its Go call becomes a no-op once ctx
// is done, matching "an effect cancelled before running produces no
// event").
func NewPooledIsolator(ctx context.Context, maxConcurrent int64) *PooledIsolator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &PooledIsolator{ctx: ctx, sem: semaphore.NewWeighted(maxConcurrent)}
}

func (p *PooledIsolator) Go(fn func()) {
	go func() {
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		fn()
	}()
}
