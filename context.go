package oak

import (
	"context"
	"log"
	"sync"
)

// Context is the per-run registry of managed tasks: a table keyed by
// TaskID holding the (uid, cancel) pair for the task currently occupying
// that slot, plus the two monotonic counters used to mint uids and
// synthetic TaskIDs. It is dropped when the run returns; dropping it
// cancels every task still registered.
//
// Unlike the reference asynctask.Manager (which guards its tables with
// sync.Map because tasks are registered from arbitrary caller
// goroutines), Context's table only ever gets a new entry from the
// run-loop goroutine — operation tasks only ever *remove* their own
// entry on completion, from their own goroutine. A plain mutex-guarded
// map is therefore enough; see SPEC_FULL.md §7.
type Context[E, Env any] struct {
	idCounters

	mu      sync.Mutex
	entries map[TaskID]taskEntry

	ctx       context.Context
	terminate func(error)
	input     *Input[E]
	logger    *log.Logger
}

type taskEntry struct {
	uid    uint64
	cancel context.CancelFunc
}

// newContext builds a Context bound to ctx (the parent for every
// operation task it spawns) whose terminate callback is invoked when a
// managed task fails with a non-cancellation error — per spec this
// forwards to proxy.Cancel(err).
func newContext[E, Env any](ctx context.Context, input *Input[E], logger *log.Logger, terminate func(error)) *Context[E, Env] {
	return &Context[E, Env]{
		entries:   make(map[TaskID]taskEntry),
		ctx:       ctx,
		terminate: terminate,
		input:     input,
		logger:    logger,
	}
}

// register stores (uid, cancel) under id, cancelling and dropping
// whatever task previously occupied that slot first.
func (c *Context[E, Env]) register(id TaskID, uid uint64, cancel context.CancelFunc) {
	c.mu.Lock()
	if prev, ok := c.entries[id]; ok {
		c.logger.Printf("[ctx] replacing task id=%v uid=%d with uid=%d", id, prev.uid, uid)
		prev.cancel()
	}
	c.entries[id] = taskEntry{uid: uid, cancel: cancel}
	c.mu.Unlock()
}

// removeCompleted removes the entry at id only if it still belongs to
// uid — the "uid gate" that keeps a task completing after it was
// logically replaced from erasing its replacement's entry.
func (c *Context[E, Env]) removeCompleted(id TaskID, uid uint64) {
	c.mu.Lock()
	if entry, ok := c.entries[id]; ok && entry.uid == uid {
		delete(c.entries, id)
	}
	c.mu.Unlock()
}

// cancelByID cancels and removes the task at id, if any.
func (c *Context[E, Env]) cancelByID(id TaskID) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	if ok {
		delete(c.entries, id)
	}
	c.mu.Unlock()
	if ok {
		entry.cancel()
	}
}

// cancelAll cancels every registered task and clears the table. Calling
// it with no tasks registered is a no-op — idempotent per SPEC_FULL.md §10.
func (c *Context[E, Env]) cancelAll() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[TaskID]taskEntry)
	c.mu.Unlock()
	for _, entry := range entries {
		entry.cancel()
	}
}

// Len reports the number of managed tasks currently registered. Exposed
// for diagnostics and for the testable property that Context is empty
// when a run returns (SPEC_FULL.md §5).
func (c *Context[E, Env]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
