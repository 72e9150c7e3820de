package oak

// TraceEvent is a snapshot of one update cycle, handed to an optional
// Trace hook for diagnostics — logging, metrics, golden-file testing.
// It carries no guarantee about State's representation beyond whatever
// fmt.Stringer or %+v produces, since State is generic and may not be
// comparable or printable in any richer way.
type TraceEvent struct {
	// Cycle is the 1-indexed ordinal of this update call within the run.
	Cycle int

	// State is the transducer's state after this cycle's update call.
	State any

	// Terminal reports whether State is terminal as of this cycle.
	Terminal bool

	// HasEffect reports whether update returned a non-nil Effect.
	HasEffect bool
}

// TraceFunc receives one TraceEvent per update cycle, in order, on the
// run loop's own goroutine. It must not block meaningfully — it runs
// inline between drawing an event and applying its effect.
type TraceFunc func(TraceEvent)
