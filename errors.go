package oak

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by Run and the proxy implementations. Wrap them
// with %w so callers can errors.Is/errors.As against the taxonomy in
// SPEC_FULL.md §9 without parsing messages.
var (
	// ErrProxyAlreadyInUse is returned by Run when the supplied proxy has
	// already been bound to a previous run. A proxy may back at most one
	// transducer identity during its lifetime.
	ErrProxyAlreadyInUse = errors.New("oak: proxy already in use")

	// ErrNoOutputProduced is returned when the initial state is terminal
	// and no initial output was supplied via WithInitialOutput, so Run has
	// nothing to return. WithInitialOutput takes a fixed value; it is not
	// computed from the initial state.
	ErrNoOutputProduced = errors.New("oak: no output produced")

	// ErrCancelled is the default reason attached to Proxy.Cancel(nil)
	// and to cooperative host-context cancellation.
	ErrCancelled = errors.New("oak: cancelled")

	// ErrSendAfterTerminate is returned by Input.Send once the backing
	// proxy stream has been finished or cancelled.
	ErrSendAfterTerminate = errors.New("oak: send after terminate")

	// ErrProxyDeinitialized is the reason a run is cancelled with when its
	// proxy is explicitly released (Proxy.Release) while the run is still
	// live.
	ErrProxyDeinitialized = errors.New("oak: proxy deinitialized")
)

// DroppedEventError describes an event that was dropped. BufferedProxy
// evicts its oldest queued event silently on overflow and does not
// return this error.
type DroppedEventError struct {
	// Info is a short, implementation-defined description of what was
	// dropped (the proxy has no visibility into event contents beyond
	// whatever the caller wants recorded via a trace hook).
	Info string
}

func (e *DroppedEventError) Error() string {
	return fmt.Sprintf("oak: dropped event: %s", e.Info)
}

// cancelledError wraps an underlying cause (a host ctx.Err()) behind
// ErrCancelled so errors.Is(err, ErrCancelled) succeeds for host-context
// cancellation, while errors.Unwrap still exposes the real cause. An
// operation failure or an explicit Proxy.Cancel reason is not wrapped;
// Run surfaces it verbatim (see classifyCancellation).
type cancelledError struct {
	cause error
}

func (e *cancelledError) Error() string {
	if e.cause == nil {
		return ErrCancelled.Error()
	}
	return fmt.Sprintf("%s: %v", ErrCancelled.Error(), e.cause)
}

func (e *cancelledError) Unwrap() []error {
	return []error{ErrCancelled, e.cause}
}

// wrapCancellation produces the error Run returns when a run is torn down
// by cooperative cancellation rather than by a producer- or operation-
// supplied error. A nil cause means "plain cancellation" and yields
// ErrCancelled itself.
func wrapCancellation(cause error) error {
	if cause == nil {
		return ErrCancelled
	}
	return &cancelledError{cause: cause}
}
