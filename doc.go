// Package oak provides a runtime for extended finite-state transducers
// (FSTs) with managed asynchronous side effects.
//
// A client defines a transducer as a pure update function
//
//	(state, event) -> (effect?, output)
//
// over closed State and Event alphabets. Oak supplies the execution
// engine: it drives the machine to a terminal state, mediates events
// from producers through a Proxy, invokes the Effects returned by
// update, routes events emitted by those effects back into the machine,
// publishes outputs to a Subject, and guarantees orderly teardown of
// every managed task it spawned along the way.
//
// # Core pieces
//
//   - [Run] / [RunWithStorage]: drive a transducer to completion.
//   - [Proxy]: the event ingress channel bound to one run, in two
//     backpressure flavors — [NewBufferedProxy] (fire-and-forget,
//     drop-oldest-on-overflow) and [NewSuspendingProxy] (rendezvous).
//   - [Effect]: the algebra of post-update work — [ActionEffect],
//     [OperationEffect], [DelayedOperationEffect], [EmitEventEffect],
//     [DelayedEmitEventEffect], [CancelEffect], [CancelAllEffect], and
//     [Sequence].
//   - [Context]: the per-run registry of managed tasks, with
//     cancel-on-replace, cancel-by-id, and cancel-all semantics.
//   - [Actor]: a thin adapter binding a run's lifetime to an external
//     owner.
//
// # What this package does not do
//
// Oak does not persist transducer state across process restarts, does
// not support dynamic modification of an update function at runtime,
// and does not coordinate transducers across process boundaries. A
// parallel-composition protocol exists in sketch form in other
// ecosystems this design draws from but is deliberately not part of
// this package's contract — compose transducers yourself by routing
// events between independently-run machines.
//
// # Minimal example
//
//	type state struct{ n int }
//	func (s *state) IsTerminal() bool { return s.n < 0 }
//
//	update := func(s *state, e string, _ struct{}) (*oak.Effect[string, struct{}], int) {
//		switch e {
//		case "inc":
//			s.n++
//		case "dec":
//			s.n--
//		case "stop":
//			s.n = -1
//		}
//		return nil, s.n
//	}
//
//	proxy := oak.NewBufferedProxy[string](8)
//	go func() {
//		proxy.Input().Send(context.Background(), "inc")
//		proxy.Input().Send(context.Background(), "stop")
//	}()
//	out, err := oak.Run(context.Background(), state{}, update, oak.WithProxy[state, string, int, struct{}](proxy))
package oak
