package oak

import (
	"context"
	"errors"
	"log"
)

// Update is the pure transition function a transducer is built from.
// It receives a pointer to the current state so it can mutate it in
// place, the drawn event, and the read-only environment, and returns
// the Effect (if any) to apply before the next event is drawn, plus the
// output produced this cycle.
type Update[S, E, O, Env any] func(state *S, event E, env Env) (*Effect[E, Env], O)

// terminalState is the optional interface a State type implements to
// mark itself done. A State that doesn't implement it is never
// terminal — its run only ends via Proxy.Finish, Proxy.Cancel, ctx
// cancellation, or an effect/update error.
type terminalState interface {
	IsTerminal() bool
}

func isTerminal[S any](s *S) bool {
	t, ok := any(s).(terminalState)
	return ok && t.IsTerminal()
}

// runConfig collects the options RunOption values mutate.
type runConfig[S, E, O, Env any] struct {
	proxy            Proxy[E]
	env              Env
	outputSubject    Subject[O]
	hasInitialOutput bool
	initialOutput    O
	isolator         Isolator
	logger           *log.Logger
	clock            Clock
	trace            TraceFunc
}

func defaultRunConfig[S, E, O, Env any]() *runConfig[S, E, O, Env] {
	return &runConfig[S, E, O, Env]{
		outputSubject: DiscardSubject[O](),
		isolator:      GoIsolator{},
		logger:        log.Default(),
		clock:         RealClock{},
	}
}

// RunOption configures a Run/RunWithStorage call.
type RunOption[S, E, O, Env any] func(*runConfig[S, E, O, Env])

// WithProxy supplies the event ingress the run draws from. Without it,
// Run constructs a BufferedProxy with DefaultBufferedCapacity.
func WithProxy[S, E, O, Env any](proxy Proxy[E]) RunOption[S, E, O, Env] {
	return func(c *runConfig[S, E, O, Env]) { c.proxy = proxy }
}

// WithEnv supplies the read-only environment passed to every update
// call and every Effect/Operation closure.
func WithEnv[S, E, O, Env any](env Env) RunOption[S, E, O, Env] {
	return func(c *runConfig[S, E, O, Env]) { c.env = env }
}

// WithOutputSubject supplies the Subject every cycle's output is sent
// to. Without it, outputs are discarded.
func WithOutputSubject[S, E, O, Env any](subject Subject[O]) RunOption[S, E, O, Env] {
	return func(c *runConfig[S, E, O, Env]) { c.outputSubject = subject }
}

// WithInitialOutput emits an output before the first event is drawn,
// and makes it the value Run returns if the run ends before any event
// is processed (e.g. the initial state is already terminal).
func WithInitialOutput[S, E, O, Env any](output O) RunOption[S, E, O, Env] {
	return func(c *runConfig[S, E, O, Env]) {
		c.hasInitialOutput = true
		c.initialOutput = output
	}
}

// WithIsolator supplies the Isolator used by effects constructed with
// EffectExecGlobal. Without it, such effects still run (via GoIsolator).
func WithIsolator[S, E, O, Env any](iso Isolator) RunOption[S, E, O, Env] {
	return func(c *runConfig[S, E, O, Env]) { c.isolator = iso }
}

// WithLogger supplies the logger the run's Context uses to report task
// replacement. Without it, log.Default() is used.
func WithLogger[S, E, O, Env any](logger *log.Logger) RunOption[S, E, O, Env] {
	return func(c *runConfig[S, E, O, Env]) { c.logger = logger }
}

// WithClock supplies the Clock DelayedOperation/DelayedEmitEvent sleep
// against. Without it, RealClock{} is used; tests typically supply a
// ManualClock instead.
func WithClock[S, E, O, Env any](clock Clock) RunOption[S, E, O, Env] {
	return func(c *runConfig[S, E, O, Env]) { c.clock = clock }
}

// WithTrace installs a diagnostics hook invoked once per update cycle.
func WithTrace[S, E, O, Env any](fn TraceFunc) RunOption[S, E, O, Env] {
	return func(c *runConfig[S, E, O, Env]) { c.trace = fn }
}

// Run drives a transducer starting from initial to completion, per the
// Update function and options supplied. It returns the last output
// produced and, if the run ended abnormally, the error responsible.
func Run[S, E, O, Env any](ctx context.Context, initial S, update Update[S, E, O, Env], opts ...RunOption[S, E, O, Env]) (O, error) {
	return RunWithStorage[S, E, O, Env](ctx, NewLocalStorage(initial), update, opts...)
}

// RunWithStorage is Run, but the state lives in storage instead of a
// value Run owns itself — useful when a caller needs to observe state
// changes as they happen (see ObservableStorage) or persist/restore it
// between separate transducer runs of their own devising.
func RunWithStorage[S, E, O, Env any](ctx context.Context, storage Storage[S], update Update[S, E, O, Env], opts ...RunOption[S, E, O, Env]) (O, error) {
	cfg := defaultRunConfig[S, E, O, Env]()
	for _, opt := range opts {
		opt(cfg)
	}

	var zeroOut O

	proxy := cfg.proxy
	if proxy == nil {
		proxy = NewBufferedProxy[E](DefaultBufferedCapacity)
	}
	if err := proxy.bind(); err != nil {
		return zeroOut, err
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	input := proxy.Input()

	var lastOutput O
	haveOutput := false
	if cfg.hasInitialOutput {
		lastOutput = cfg.initialOutput
		haveOutput = true
		if err := cfg.outputSubject.Send(runCtx, lastOutput); err != nil {
			proxy.Finish()
			return lastOutput, err
		}
	}

	st := storage.Get()

	if isTerminal(&st) {
		proxy.Finish()
		if haveOutput {
			return lastOutput, nil
		}
		return zeroOut, ErrNoOutputProduced
	}

	if runCtx.Err() != nil {
		proxy.Cancel(wrapCancellation(runCtx.Err()))
	}

	terminate := func(err error) { proxy.Cancel(err) }
	tctx := newContext[E, Env](runCtx, input, cfg.logger, terminate)
	defer tctx.cancelAll()

	var pending []E
	var finalErr error
	cycle := 0

runLoop:
	for {
		var event E
		var complete func(error)

		if len(pending) > 0 {
			event, pending = pending[0], pending[1:]
		} else {
			ev, comp, ok, err := proxy.recv(runCtx)
			if !ok {
				finalErr = classifyCancellation(err)
				break runLoop
			}
			event, complete = ev, comp
		}

		effect, output := update(&st, event, cfg.env)
		storage.Set(st)
		cycle++

		term := isTerminal(&st)
		if cfg.trace != nil {
			cfg.trace(TraceEvent{Cycle: cycle, State: st, Terminal: term, HasEffect: effect != nil})
		}

		lastOutput = output
		haveOutput = true
		sendErr := cfg.outputSubject.Send(runCtx, output)
		if complete != nil {
			complete(sendErr)
		}
		if sendErr != nil {
			finalErr = sendErr
			break runLoop
		}

		emitted, effErr := effect.apply(runCtx, cfg.env, cfg.clock, input, tctx, cfg.isolator)
		if effErr != nil {
			finalErr = effErr
			break runLoop
		}

		if term {
			proxy.Finish()
			break runLoop
		}

		pending = append(pending, emitted...)
	}

	tctx.cancelAll()

	if finalErr != nil {
		return lastOutput, finalErr
	}
	if !haveOutput {
		return zeroOut, ErrNoOutputProduced
	}
	return lastOutput, nil
}

// classifyCancellation turns a proxy end-of-stream error into the form
// errors.Is(err, ErrCancelled) callers should expect: a bare
// context.Canceled/DeadlineExceeded (meaning the host ctx ended the run,
// not an explicit Cancel call) is wrapped so it satisfies errors.Is;
// anything already satisfying it, or nil, or a caller-supplied error
// from Cancel(customErr)/an Operation failure, passes through verbatim.
func classifyCancellation(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCancelled) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return wrapCancellation(err)
	}
	return err
}
