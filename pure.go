package oak

import "context"

// PureUpdate is Update for transducers that never schedule an effect —
// a plain Mealy machine. RunPure lets such clients skip the (nil,
// output) boilerplate on every return.
type PureUpdate[S, E, O, Env any] func(state *S, event E, env Env) O

// RunPure runs a transducer whose update function never needs to return
// an Effect, wrapping update so it can be driven through RunWithStorage
// unchanged. Every RunOption Run accepts also applies here.
func RunPure[S, E, O, Env any](ctx context.Context, initial S, update PureUpdate[S, E, O, Env], opts ...RunOption[S, E, O, Env]) (O, error) {
	wrapped := func(state *S, event E, env Env) (*Effect[E, Env], O) {
		return nil, update(state, event, env)
	}
	return Run[S, E, O, Env](ctx, initial, wrapped, opts...)
}
