package corestream

import (
	"context"

	"github.com/rivenhollow/corestream/internal/corenode"
	"github.com/rivenhollow/corestream/internal/execctx"
)

// Emitter is the only way a Generator's produce function can push data
// into the graph. Value returns false once the node has been deactivated
// (no more subscribers, or it has already ended), signaling the producer
// to stop doing work.
type Emitter[T any] struct {
	deliver func(Result[T]) bool
}

// Value delivers v downstream, reporting whether the node is still active.
func (e Emitter[T]) Value(v T) bool { return e.deliver(ValueResult(v)) }

// End delivers the terminal Result with the given reason and error.
func (e Emitter[T]) End(reason EndReason, err error) { e.deliver(EndResult[T](reason, err)) }

// Generator builds a Signal whose values come from an arbitrary produce
// function, run once per activation on exec (or inline if exec is nil).
// produce is handed a context that is cancelled the moment the node
// deactivates, so it can stop promptly instead of emitting into the void.
//
// Grounded on the teacher's StreamTimeSync loop shape (internal/timesync):
// a select between ctx.Done() and the next unit of work, generalized from
// "only a ticker" to an arbitrary caller-supplied production loop.
func Generator[T any](exec execctx.Context, produce func(ctx context.Context, emit Emitter[T])) Signal[T] {
	core := corenode.NewCore()
	sig := newSignal[T](core, nil, exec, nil, nextNodeID("generator"))

	chainActivate(core, func(gen uint64) {
		ctx, cancel := context.WithCancel(context.Background())
		core.OnDeactivate = func() { cancel() }

		emit := Emitter[T]{deliver: func(r Result[T]) bool {
			select {
			case <-ctx.Done():
				return false
			default:
			}
			core.Deliver(envelopeFromResult(r), gen)
			return core.Active() && core.TerminalEnd() == nil
		}}

		sig.exec.Submit(func() { produce(ctx, emit) })
	})

	return sig
}

// RetainedGenerate is the seeded-unfold convenience named in the minimum
// public surface: step is invoked repeatedly starting from initial,
// receiving the previously produced value and returning the next one. A
// false second return ends the signal with Complete; step may instead call
// nothing further and simply stop being called once ctx is done.
func RetainedGenerate[T any](exec execctx.Context, initial T, step func(ctx context.Context, prev T) (next T, ok bool)) Signal[T] {
	return Generator[T](exec, func(ctx context.Context, emit Emitter[T]) {
		prev := initial
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			next, ok := step(ctx, prev)
			if !ok {
				emit.End(Complete, nil)
				return
			}
			if !emit.Value(next) {
				return
			}
			prev = next
		}
	})
}
