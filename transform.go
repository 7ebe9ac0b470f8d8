package corestream

import (
	"github.com/rivenhollow/corestream/internal/corenode"
	"github.com/rivenhollow/corestream/internal/execctx"
)

// Next is the handle a Transform or Combine handler uses to push results
// downstream. A handler may call it zero, one, or many times per message —
// unlike a plain pass-through, a Transform is free to filter, expand, or
// buffer-and-flush.
type Next[Out any] struct {
	deliver func(Result[Out])
}

// Value pushes a value result downstream.
func (n Next[Out]) Value(v Out) { n.deliver(ValueResult(v)) }

// End pushes the terminal result downstream. A handler that calls End is
// responsible for knowing its own node then stops delivering further
// values; the engine does not enforce that on the handler's behalf.
func (n Next[Out]) End(reason EndReason, err error) { n.deliver(EndResult[Out](reason, err)) }

// Transform applies handler to every Result the source delivers, running
// on exec with per-message serialization so the handler never observes two
// overlapping invocations (spec's "each input's arrival acquires the
// node's context" rule, specialized to a single input).
func Transform[In, Out any](source Signal[In], exec execctx.Context, handler func(msg Result[In], next Next[Out])) Signal[Out] {
	return TransformState[In, Out, struct{}](source, struct{}{}, exec, func(_ *struct{}, msg Result[In], next Next[Out]) {
		handler(msg, next)
	})
}

// TransformState is Transform with a caller-owned mutable state value S,
// seeded from initial on every activation and passed to handler by
// pointer so it can be mutated in place across messages.
func TransformState[In, Out, S any](source Signal[In], initial S, exec execctx.Context, handler func(state *S, msg Result[In], next Next[Out])) Signal[Out] {
	core := corenode.NewCore()
	outSig := newSignal[Out](core, nil, exec, nil, nextNodeID("transform"))

	chainActivate(core, func(gen uint64) {
		state := initial
		next := Next[Out]{deliver: func(r Result[Out]) {
			core.Deliver(envelopeFromResult(r), gen)
		}}

		upstream := source.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := resultFromEnvelope[In](env)
			outSig.exec.Serialize(func() { handler(&state, msg, next) })
		})

		core.OnDeactivate = func() { upstream.Dispose() }
	})

	return outSig
}
