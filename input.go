package corestream

import "github.com/rivenhollow/corestream/internal/corenode"

// Input is the manually-driven producer half of Create: external code calls
// Send/End to push values into the graph, while the paired Signal is handed
// to subscribers exactly like any other node. Grounded on the single-mutex
// publish idiom of internal/events.Stream, generalized from a protobuf
// envelope log to the untyped Core.Deliver path every node shares.
type Input[T any] struct {
	core *corenode.Core
}

// Create returns a fresh (Input, Signal) pair: an externally-driven source
// with no built-in production logic of its own. It is the primitive every
// other Create helper (Preclosed, From, Generator) is conceptually built
// from, exposed directly for callers that want to push values by hand.
func Create[T any]() (*Input[T], Signal[T]) {
	core := corenode.NewCore()
	sig := newSignal[T](core, nil, nil, nil, nextNodeID("input"))
	return &Input[T]{core: core}, sig
}

// Send delivers v downstream. It fails with SendErrorDisconnected once the
// signal has already ended, or SendErrorInactive while the signal has no
// current subscribers — matching §7's taxonomy for Input.send.
func (in *Input[T]) Send(v T) error {
	return in.deliver(corenode.Envelope{Value: v})
}

// End delivers the terminal Result with the given reason and error. Like
// Send, it is rejected once the signal has already ended or has no current
// subscribers.
func (in *Input[T]) End(reason EndReason, err error) error {
	return in.deliver(corenode.Envelope{End: &corenode.End{Reason: corenode.EndReason(reason), Err: err}})
}

func (in *Input[T]) deliver(env corenode.Envelope) error {
	if in.core.TerminalEnd() != nil {
		return &SendError{Kind: SendErrorDisconnected}
	}
	if !in.core.Active() {
		return &SendError{Kind: SendErrorInactive}
	}
	in.core.Deliver(env, in.core.Gen())
	return nil
}
