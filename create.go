package corestream

import "github.com/rivenhollow/corestream/internal/corenode"

// Preclosed returns a Signal that, once activated, delivers each of values
// in order followed by a single terminal End with the given reason and
// error — the paradigm case of a synchronous "activation burst" a
// subscriber must observe before Subscribe returns. A nil or empty values
// delivers only the End.
func Preclosed[T any](values []T, reason EndReason, err error) Signal[T] {
	core := corenode.NewCore()
	sig := newSignal[T](core, nil, nil, nil, nextNodeID("preclosed"))
	chainActivate(core, func(gen uint64) {
		for _, v := range values {
			core.Deliver(corenode.Envelope{Value: v}, gen)
		}
		core.Deliver(corenode.Envelope{End: &corenode.End{Reason: corenode.EndReason(reason), Err: err}}, gen)
	})
	return sig
}

// Never returns a Signal that activates successfully but never delivers
// anything — neither a Value nor an End — for as long as it has
// subscribers. Useful as a Junction's inert placeholder source before it
// is ever Bound.
func Never[T any]() Signal[T] {
	core := corenode.NewCore()
	return newSignal[T](core, nil, nil, nil, nextNodeID("never"))
}

// From returns a Signal that, once activated, delivers each of values in
// order followed by a Complete End — a finite, eagerly-produced sequence.
func From[T any](values ...T) Signal[T] {
	return FromWithEnd(values, Complete, nil)
}

// FromWithEnd is From with the trailing End's reason and error under the
// caller's control, for the finite-sequence-that-fails or
// finite-sequence-that-was-cancelled cases From itself cannot express.
func FromWithEnd[T any](values []T, reason EndReason, err error) Signal[T] {
	core := corenode.NewCore()
	sig := newSignal[T](core, nil, nil, nil, nextNodeID("from"))
	chainActivate(core, func(gen uint64) {
		for _, v := range values {
			core.Deliver(corenode.Envelope{Value: v}, gen)
		}
		core.Deliver(corenode.Envelope{End: &corenode.End{Reason: corenode.EndReason(reason), Err: err}}, gen)
	})
	return sig
}
