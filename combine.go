package corestream

import (
	"github.com/rivenhollow/corestream/internal/corenode"
	"github.com/rivenhollow/corestream/internal/execctx"
)

// Either2 tags a Result as having arrived from one of two inputs to a
// Combine2 handler. Exactly one of First/Second is populated, selected by
// which input the Result arrived on.
type Either2[A, B any] struct {
	idx int
	a   Result[A]
	b   Result[B]
}

func (e Either2[A, B]) IsFirst() bool   { return e.idx == 1 }
func (e Either2[A, B]) IsSecond() bool  { return e.idx == 2 }
func (e Either2[A, B]) First() Result[A]  { return e.a }
func (e Either2[A, B]) Second() Result[B] { return e.b }

// Combine2 merges sa and sb into a single Out stream: handler runs once per
// Result arriving on either input, serialized on exec so it never observes
// two overlapping invocations. Intra-input order is preserved; no ordering
// between the two inputs is guaranteed beyond that.
func Combine2[A, B, Out any](sa Signal[A], sb Signal[B], exec execctx.Context, handler func(msg Either2[A, B], next Next[Out])) Signal[Out] {
	core := corenode.NewCore()
	outSig := newSignal[Out](core, nil, exec, nil, nextNodeID("combine2"))

	chainActivate(core, func(gen uint64) {
		next := Next[Out]{deliver: func(r Result[Out]) { core.Deliver(envelopeFromResult(r), gen) }}

		la := sa.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either2[A, B]{idx: 1, a: resultFromEnvelope[A](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})
		lb := sb.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either2[A, B]{idx: 2, b: resultFromEnvelope[B](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})

		core.OnDeactivate = func() {
			la.Dispose()
			lb.Dispose()
		}
	})

	return outSig
}

// Either3 is Either2 generalized to three inputs.
type Either3[A, B, C any] struct {
	idx int
	a   Result[A]
	b   Result[B]
	c   Result[C]
}

func (e Either3[A, B, C]) IsFirst() bool  { return e.idx == 1 }
func (e Either3[A, B, C]) IsSecond() bool { return e.idx == 2 }
func (e Either3[A, B, C]) IsThird() bool  { return e.idx == 3 }
func (e Either3[A, B, C]) First() Result[A]  { return e.a }
func (e Either3[A, B, C]) Second() Result[B] { return e.b }
func (e Either3[A, B, C]) Third() Result[C]  { return e.c }

// Combine3 is Combine2 generalized to three inputs.
func Combine3[A, B, C, Out any](sa Signal[A], sb Signal[B], sc Signal[C], exec execctx.Context, handler func(msg Either3[A, B, C], next Next[Out])) Signal[Out] {
	core := corenode.NewCore()
	outSig := newSignal[Out](core, nil, exec, nil, nextNodeID("combine3"))

	chainActivate(core, func(gen uint64) {
		next := Next[Out]{deliver: func(r Result[Out]) { core.Deliver(envelopeFromResult(r), gen) }}

		la := sa.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either3[A, B, C]{idx: 1, a: resultFromEnvelope[A](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})
		lb := sb.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either3[A, B, C]{idx: 2, b: resultFromEnvelope[B](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})
		lc := sc.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either3[A, B, C]{idx: 3, c: resultFromEnvelope[C](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})

		core.OnDeactivate = func() {
			la.Dispose()
			lb.Dispose()
			lc.Dispose()
		}
	})

	return outSig
}

// Either4 is Either2 generalized to four inputs.
type Either4[A, B, C, D any] struct {
	idx int
	a   Result[A]
	b   Result[B]
	c   Result[C]
	d   Result[D]
}

func (e Either4[A, B, C, D]) IsFirst() bool  { return e.idx == 1 }
func (e Either4[A, B, C, D]) IsSecond() bool { return e.idx == 2 }
func (e Either4[A, B, C, D]) IsThird() bool  { return e.idx == 3 }
func (e Either4[A, B, C, D]) IsFourth() bool { return e.idx == 4 }
func (e Either4[A, B, C, D]) First() Result[A]  { return e.a }
func (e Either4[A, B, C, D]) Second() Result[B] { return e.b }
func (e Either4[A, B, C, D]) Third() Result[C]  { return e.c }
func (e Either4[A, B, C, D]) Fourth() Result[D] { return e.d }

// Combine4 is Combine2 generalized to four inputs.
func Combine4[A, B, C, D, Out any](sa Signal[A], sb Signal[B], sc Signal[C], sd Signal[D], exec execctx.Context, handler func(msg Either4[A, B, C, D], next Next[Out])) Signal[Out] {
	core := corenode.NewCore()
	outSig := newSignal[Out](core, nil, exec, nil, nextNodeID("combine4"))

	chainActivate(core, func(gen uint64) {
		next := Next[Out]{deliver: func(r Result[Out]) { core.Deliver(envelopeFromResult(r), gen) }}

		la := sa.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either4[A, B, C, D]{idx: 1, a: resultFromEnvelope[A](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})
		lb := sb.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either4[A, B, C, D]{idx: 2, b: resultFromEnvelope[B](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})
		lc := sc.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either4[A, B, C, D]{idx: 3, c: resultFromEnvelope[C](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})
		ld := sd.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either4[A, B, C, D]{idx: 4, d: resultFromEnvelope[D](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})

		core.OnDeactivate = func() {
			la.Dispose()
			lb.Dispose()
			lc.Dispose()
			ld.Dispose()
		}
	})

	return outSig
}

// Either5 is Either2 generalized to five inputs.
type Either5[A, B, C, D, E any] struct {
	idx int
	a   Result[A]
	b   Result[B]
	c   Result[C]
	d   Result[D]
	e   Result[E]
}

func (e Either5[A, B, C, D, E]) IsFirst() bool  { return e.idx == 1 }
func (e Either5[A, B, C, D, E]) IsSecond() bool { return e.idx == 2 }
func (e Either5[A, B, C, D, E]) IsThird() bool  { return e.idx == 3 }
func (e Either5[A, B, C, D, E]) IsFourth() bool { return e.idx == 4 }
func (e Either5[A, B, C, D, E]) IsFifth() bool  { return e.idx == 5 }
func (e Either5[A, B, C, D, E]) First() Result[A]  { return e.a }
func (e Either5[A, B, C, D, E]) Second() Result[B] { return e.b }
func (e Either5[A, B, C, D, E]) Third() Result[C]  { return e.c }
func (e Either5[A, B, C, D, E]) Fourth() Result[D] { return e.d }
func (e Either5[A, B, C, D, E]) Fifth() Result[E]  { return e.e }

// Combine5 is Combine2 generalized to five inputs.
func Combine5[A, B, C, D, E, Out any](sa Signal[A], sb Signal[B], sc Signal[C], sd Signal[D], se Signal[E], exec execctx.Context, handler func(msg Either5[A, B, C, D, E], next Next[Out])) Signal[Out] {
	core := corenode.NewCore()
	outSig := newSignal[Out](core, nil, exec, nil, nextNodeID("combine5"))

	chainActivate(core, func(gen uint64) {
		next := Next[Out]{deliver: func(r Result[Out]) { core.Deliver(envelopeFromResult(r), gen) }}

		la := sa.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either5[A, B, C, D, E]{idx: 1, a: resultFromEnvelope[A](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})
		lb := sb.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either5[A, B, C, D, E]{idx: 2, b: resultFromEnvelope[B](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})
		lc := sc.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either5[A, B, C, D, E]{idx: 3, c: resultFromEnvelope[C](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})
		ld := sd.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either5[A, B, C, D, E]{idx: 4, d: resultFromEnvelope[D](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})
		le := se.subscribeEnvelopes(func(env corenode.Envelope) {
			msg := Either5[A, B, C, D, E]{idx: 5, e: resultFromEnvelope[E](env)}
			outSig.exec.Serialize(func() { handler(msg, next) })
		})

		core.OnDeactivate = func() {
			la.Dispose()
			lb.Dispose()
			lc.Dispose()
			ld.Dispose()
			le.Dispose()
		}
	})

	return outSig
}
