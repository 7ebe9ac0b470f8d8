package corestream

import (
	"github.com/rivenhollow/corestream/internal/corenode"
	"github.com/rivenhollow/corestream/internal/execctx"
)

// multiWithPolicy rebroadcasts source under an explicit CachePolicy instead
// of the default CacheUntilActive every plain Signal uses — the only
// difference between a Multi and any other Signal named in the design
// (signal.go's doc comment): which CachePolicy its MultiCore was built
// with.
func multiWithPolicy[T any](source Signal[T], exec execctx.Context, policy corenode.CachePolicy, kind string) Signal[T] {
	core := corenode.NewCore()
	sig := newSignal[T](core, policy, exec, nil, nextNodeID(kind))

	chainActivate(core, func(gen uint64) {
		upstream := source.subscribeEnvelopes(func(env corenode.Envelope) {
			core.Deliver(env, gen)
		})
		core.OnDeactivate = func() { upstream.Dispose() }
	})

	return sig
}

// Continuous rebroadcasts source, caching only the single latest value (and
// cached End) for any subscriber that attaches after it has already
// started flowing.
func Continuous[T any](source Signal[T], exec execctx.Context) Signal[T] {
	return multiWithPolicy(source, exec, corenode.NewContinuousPolicy(), "continuous")
}

// ContinuousWithInitial is Continuous with the cache pre-seeded to initial,
// so a subscriber attaching before source has produced anything still
// receives initial during its subscribe burst rather than nothing.
func ContinuousWithInitial[T any](source Signal[T], initial T, exec execctx.Context) Signal[T] {
	policy := corenode.NewContinuousPolicyWithInitial(corenode.Envelope{Value: initial})
	return multiWithPolicy(source, exec, policy, "continuous")
}

// ContinuousWhileActive rebroadcasts source like Continuous, but forgets its
// cached latest value across a full deactivate/reactivate cycle instead of
// retaining it for the node's whole lifetime — useful when a stale value
// from a previous activation would be actively misleading to a fresh
// subscriber rather than merely redundant.
func ContinuousWhileActive[T any](source Signal[T], exec execctx.Context) Signal[T] {
	return multiWithPolicy(source, exec, corenode.NewContinuousWhileActivePolicy(), "continuous_while_active")
}

// Playback rebroadcasts source, retaining its entire value history for the
// current activation epoch and replaying all of it to every new
// subscriber, however many times they subscribe.
func Playback[T any](source Signal[T], exec execctx.Context) Signal[T] {
	return multiWithPolicy(source, exec, corenode.NewPlaybackPolicy(), "playback")
}

// Multicast rebroadcasts source with no replay at all: a subscriber only
// ever observes values published after it attaches.
func Multicast[T any](source Signal[T], exec execctx.Context) Signal[T] {
	return multiWithPolicy(source, exec, corenode.NewMulticastPolicy(), "multicast")
}

// CacheUntilActiveMulti rebroadcasts source, buffering values published
// before the first subscriber attaches, replaying that buffer once, and
// behaving as Multicast thereafter. It is the same policy every plain
// Signal already defaults to — exposed here as an explicit Multi
// constructor for callers building a graph node that must be visibly a
// Multi rather than relying on the implicit default.
func CacheUntilActiveMulti[T any](source Signal[T], exec execctx.Context) Signal[T] {
	return multiWithPolicy(source, exec, corenode.NewCacheUntilActivePolicy(), "cache_until_active")
}

// CustomActivation rebroadcasts source with a caller-defined fold over
// every observed value (and Result on End): updater's return value becomes
// the state replayed as a single synthetic value to the next attaching
// subscriber. The fold runs under the policy's own lock, so an attach
// racing a concurrent publish always observes either the pre- or
// post-fold state, never a torn one.
func CustomActivation[T any](source Signal[T], initial T, exec execctx.Context, updater func(state T, msg Result[T]) T) Signal[T] {
	policy := corenode.NewCustomActivationPolicy(initial, func(state any, env corenode.Envelope) any {
		return updater(state.(T), resultFromEnvelope[T](env))
	})
	return multiWithPolicy(source, exec, policy, "custom_activation")
}

// Reduce rebroadcasts source, folding every value into a running
// accumulator via reduce and replaying only the current accumulator to a
// newly attaching subscriber — a Continuous policy whose cached value is a
// fold rather than the raw latest value.
func Reduce[T any](source Signal[T], initial T, exec execctx.Context, reduce func(acc T, value T) T) Signal[T] {
	policy := corenode.NewReducePolicy(initial, func(acc any, value any) any {
		return reduce(acc.(T), value.(T))
	})
	return multiWithPolicy(source, exec, policy, "reduce")
}
