package corestream

import (
	"sync"

	"github.com/rivenhollow/corestream/internal/corenode"
)

// Subscribe activates sig (if it was not already active) and registers
// onResult for every Result the signal delivers, including its terminal
// End. Any cached activation burst is delivered synchronously before
// Subscribe returns. The returned Lifetime must be disposed once the
// caller no longer needs the subscription, releasing the refcount Activate
// acquired.
func Subscribe[T any](sig Signal[T], onResult func(Result[T])) *Lifetime {
	return sig.subscribeEnvelopes(func(env corenode.Envelope) {
		onResult(resultFromEnvelope[T](env))
	})
}

// SubscribeValues is Subscribe restricted to Value results; the signal's
// terminal End, whatever its reason, is silently dropped. Useful for
// callers that only care about the data and tear the subscription down
// some other way (a parent context, a UI teardown).
func SubscribeValues[T any](sig Signal[T], onValue func(T)) *Lifetime {
	return sig.subscribeEnvelopes(func(env corenode.Envelope) {
		if env.End != nil {
			return
		}
		value, _ := env.Value.(T)
		onValue(value)
	})
}

// SubscribeWhile registers onResult and automatically disposes the
// subscription the first time onResult returns false or the signal
// delivers its terminal End — whichever comes first. It is the
// disconnect-on-predicate convenience named as part of the minimum public
// surface: short-lived observers that want to detach themselves without
// the caller holding onto a Lifetime across the whole subscription.
func SubscribeWhile[T any](sig Signal[T], onResult func(Result[T]) bool) *Lifetime {
	// The very first envelope (an activation-burst End from Preclosed,
	// From, or a Multi whose cache replays a terminal End) can arrive
	// synchronously inside subscribeEnvelopes, before it has returned the
	// Lifetime this callback needs to dispose — so the lifetime and a
	// disposeNow fallback are guarded by the same mutex rather than read
	// from a variable that may still be nil.
	var (
		mu         sync.Mutex
		lifetime   *Lifetime
		disposeNow bool
		stopped    bool
	)
	requestDispose := func() {
		mu.Lock()
		stopped = true
		l := lifetime
		if l == nil {
			disposeNow = true
			mu.Unlock()
			return
		}
		mu.Unlock()
		// Dispose from within the delivery callback is safe: Core.Publish
		// copies its subscriber slice and releases its own lock before
		// invoking any Link, so RemoveSubscriber/Deactivate here never
		// reenters a held lock.
		l.Dispose()
	}

	l := sig.subscribeEnvelopes(func(env corenode.Envelope) {
		// Once a dispose has been requested, the rest of a synchronous burst
		// (still being drained before the deferred Dispose runs) is dropped.
		mu.Lock()
		done := stopped
		mu.Unlock()
		if done {
			return
		}
		result := resultFromEnvelope[T](env)
		keepGoing := onResult(result)
		if result.IsEnd() || !keepGoing {
			requestDispose()
		}
	})

	mu.Lock()
	lifetime = l
	pending := disposeNow
	mu.Unlock()
	if pending {
		l.Dispose()
	}
	return l
}
