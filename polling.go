package corestream

import (
	"sync"

	"github.com/rivenhollow/corestream/internal/corenode"
)

// LatestCache is a thread-safe pull-based view over a Signal's most recent
// value: it subscribes once at construction and keeps the last delivered
// value (and, once the source ends, its terminal End) behind a mutex for
// polling callers that do not want a push-based callback.
type LatestCache[T any] struct {
	mu       sync.RWMutex
	lifetime *Lifetime
	hasValue bool
	value    T
	end      *EndInfo
}

// SignalLatest subscribes to source and returns a LatestCache that tracks
// its most recent value. The subscription stays live until Close is
// called; disposing it early stops updates but leaves the last observed
// value and End readable.
func SignalLatest[T any](source Signal[T]) *LatestCache[T] {
	c := &LatestCache[T]{}
	c.lifetime = source.subscribeEnvelopes(func(env corenode.Envelope) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if env.End != nil {
			end := EndInfo{Reason: EndReason(env.End.Reason), Err: env.End.Err}
			c.end = &end
			return
		}
		value, _ := env.Value.(T)
		c.value = value
		c.hasValue = true
	})
	return c
}

// Latest returns the most recently observed value and whether one has
// arrived yet.
func (c *LatestCache[T]) Latest() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.hasValue
}

// End reports the source's terminal End, if it has already ended.
func (c *LatestCache[T]) End() *EndInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.end
}

// Close detaches the underlying subscription. The last observed value and
// End remain readable afterward.
func (c *LatestCache[T]) Close() { c.lifetime.Dispose() }

// Peek subscribes to source just long enough to observe its activation
// burst, then immediately disposes the subscription and returns the first
// value delivered (or the terminal End, if source ended without ever
// delivering a value). It is the one-shot counterpart to SignalLatest: a
// caller that wants a single synchronous read of whatever a Signal
// produces on activation, without holding a live subscription afterward.
func Peek[T any](source Signal[T]) (T, *EndInfo) {
	var (
		value    T
		hasValue bool
		end      *EndInfo
	)
	lifetime := source.subscribeEnvelopes(func(env corenode.Envelope) {
		if hasValue || end != nil {
			return
		}
		if env.End != nil {
			e := EndInfo{Reason: EndReason(env.End.Reason), Err: env.End.Err}
			end = &e
			return
		}
		v, _ := env.Value.(T)
		value = v
		hasValue = true
	})
	lifetime.Dispose()
	return value, end
}
