package corenode

import "sync"

// MultiCore wraps a Core with a CachePolicy, giving every subscriber a
// synchronous, atomically-ordered view of "whatever is cached, then
// whatever flows live" — a late joiner can never observe a gap nor a
// duplicate between the replayed cache and the live stream.
//
// The atomicity is achieved by funnelling both halves of the race —
// Observe+Publish on the producing side, Replay+AddSubscriber on the
// subscribing side — through the same mutex, so a Subscribe call can never
// land in the middle of an in-flight Observe/Publish pair. This is the
// mechanism behind the decision that CustomActivation's updater runs
// inside the same critical section that already serializes fan-out
// delivery.
type MultiCore struct {
	mu     sync.Mutex
	core   *Core
	policy CachePolicy
}

// NewMultiCore constructs a MultiCore wrapping core with the given cache
// policy. NewMultiCore installs core.OnDeliver and core.OnActivate itself;
// the caller must not set either separately. Every fresh 0->1 activation
// calls the policy's Reset before any value can be observed into it; what
// that clears is up to the policy (continuousPolicy keeps its latest value
// across epochs, the other caching policies start empty again).
func NewMultiCore(core *Core, policy CachePolicy) *MultiCore {
	m := &MultiCore{core: core, policy: policy}
	core.OnDeliver = m.onDeliver
	core.OnActivate = func(uint64) {
		m.mu.Lock()
		policy.Reset()
		m.mu.Unlock()
	}
	return m
}

func (m *MultiCore) onDeliver(env Envelope, gen uint64) {
	m.mu.Lock()
	m.policy.Observe(env)
	m.core.Publish(env, gen)
	m.mu.Unlock()
}

// Core returns the wrapped delivery/activation core.
func (m *MultiCore) Core() *Core { return m.core }

// Subscribe replays whatever the policy has cached, then registers link for
// future live delivery, as one atomic step relative to concurrent
// Observe/Publish calls. It returns the subscriber id for later removal.
func (m *MultiCore) Subscribe(link Link) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	gen := m.core.Gen()
	m.policy.Replay(func(env Envelope) { link(env, gen) })
	return m.core.AddSubscriber(link)
}
