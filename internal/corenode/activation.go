package corenode

import "sync"

// CachePolicy governs what a multi-output node replays to a subscriber that
// attaches after values have already flowed, and what (if anything) it
// retains as new values arrive. Replay happens synchronously inside
// Subscribe, before the caller's Subscribe call returns and before any live
// value reaches the new subscriber — grounded on the teacher's
// Stream.Subscribe, which replays a subscriber's outstanding backlog
// (collectReplayLocked/prepareDeliveriesLocked) before handing back a live
// channel.
type CachePolicy interface {
	// Observe records env as it is published, before it reaches live
	// subscribers.
	Observe(env Envelope)

	// Replay invokes deliver once per cached envelope, in the order a late
	// subscriber should observe them.
	Replay(deliver func(Envelope))

	// Reset clears any cached state. Called on every 0->1 activation
	// transition; policies whose cache outlives an activation epoch
	// (continuousPolicy) or that cache nothing (multicastPolicy) no-op.
	Reset()
}

// continuousPolicy retains only the most recently observed value (and a
// terminal End, if any) — the "BehaviorSubject" shape, grounded on the
// single current-value slot the teacher's bots.Controller reconciles
// against rather than a full history. Unlike every other caching policy
// here, its Reset is a no-op: the latest value survives a full deactivate/reactivate
// cycle, not just concurrent subscribers within one activation epoch — see
// continuousWhileActivePolicy for the epoch-scoped variant.
type continuousPolicy struct {
	mu      sync.Mutex
	hasLast bool
	last    Envelope
	end     *End
}

// NewContinuousPolicy returns a policy that replays the single latest value,
// retained for the lifetime of the node rather than reset on reactivation.
func NewContinuousPolicy() CachePolicy { return &continuousPolicy{} }

// NewContinuousPolicyWithInitial is NewContinuousPolicy with the cache
// pre-seeded, so a subscriber attaching before any value has been observed
// still receives initial rather than nothing.
func NewContinuousPolicyWithInitial(initial Envelope) CachePolicy {
	return &continuousPolicy{hasLast: true, last: initial}
}

func (p *continuousPolicy) Observe(env Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if env.End != nil {
		p.end = env.End
		return
	}
	p.hasLast = true
	p.last = env
}

func (p *continuousPolicy) Replay(deliver func(Envelope)) {
	p.mu.Lock()
	hasLast, last, end := p.hasLast, p.last, p.end
	p.mu.Unlock()
	if hasLast {
		deliver(last)
	}
	if end != nil {
		deliver(Envelope{End: end})
	}
}

// Reset does nothing: continuousPolicy's cache outlives activation epochs
// by design.
func (p *continuousPolicy) Reset() {}

// continuousWhileActivePolicy is continuousPolicy's epoch-scoped sibling:
// it also retains only the latest value, but forgets it the moment the
// node fully deactivates, so a node that goes quiet and restarts behaves as
// if it had never produced anything, rather than replaying stale state
// from a previous activation.
type continuousWhileActivePolicy struct {
	mu      sync.Mutex
	hasLast bool
	last    Envelope
	end     *End
}

// NewContinuousWhileActivePolicy returns a policy that replays the single
// latest value for as long as the node stays continuously active, and
// forgets it across a deactivate/reactivate cycle.
func NewContinuousWhileActivePolicy() CachePolicy { return &continuousWhileActivePolicy{} }

func (p *continuousWhileActivePolicy) Observe(env Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if env.End != nil {
		p.end = env.End
		return
	}
	p.hasLast = true
	p.last = env
}

func (p *continuousWhileActivePolicy) Replay(deliver func(Envelope)) {
	p.mu.Lock()
	hasLast, last, end := p.hasLast, p.last, p.end
	p.mu.Unlock()
	if hasLast {
		deliver(last)
	}
	if end != nil {
		deliver(Envelope{End: end})
	}
}

func (p *continuousWhileActivePolicy) Reset() {
	p.mu.Lock()
	p.hasLast, p.last, p.end = false, Envelope{}, nil
	p.mu.Unlock()
}

// playbackPolicy retains the entire value history for the node's current
// activation epoch, grounded on the teacher's logOrder/logPayloads replay
// log in internal/events.Stream.
type playbackPolicy struct {
	mu     sync.Mutex
	values []Envelope
	end    *End
}

// NewPlaybackPolicy returns a policy that replays every observed value in order.
func NewPlaybackPolicy() CachePolicy { return &playbackPolicy{} }

func (p *playbackPolicy) Observe(env Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if env.End != nil {
		p.end = env.End
		return
	}
	p.values = append(p.values, env)
}

func (p *playbackPolicy) Replay(deliver func(Envelope)) {
	p.mu.Lock()
	values := make([]Envelope, len(p.values))
	copy(values, p.values)
	end := p.end
	p.mu.Unlock()
	for _, env := range values {
		deliver(env)
	}
	if end != nil {
		deliver(Envelope{End: end})
	}
}

func (p *playbackPolicy) Reset() {
	p.mu.Lock()
	p.values, p.end = nil, nil
	p.mu.Unlock()
}

// multicastPolicy caches nothing: a subscriber only ever observes values
// published after it attaches.
type multicastPolicy struct{}

// NewMulticastPolicy returns a policy with no replay at all.
func NewMulticastPolicy() CachePolicy { return multicastPolicy{} }

func (multicastPolicy) Observe(Envelope)          {}
func (multicastPolicy) Replay(func(Envelope))     {}
func (multicastPolicy) Reset()                    {}

// cacheUntilActivePolicy buffers every value observed before the node's
// first subscriber attaches, replays that buffer once, and then behaves
// like multicastPolicy for the remainder of the activation epoch — useful
// for a producer that may emit before anyone is listening but should not
// keep accumulating history indefinitely.
type cacheUntilActivePolicy struct {
	mu       sync.Mutex
	buffered []Envelope
	end      *End
	drained  bool
}

// NewCacheUntilActivePolicy returns a policy that buffers pre-subscription
// values once and stops caching thereafter.
func NewCacheUntilActivePolicy() CachePolicy { return &cacheUntilActivePolicy{} }

func (p *cacheUntilActivePolicy) Observe(env Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drained {
		return
	}
	if env.End != nil {
		p.end = env.End
		return
	}
	p.buffered = append(p.buffered, env)
}

func (p *cacheUntilActivePolicy) Replay(deliver func(Envelope)) {
	p.mu.Lock()
	buffered := p.buffered
	end := p.end
	p.buffered, p.end = nil, nil
	p.drained = true
	p.mu.Unlock()
	for _, env := range buffered {
		deliver(env)
	}
	if end != nil {
		deliver(Envelope{End: end})
	}
}

func (p *cacheUntilActivePolicy) Reset() {
	p.mu.Lock()
	p.buffered, p.end, p.drained = nil, nil, false
	p.mu.Unlock()
}

// CustomActivationUpdater folds an observed envelope into the policy's
// opaque state, returning the new state. It runs inside the policy's own
// lock — the same critical section serializing Observe and Replay — so a
// subscriber attaching mid-burst always sees either the pre- or
// post-update state, never a half-applied one.
type CustomActivationUpdater func(state any, env Envelope) any

type customActivationPolicy struct {
	mu      sync.Mutex
	state   any
	update  CustomActivationUpdater
	hasAny  bool
	end     *End
	initial any
}

// NewCustomActivationPolicy returns a policy whose cached state is folded by
// update and replayed as a single synthetic value envelope to each new
// subscriber.
func NewCustomActivationPolicy(initial any, update CustomActivationUpdater) CachePolicy {
	return &customActivationPolicy{state: initial, initial: initial, update: update}
}

func (p *customActivationPolicy) Observe(env Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.update != nil {
		p.state = p.update(p.state, env)
	}
	if env.End != nil {
		p.end = env.End
		return
	}
	p.hasAny = true
}

func (p *customActivationPolicy) Replay(deliver func(Envelope)) {
	p.mu.Lock()
	state, hasAny, end := p.state, p.hasAny, p.end
	p.mu.Unlock()
	if hasAny {
		deliver(Envelope{Value: state})
	}
	if end != nil {
		deliver(Envelope{End: end})
	}
}

func (p *customActivationPolicy) Reset() {
	p.mu.Lock()
	p.state, p.hasAny, p.end = p.initial, false, nil
	p.mu.Unlock()
}

// ReduceFunc folds a newly observed value into the running accumulator.
type ReduceFunc func(acc any, value any) any

type reducePolicy struct {
	mu      sync.Mutex
	acc     any
	reduce  ReduceFunc
	hasAny  bool
	end     *End
	initial any
}

// NewReducePolicy returns a policy that folds every observed value into a
// running accumulator via reduce and replays only the current accumulator —
// a Continuous policy whose single cached value is a fold rather than the
// raw latest value.
func NewReducePolicy(initial any, reduce ReduceFunc) CachePolicy {
	return &reducePolicy{acc: initial, initial: initial, reduce: reduce}
}

func (p *reducePolicy) Observe(env Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if env.End != nil {
		p.end = env.End
		return
	}
	if p.reduce != nil {
		p.acc = p.reduce(p.acc, env.Value)
	}
	p.hasAny = true
}

func (p *reducePolicy) Replay(deliver func(Envelope)) {
	p.mu.Lock()
	acc, hasAny, end := p.acc, p.hasAny, p.end
	p.mu.Unlock()
	if hasAny {
		deliver(Envelope{Value: acc})
	}
	if end != nil {
		deliver(Envelope{End: end})
	}
}

func (p *reducePolicy) Reset() {
	p.mu.Lock()
	p.acc, p.hasAny, p.end = p.initial, false, nil
	p.mu.Unlock()
}
