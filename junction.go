package corestream

import (
	"sync"

	"github.com/rivenhollow/corestream/internal/corenode"
	"github.com/rivenhollow/corestream/internal/execctx"
)

// Junction cuts an upstream Signal at a well-defined point, retaining its
// own downstream subscribers across Disconnect/Bind cycles: Disconnect
// suspends delivery (no error, just silence) until Bind attaches a new
// upstream Signal, at which point live flow resumes without resubscribing
// downstream.
type Junction[T any] struct {
	jc  *corenode.JunctionCore
	sig Signal[T]
}

// NewJunction constructs an initially unbound Junction. Its Output Signal
// can be subscribed to immediately; it simply delivers nothing until Bind
// succeeds.
func NewJunction[T any](exec execctx.Context) *Junction[T] {
	core := corenode.NewCore()
	jc := corenode.NewJunctionCore(core)
	sig := newSignal[T](core, nil, exec, nil, nextNodeID("junction"))
	return &Junction[T]{jc: jc, sig: sig}
}

// Output returns the junction's downstream Signal.
func (j *Junction[T]) Output() Signal[T] { return j.sig }

// Bind attaches source as the junction's live upstream. onError, if
// non-nil, is invoked with source's own terminal End before that End is
// propagated downstream — the interception point for retry/fallback
// operators built on top of a Junction. Binding an already-bound or
// permanently cancelled junction returns a *BindError.
func (j *Junction[T]) Bind(source Signal[T], onError func(j *Junction[T], end EndInfo)) error {
	return j.BindChecked(source, nil, onError)
}

// BindChecked is Bind with an explicit cycle-detection set: visited
// accumulates the JunctionCores already walked through while tracing back
// from source to its own upstream; passing the same map across a chain of
// Bind calls lets a caller composing several Junctions detect a bind that
// would close a loop back to this junction's own output.
func (j *Junction[T]) BindChecked(source Signal[T], visited map[*Junction[T]]bool, onError func(j *Junction[T], end EndInfo)) error {
	core := j.sig.core()

	var upstream *Lifetime
	var coreVisited map[*corenode.JunctionCore]bool
	if visited != nil {
		coreVisited = make(map[*corenode.JunctionCore]bool, len(visited))
		for other := range visited {
			coreVisited[other.jc] = true
		}
	}

	if err := j.jc.Bind(coreVisited, func() {
		if upstream != nil {
			upstream.Dispose()
		}
	}); err != nil {
		return bindErrorFromCore(err)
	}

	// gen is captured once, at bind time, and reused for every envelope
	// this binding delivers — fetching core.Gen() fresh at each Deliver
	// call would always equal core.gen by construction, defeating the
	// stale-generation discard Deliver exists to provide across a
	// disconnect/rebind that races the junction's own reactivation.
	gen := core.Gen()
	upstream = source.subscribeEnvelopes(func(env corenode.Envelope) {
		if env.End != nil && onError != nil {
			onError(j, EndInfo{Reason: EndReason(env.End.Reason), Err: env.End.Err})
		}
		core.Deliver(env, gen)
	})

	return nil
}

// Disconnect severs the current binding, if any. Downstream subscribers
// stay attached and simply receive nothing further until the next Bind.
func (j *Junction[T]) Disconnect() { j.jc.Disconnect() }

// Cancel disconnects the junction and permanently forbids future binds.
func (j *Junction[T]) Cancel() { j.jc.Cancel() }

// Bound reports whether the junction currently has a live upstream.
func (j *Junction[T]) Bound() bool { return j.jc.Bound() }

// Cancelled reports whether the junction has been permanently retired.
func (j *Junction[T]) Cancelled() bool { return j.jc.Cancelled() }

// Capture snapshots a Signal's activation burst (its cached values and any
// pending End) at the moment of construction, then lets a caller Bind a
// fresh sink to the original source later — optionally resending the
// captured snapshot to that new sink before any further live value.
type Capture[T any] struct {
	mu     sync.Mutex
	source Signal[T]
	values []T
	end    *EndInfo
}

// NewCapture subscribes to source just long enough to observe its
// activation burst, records it, and releases the subscription — source
// itself is left exactly as active/inactive as it would otherwise be.
func NewCapture[T any](source Signal[T]) *Capture[T] {
	c := &Capture[T]{source: source}
	lifetime := source.subscribeEnvelopes(func(env corenode.Envelope) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if env.End != nil {
			end := EndInfo{Reason: EndReason(env.End.Reason), Err: env.End.Err}
			c.end = &end
			return
		}
		value, _ := env.Value.(T)
		c.values = append(c.values, value)
	})
	lifetime.Dispose()
	return c
}

// CurrentValues reads the captured snapshot without binding anything.
func (c *Capture[T]) CurrentValues() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := make([]T, len(c.values))
	copy(values, c.values)
	return values
}

// CurrentEnd reads the captured terminal End, if the source had already
// ended by the time of the snapshot.
func (c *Capture[T]) CurrentEnd() *EndInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.end
}

// Bind delivers results to onResult: the captured snapshot first (if
// resend is true), then the source's live stream from this point forward.
// If the source had already ended at capture time, nothing live follows and
// the returned Lifetime is a no-op: onResult observes the captured values
// and End when resend is true, and nothing at all otherwise.
func (c *Capture[T]) Bind(onResult func(Result[T]), resend bool) *Lifetime {
	c.mu.Lock()
	values := append([]T(nil), c.values...)
	end := c.end
	c.mu.Unlock()

	if resend {
		for _, v := range values {
			onResult(ValueResult(v))
		}
		if end != nil {
			onResult(Result[T]{end: end})
		}
	}

	if end != nil {
		return newLifetime(func() {})
	}

	return Subscribe(c.source, onResult)
}
