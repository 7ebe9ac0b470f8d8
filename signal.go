package corestream

import (
	"sync/atomic"

	"github.com/rivenhollow/corestream/internal/corelog"
	"github.com/rivenhollow/corestream/internal/corenode"
	"github.com/rivenhollow/corestream/internal/coremetrics"
	"github.com/rivenhollow/corestream/internal/execctx"
)

var (
	nodeSeq       uint64
	globalMetrics = coremetrics.NewRegistry()
)

// SetMetricsRegistry replaces the registry every Signal reports discards
// to. Intended for a process that wants its own *coremetrics.Registry
// instance rather than the package-default one.
func SetMetricsRegistry(registry *coremetrics.Registry) {
	if registry != nil {
		globalMetrics = registry
	}
}

// Metrics returns the current discard-counter registry.
func Metrics() *coremetrics.Registry { return globalMetrics }

func nextNodeID(kind string) string {
	id := atomic.AddUint64(&nodeSeq, 1)
	return kind + "-" + itoa(id)
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Signal is a typed handle onto one node in the graph. Every Signal[T],
// whatever node kind produced it, supports N concurrent Subscribe calls —
// Multi differs from a plain Signal only in its CachePolicy (see multi.go),
// not in subscriber cardinality.
//
// By default every Signal uses corenode.NewCacheUntilActivePolicy(): values
// published during activation (the common "producer completes
// synchronously as soon as it is turned on" case, e.g. Preclosed) are
// buffered and handed to the very first Subscribe call before it returns,
// then the policy stops caching and behaves like plain multicast. This
// guarantees the "activation burst observed before Subscribe returns"
// invariant uniformly, without accumulating unbounded history for nodes
// that were never meant to replay anything.
type Signal[T any] struct {
	multi  *corenode.MultiCore
	exec   execctx.Context
	logger *corelog.Logger
	nodeID string
}

func newSignal[T any](core *corenode.Core, policy corenode.CachePolicy, exec execctx.Context, logger *corelog.Logger, nodeID string) Signal[T] {
	if policy == nil {
		policy = corenode.NewCacheUntilActivePolicy()
	}
	if exec == nil {
		exec = execctx.NewInline()
	}
	if logger == nil {
		logger = corelog.L()
	}
	return Signal[T]{
		multi:  corenode.NewMultiCore(core, policy),
		exec:   exec,
		logger: logger.With(corelog.String("node", nodeID)),
		nodeID: nodeID,
	}
}

func (s Signal[T]) core() *corenode.Core { return s.multi.Core() }

// chainActivate appends fn to whatever OnActivate newSignal's MultiCore
// already installed (the per-epoch cache reset), instead of clobbering it —
// every producer that needs its own activation behavior calls this rather
// than assigning core.OnActivate directly, so the policy's Reset() still
// runs on every 0->1 transition, not just the first.
func chainActivate(core *corenode.Core, fn func(gen uint64)) {
	prev := core.OnActivate
	core.OnActivate = func(gen uint64) {
		if prev != nil {
			prev(gen)
		}
		fn(gen)
	}
}

// NodeID returns the diagnostic identifier this signal logs and reports
// discard metrics under.
func (s Signal[T]) NodeID() string { return s.nodeID }

func resultFromEnvelope[T any](env corenode.Envelope) Result[T] {
	if env.End != nil {
		return Result[T]{end: &EndInfo{Reason: EndReason(env.End.Reason), Err: env.End.Err}}
	}
	value, _ := env.Value.(T)
	return Result[T]{value: value, isValue: true}
}

func envelopeFromResult[T any](r Result[T]) corenode.Envelope {
	if r.end != nil {
		return corenode.Envelope{End: &corenode.End{Reason: corenode.EndReason(r.end.Reason), Err: r.end.Err}}
	}
	return corenode.Envelope{Value: r.value}
}

// subscribeEnvelopes is the shared low-level subscribe path every typed
// helper (Subscribe, SubscribeWhile, polling sinks, combinators) funnels
// through. onEnvelope is invoked synchronously on whatever goroutine
// delivers it — replayed cache entries run on the calling goroutine before
// Subscribe returns; live deliveries run on whatever goroutine the node's
// ExecContext and upstream chain land on.
func (s Signal[T]) subscribeEnvelopes(onEnvelope func(corenode.Envelope)) *Lifetime {
	core := s.core()
	gen := core.Activate()
	var subID uint64
	link := func(env corenode.Envelope, linkGen uint64) {
		if linkGen != gen {
			globalMetrics.Observe(s.nodeID, coremetrics.DiscardReasonStaleGen)
			return
		}
		onEnvelope(env)
	}
	subID = s.multi.Subscribe(link)
	return newLifetime(func() {
		core.RemoveSubscriber(subID)
		core.Deactivate()
	})
}
