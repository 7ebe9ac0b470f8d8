package corestream

import (
	"time"

	"github.com/rivenhollow/corestream/internal/corenode"
	"github.com/rivenhollow/corestream/internal/execctx"
)

// Interval builds a Signal that samples produce once immediately on
// activation and then once per period thereafter, completing only when
// the node deactivates or the returned Lifetime is disposed — it never
// ends on its own.
//
// Grounded on internal/timesync.Service.StreamTimeSync: send one sample
// before entering the ticker loop, then one sample per tick, stopping the
// ticker on cancellation.
func Interval[T any](exec execctx.Context, period time.Duration, produce func(tick uint64) T) Signal[T] {
	core := corenode.NewCore()
	sig := newSignal[T](core, nil, exec, nil, nextNodeID("interval"))

	chainActivate(core, func(gen uint64) {
		var tick uint64
		deliver := func() {
			v := produce(tick)
			core.Deliver(corenode.Envelope{Value: v}, gen)
			tick++
		}

		sig.exec.Submit(deliver)
		stop := sig.exec.Ticker(period, deliver)
		core.OnDeactivate = stop
	})

	return sig
}

// Timer builds a Signal that delivers a single value after delay elapses,
// then completes with Complete. Disposing its Lifetime before delay
// elapses cancels the pending delivery.
func Timer[T any](exec execctx.Context, delay time.Duration, value T) Signal[T] {
	core := corenode.NewCore()
	sig := newSignal[T](core, nil, exec, nil, nextNodeID("timer"))

	chainActivate(core, func(gen uint64) {
		stop := sig.exec.SubmitAfter(delay, func() {
			core.Deliver(corenode.Envelope{Value: value}, gen)
			core.Deliver(corenode.Envelope{End: &corenode.End{Reason: corenode.Complete}}, gen)
		})
		core.OnDeactivate = stop
	})

	return sig
}
