package corestream

import (
	"sync"

	"github.com/rivenhollow/corestream/internal/corenode"
	"github.com/rivenhollow/corestream/internal/execctx"
)

// ClosePropagation mirrors corenode.ClosePropagation in the typed public
// surface, chosen independently for each Signal added to a MergedInput.
type ClosePropagation = corenode.ClosePropagation

const (
	PropagateNone   = corenode.PropagateNone
	PropagateErrors = corenode.PropagateErrors
	PropagateClosed = corenode.PropagateClosed
	PropagateAll    = corenode.PropagateAll
)

type mergedMember struct {
	inputID            uint64
	gen                uint64
	upstream           *Lifetime
	removeOnDeactivate bool
}

// MergedInput is a dynamic fan-in: Signals of type T can be Add-ed and
// Removed at runtime, each with its own ClosePropagation and
// RemoveOnDeactivate behavior. Output() exposes the merged stream as an
// ordinary Signal[T].
type MergedInput[T any] struct {
	merge *corenode.MergeCore
	sig   Signal[T]
	exec  execctx.Context

	mu      sync.Mutex
	members map[uint64]*mergedMember
}

// CreateMergedInput builds an empty MergedInput. onLastInputClosed, if
// non-nil, is invoked once the input set drops to empty as a result of
// inputs closing or being removed — the caller's hook for ending whatever
// depends on the merge once nothing feeds it anymore.
func CreateMergedInput[T any](exec execctx.Context, onLastInputClosed func()) *MergedInput[T] {
	core := corenode.NewCore()
	merge := corenode.NewMergeCore(core, corenode.MergePolicy{CloseOnLastInputClosed: onLastInputClosed != nil})
	sig := newSignal[T](core, nil, exec, nil, nextNodeID("merged_input"))

	mi := &MergedInput[T]{
		merge:   merge,
		sig:     sig,
		exec:    sig.exec,
		members: make(map[uint64]*mergedMember),
	}

	merge.OnInputsShouldDetach = func() {
		mi.mu.Lock()
		members := make([]*mergedMember, 0, len(mi.members))
		for id, m := range mi.members {
			if m.removeOnDeactivate {
				members = append(members, m)
				delete(mi.members, id)
			}
		}
		mi.mu.Unlock()
		for _, m := range members {
			m.upstream.Dispose()
		}
	}

	if onLastInputClosed != nil {
		merge.OnTerminalEnd = func(end *corenode.End) {
			if merge.InputCount() == 0 {
				onLastInputClosed()
			}
		}
	}

	return mi
}

// Output returns the merged stream as an ordinary Signal[T].
func (mi *MergedInput[T]) Output() Signal[T] { return mi.sig }

// Add attaches source to the merge under the given propagation rule. Its
// values and its own End, once it arrives, are routed through
// propagation. removeOnDeactivate, if true, detaches this particular
// input's upstream subscription once the merged output's own subscriber
// count drops to zero — as opposed to leaving it attached, ready to
// deliver again the next time the output is subscribed to.
func (mi *MergedInput[T]) Add(source Signal[T], propagation ClosePropagation, removeOnDeactivate bool) (uint64, error) {
	inputID, err := mi.merge.AddInput(propagation)
	if err != nil {
		return 0, err
	}

	// gen is captured once, at subscribe time, and reused for every
	// envelope this input delivers (and for the RemoveInput call below) —
	// the same fixed-gen-per-binding pattern subscribeEnvelopes itself
	// uses, so a delivery racing a reactivation of the merge's own output
	// is correctly discarded by Core.Deliver's gen check instead of always
	// matching core.gen by construction.
	core := mi.sig.core()
	gen := core.Gen()
	upstream := source.subscribeEnvelopes(func(env corenode.Envelope) {
		mi.merge.DeliverFromInput(inputID, env, gen)
	})

	mi.mu.Lock()
	mi.members[inputID] = &mergedMember{inputID: inputID, gen: gen, upstream: upstream, removeOnDeactivate: removeOnDeactivate}
	mi.mu.Unlock()

	return inputID, nil
}

// Remove detaches the input identified by inputID (the id Add returned):
// its upstream subscription is torn down and, per Policy, its removal may
// itself trigger CloseOnLastInputClosed.
func (mi *MergedInput[T]) Remove(inputID uint64) {
	mi.mu.Lock()
	member, ok := mi.members[inputID]
	if ok {
		delete(mi.members, inputID)
	}
	mi.mu.Unlock()
	if !ok {
		return
	}
	member.upstream.Dispose()
	mi.merge.RemoveInput(inputID, member.gen)
}

// InputCount reports how many inputs are currently attached.
func (mi *MergedInput[T]) InputCount() int { return mi.merge.InputCount() }
