package corenode

import (
	"errors"
	"sync"
)

// ErrMergedInputClosed is returned by AddInput once the merge node has gone
// terminal: a policy-triggered End has already been emitted downstream, so
// no further input can usefully be attached.
var ErrMergedInputClosed = errors.New("corenode: merged input is closed")

// ClosePropagation controls whether one particular input's own End causes
// the owning MergedInput to emit its own terminal End downstream. It is
// recorded per input, not per MergedInput: two inputs attached to the same
// MergedInput may use different propagation rules.
type ClosePropagation int

const (
	// PropagateNone never forwards this input's own End; the input simply
	// detaches when it ends.
	PropagateNone ClosePropagation = iota
	// PropagateErrors forwards this input's End only when its reason is
	// Other (an upstream failure).
	PropagateErrors
	// PropagateClosed forwards this input's End when its reason is
	// Complete or Cancelled, but not Other.
	PropagateClosed
	// PropagateAll forwards this input's End, whatever the reason.
	PropagateAll
)

// MergePolicy bundles the merge-wide behavior a MergedInput is built with —
// as opposed to ClosePropagation, which is chosen per input at AddInput
// time.
type MergePolicy struct {
	// CloseOnLastInputClosed ends the MergedInput once its input set drops
	// to empty, even if no individual input's propagation forwarded an End.
	CloseOnLastInputClosed bool
}

// MergeCore implements the input-fan-in bookkeeping for MergedInput: each
// attached input gets an id and its own ClosePropagation; values from any
// input flow straight through to the wrapped Core, while an input's own
// End is examined against that input's propagation before deciding whether
// to synthesize a downstream End.
//
// The wrapped Core's OnDeliver is configured as a pass-through publish, so
// MergeCore's job is entirely about deciding *whether* to call Deliver for
// an End, not how delivery itself behaves once accepted.
type MergeCore struct {
	core   *Core
	Policy MergePolicy

	mu       sync.Mutex
	inputs   map[uint64]ClosePropagation
	nextID   uint64
	terminal bool

	// OnInputsShouldDetach fires once, on the wrapped node's 1->0
	// subscriber transition, for every policy — the root package decides
	// per attached input (via its own RemoveOnDeactivate bookkeeping)
	// whether to actually unsubscribe from that input's upstream node,
	// something MergeCore itself has no handle on.
	OnInputsShouldDetach func()

	// OnTerminalEnd fires exactly once, right before the synthesized or
	// forwarded terminal End is handed to core.Deliver — the root
	// package's hook for a caller-supplied "last input closed" callback,
	// kept separate from core.OnDeliver so it never has to be the one
	// assigning that field (MultiCore owns it).
	OnTerminalEnd func(end *End)
}

// NewMergeCore constructs a MergeCore wrapping core. The caller must not
// set core.OnDeliver itself; NewMergeCore installs a pass-through publish
// and wires OnDeactivate to call OnInputsShouldDetach.
func NewMergeCore(core *Core, policy MergePolicy) *MergeCore {
	m := &MergeCore{
		core:   core,
		Policy: policy,
		inputs: make(map[uint64]ClosePropagation),
	}
	core.OnDeliver = func(env Envelope, gen uint64) {
		core.Publish(env, gen)
	}
	core.OnDeactivate = func() {
		if m.OnInputsShouldDetach != nil {
			m.OnInputsShouldDetach()
		}
	}
	return m
}

func (m *MergeCore) lock()   { m.mu.Lock() }
func (m *MergeCore) unlock() { m.mu.Unlock() }

// Core returns the wrapped delivery/activation core, for embedding in the
// public Signal surface.
func (m *MergeCore) Core() *Core { return m.core }

// AddInput registers a new input feed under the given propagation rule and
// returns its id, rejecting the attach once the merge has already gone
// terminal.
func (m *MergeCore) AddInput(propagation ClosePropagation) (uint64, error) {
	m.lock()
	defer m.unlock()
	if m.terminal {
		return 0, ErrMergedInputClosed
	}
	id := m.nextID
	m.nextID++
	m.inputs[id] = propagation
	return id, nil
}

// RemoveInput detaches an input explicitly (the public Remove call), as
// opposed to the input closing on its own — both paths honor
// CloseOnLastInputClosed identically.
func (m *MergeCore) RemoveInput(id uint64, gen uint64) {
	m.lock()
	if _, ok := m.inputs[id]; !ok {
		m.unlock()
		return
	}
	delete(m.inputs, id)
	shouldClose := m.maybeCloseOnLastLocked()
	m.unlock()
	if shouldClose {
		end := &End{Reason: Complete}
		if m.OnTerminalEnd != nil {
			m.OnTerminalEnd(end)
		}
		m.core.Deliver(Envelope{End: end}, gen)
	}
}

// DeliverFromInput routes one envelope arriving from the input identified
// by id. Values pass straight through; an End is evaluated against that
// input's own ClosePropagation before deciding whether to forward it as
// the MergedInput's own terminal End.
func (m *MergeCore) DeliverFromInput(id uint64, env Envelope, gen uint64) {
	if env.End == nil {
		m.core.Deliver(env, gen)
		return
	}

	m.lock()
	propagation, ok := m.inputs[id]
	if !ok {
		m.unlock()
		return
	}
	delete(m.inputs, id)

	forward := false
	switch propagation {
	case PropagateAll:
		forward = true
	case PropagateErrors:
		forward = env.End.Reason == Other
	case PropagateClosed:
		forward = env.End.Reason != Other
	case PropagateNone:
		forward = false
	}

	if forward && !m.terminal {
		m.terminal = true
		m.unlock()
		if m.OnTerminalEnd != nil {
			m.OnTerminalEnd(env.End)
		}
		m.core.Deliver(env, gen)
		return
	}

	shouldClose := m.maybeCloseOnLastLocked()
	m.unlock()
	if shouldClose {
		if m.OnTerminalEnd != nil {
			m.OnTerminalEnd(env.End)
		}
		m.core.Deliver(env, gen)
	}
}

// maybeCloseOnLastLocked must be called with the lock held. It marks the
// merge terminal and reports true if the last input has just closed and
// CloseOnLastInputClosed is set.
func (m *MergeCore) maybeCloseOnLastLocked() bool {
	if m.terminal {
		return false
	}
	if len(m.inputs) > 0 || !m.Policy.CloseOnLastInputClosed {
		return false
	}
	m.terminal = true
	return true
}

// InputCount reports how many inputs are currently attached.
func (m *MergeCore) InputCount() int {
	m.lock()
	defer m.unlock()
	return len(m.inputs)
}
