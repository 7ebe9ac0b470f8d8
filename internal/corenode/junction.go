package corenode

import "sync"

// BindErrorKind enumerates why a Junction.Bind call was rejected.
type BindErrorKind int

const (
	BindErrorLoop BindErrorKind = iota
	BindErrorDuplicate
	BindErrorCancelled
)

// BindError is returned by JunctionCore.Bind when the requested binding
// cannot be honored.
type BindError struct {
	Kind BindErrorKind
}

func (e *BindError) Error() string {
	switch e.Kind {
	case BindErrorLoop:
		return "corenode: bind would create a cycle"
	case BindErrorDuplicate:
		return "corenode: junction is already bound"
	case BindErrorCancelled:
		return "corenode: junction has been disconnected permanently"
	default:
		return "corenode: bind rejected"
	}
}

// JunctionCore implements the disconnect/rebind state machine for a
// Junction: a node whose upstream source can be swapped at runtime. The
// wrapped Core handles the outgoing (subscriber) side exactly like any
// other pass-through node; JunctionCore's own job is purely to arbitrate
// the bound/unbound/cancelled state transitions and reject a Bind that
// would either duplicate an existing binding or close a cycle.
//
// Cycle detection needs the caller's view of the graph (JunctionCore has
// no notion of which nodes feed which): Bind accepts the set of
// JunctionCores already visited while walking from the proposed source
// back through any Junctions it itself passes through. If this junction
// appears in that set, binding it would complete a loop.
type JunctionCore struct {
	mu        sync.Mutex
	core      *Core
	bound     bool
	cancelled bool
	unbind    func()
}

// NewJunctionCore constructs a JunctionCore wrapping core. As with
// MergeCore, NewJunctionCore installs the pass-through OnDeliver so the
// wrapped Core need not be configured separately.
func NewJunctionCore(core *Core) *JunctionCore {
	j := &JunctionCore{core: core}
	core.OnDeliver = func(env Envelope, gen uint64) {
		core.Publish(env, gen)
	}
	return j
}

// Core returns the wrapped delivery/activation core.
func (j *JunctionCore) Core() *Core { return j.core }

// Bind transitions the junction from unbound to bound. unbind is invoked
// by a later Disconnect/Bind/Cancel to release whatever subscription the
// caller established against the new source; it is the caller's
// responsibility (not this core's) to actually subscribe.
func (j *JunctionCore) Bind(visited map[*JunctionCore]bool, unbind func()) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancelled {
		return &BindError{Kind: BindErrorCancelled}
	}
	if j.bound {
		return &BindError{Kind: BindErrorDuplicate}
	}
	if visited != nil && visited[j] {
		return &BindError{Kind: BindErrorLoop}
	}
	j.bound = true
	j.unbind = unbind
	return nil
}

// Disconnect releases the current binding, if any, invoking the unbind
// callback supplied to Bind. It is idempotent and safe to call on an
// unbound junction.
func (j *JunctionCore) Disconnect() {
	j.mu.Lock()
	if !j.bound {
		j.mu.Unlock()
		return
	}
	unbind := j.unbind
	j.bound = false
	j.unbind = nil
	j.mu.Unlock()
	if unbind != nil {
		unbind()
	}
}

// Cancel disconnects the junction and permanently forbids future binds —
// used when the junction's own node is torn down.
func (j *JunctionCore) Cancel() {
	j.Disconnect()
	j.mu.Lock()
	j.cancelled = true
	j.mu.Unlock()
}

// Bound reports whether the junction currently has an upstream source.
func (j *JunctionCore) Bound() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.bound
}

// Cancelled reports whether the junction has been permanently retired.
func (j *JunctionCore) Cancelled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelled
}
