package corestream

import "github.com/rivenhollow/corestream/internal/corenode"

// SendErrorKind enumerates why an Input.Send or Input.End call was rejected.
type SendErrorKind int

const (
	// SendErrorDisconnected means the signal has already delivered its
	// terminal End; no further sends are possible.
	SendErrorDisconnected SendErrorKind = iota
	// SendErrorInactive means the signal currently has no subscribers, so
	// there is nowhere for the send to go. Sends are accepted only while a
	// node is active, matching the engine's invariant that a disabled node
	// rejects delivery outright rather than buffering it.
	SendErrorInactive
)

// SendError is returned by Input.Send/Input.End when a send cannot be
// delivered.
type SendError struct {
	Kind SendErrorKind
}

func (e *SendError) Error() string {
	switch e.Kind {
	case SendErrorDisconnected:
		return "corestream: signal already ended"
	case SendErrorInactive:
		return "corestream: signal has no active subscribers"
	default:
		return "corestream: send rejected"
	}
}

// BindErrorKind enumerates why a Junction.Bind call was rejected.
type BindErrorKind int

const (
	// BindErrorLoop means binding would close a cycle back to the
	// junction's own output.
	BindErrorLoop BindErrorKind = iota
	// BindErrorDuplicate means the junction already has a bound source;
	// Disconnect it first.
	BindErrorDuplicate
	// BindErrorCancelled means the junction has been permanently retired
	// and can never be bound again.
	BindErrorCancelled
)

// BindError is returned by Junction.Bind when the requested binding cannot
// be honored.
type BindError struct {
	Kind BindErrorKind
}

func (e *BindError) Error() string {
	switch e.Kind {
	case BindErrorLoop:
		return "corestream: bind would create a cycle"
	case BindErrorDuplicate:
		return "corestream: junction is already bound"
	case BindErrorCancelled:
		return "corestream: junction has been disconnected permanently"
	default:
		return "corestream: bind rejected"
	}
}

func bindErrorFromCore(err error) error {
	coreErr, ok := err.(*corenode.BindError)
	if !ok {
		return err
	}
	switch coreErr.Kind {
	case corenode.BindErrorLoop:
		return &BindError{Kind: BindErrorLoop}
	case corenode.BindErrorDuplicate:
		return &BindError{Kind: BindErrorDuplicate}
	case corenode.BindErrorCancelled:
		return &BindError{Kind: BindErrorCancelled}
	default:
		return err
	}
}

// ErrMergedInputClosed is returned by MergedInput.Add once the merge has
// gone terminal: a policy-triggered End has already been emitted
// downstream, so no further input can usefully be attached.
var ErrMergedInputClosed = corenode.ErrMergedInputClosed
