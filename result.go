// Package corestream implements a typed, synchronous signal graph: a small
// set of node kinds (producers, processors, multi-output broadcasters,
// merges and junctions) connected by Subscribe, each delivering a Result[T]
// stream that ends in exactly one terminal End. The typed surface in this
// package is a thin wrapper over the untyped delivery engine in
// internal/corenode, which does the actual activation bookkeeping,
// generation tagging, and burst-queue serialization.
package corestream

import "fmt"

// EndReason classifies why a signal's terminal Result carries no value.
type EndReason int

const (
	// Complete means the signal finished normally — there is no more data
	// to come and no error occurred.
	Complete EndReason = iota
	// Cancelled means a subscriber or an upstream dependency tore the
	// signal down before it completed on its own.
	Cancelled
	// Other wraps an arbitrary error that ended the signal abnormally.
	Other
)

func (r EndReason) String() string {
	switch r {
	case Complete:
		return "complete"
	case Cancelled:
		return "cancelled"
	case Other:
		return "error"
	default:
		return "unknown"
	}
}

// EndInfo carries the reason and, for Other, the underlying error.
type EndInfo struct {
	Reason EndReason
	Err    error
}

func (e *EndInfo) String() string {
	if e == nil {
		return ""
	}
	if e.Reason == Other && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason.String()
}

// Result is the single typed unit flowing through the graph: either a
// Value or, exactly once per signal, a terminal End. Once IsEnd reports
// true no further Result for that subscription will ever be delivered —
// this is the one invariant every node kind in the engine preserves.
type Result[T any] struct {
	value   T
	isValue bool
	end     *EndInfo
}

// ValueResult constructs a Value-carrying Result.
func ValueResult[T any](value T) Result[T] {
	return Result[T]{value: value, isValue: true}
}

// EndResult constructs a terminal Result with the given reason and, for
// Other, an error.
func EndResult[T any](reason EndReason, err error) Result[T] {
	return Result[T]{end: &EndInfo{Reason: reason, Err: err}}
}

// CompleteResult is a convenience for EndResult(Complete, nil).
func CompleteResult[T any]() Result[T] { return EndResult[T](Complete, nil) }

// CancelledResult is a convenience for EndResult(Cancelled, nil).
func CancelledResult[T any]() Result[T] { return EndResult[T](Cancelled, nil) }

// ErrorResult is a convenience for EndResult(Other, err).
func ErrorResult[T any](err error) Result[T] { return EndResult[T](Other, err) }

// IsValue reports whether this Result carries a value.
func (r Result[T]) IsValue() bool { return r.isValue }

// IsEnd reports whether this Result is the terminal marker.
func (r Result[T]) IsEnd() bool { return r.end != nil }

// Value returns the carried value and true, or the zero value and false if
// this Result is an End.
func (r Result[T]) Value() (T, bool) { return r.value, r.isValue }

// End returns the terminal EndInfo, or nil if this Result carries a value.
func (r Result[T]) End() *EndInfo { return r.end }

// MustValue returns the carried value, panicking if this Result is an End.
// Intended for call sites (tests, combinators) that have already checked
// IsValue.
func (r Result[T]) MustValue() T {
	if !r.isValue {
		panic("corestream: MustValue called on an End result")
	}
	return r.value
}

func (r Result[T]) String() string {
	if r.isValue {
		return fmt.Sprintf("Value(%v)", r.value)
	}
	return fmt.Sprintf("End(%s)", r.end)
}
