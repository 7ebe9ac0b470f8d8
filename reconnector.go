package corestream

import "github.com/rivenhollow/corestream/internal/execctx"

// Reconnector wraps a Junction with a held reference to its current
// upstream source, so a caller that wants to swap in a replacement Signal
// (a retry, a failover feed) can do so with a single Reconnect call
// instead of manually pairing Disconnect with Bind.
type Reconnector[T any] struct {
	junction *Junction[T]
	current  Signal[T]
}

// NewReconnector builds an unbound Reconnector around a fresh Junction.
func NewReconnector[T any](exec execctx.Context) *Reconnector[T] {
	return &Reconnector[T]{junction: NewJunction[T](exec)}
}

// Output returns the Reconnector's downstream Signal.
func (r *Reconnector[T]) Output() Signal[T] { return r.junction.Output() }

// Reconnect disconnects whatever source is currently bound, if any, and
// binds source in its place. onError observes source's own terminal End
// before it propagates downstream, exactly as with Junction.Bind.
func (r *Reconnector[T]) Reconnect(source Signal[T], onError func(*Junction[T], EndInfo)) error {
	if r.junction.Bound() {
		r.junction.Disconnect()
	}
	if err := r.junction.Bind(source, onError); err != nil {
		return err
	}
	r.current = source
	return nil
}

// Current returns the Signal most recently passed to Reconnect, or the
// zero Signal if Reconnect has never been called.
func (r *Reconnector[T]) Current() Signal[T] { return r.current }

// Disconnect severs the current binding without replacing it; downstream
// subscribers stay attached and receive nothing further until the next
// Reconnect.
func (r *Reconnector[T]) Disconnect() { r.junction.Disconnect() }

// Cancel permanently retires the underlying Junction.
func (r *Reconnector[T]) Cancel() { r.junction.Cancel() }

// Bound reports whether the Reconnector currently has a live upstream.
func (r *Reconnector[T]) Bound() bool { return r.junction.Bound() }

// Cancelled reports whether the Reconnector has been permanently retired.
func (r *Reconnector[T]) Cancelled() bool { return r.junction.Cancelled() }
