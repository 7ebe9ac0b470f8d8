package corestream

import "sync"

// Lifetime is the handle returned by Subscribe. Dispose tears the
// subscription down: it detaches from the signal and, on the last
// subscriber leaving, deactivates the node (and transitively its
// predecessors), matching the refcounted Activate/Deactivate pairing the
// engine requires.
type Lifetime struct {
	once    sync.Once
	dispose func()
}

func newLifetime(dispose func()) *Lifetime {
	return &Lifetime{dispose: dispose}
}

// Dispose tears the subscription down. It is idempotent: calling it more
// than once has no additional effect.
func (l *Lifetime) Dispose() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		if l.dispose != nil {
			l.dispose()
		}
	})
}
