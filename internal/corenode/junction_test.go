package corenode

import "testing"

func TestJunctionCoreBindAndDisconnect(t *testing.T) {
	//1.- Bind a junction and confirm Bound reports true.
	j := NewJunctionCore(NewCore())
	unbound := false
	if err := j.Bind(nil, func() { unbound = true }); err != nil {
		t.Fatalf("unexpected bind error: %v", err)
	}
	if !j.Bound() {
		t.Fatalf("expected junction to report bound")
	}

	//2.- Disconnecting must invoke the unbind callback and clear state.
	j.Disconnect()
	if !unbound {
		t.Fatalf("expected unbind callback to run")
	}
	if j.Bound() {
		t.Fatalf("expected junction to report unbound after disconnect")
	}
}

func TestJunctionCoreRejectsDuplicateBind(t *testing.T) {
	//1.- Bind once, then attempt to bind again while still bound.
	j := NewJunctionCore(NewCore())
	if err := j.Bind(nil, func() {}); err != nil {
		t.Fatalf("unexpected error on first bind: %v", err)
	}
	err := j.Bind(nil, func() {})

	//2.- The second bind must be rejected as a duplicate.
	bindErr, ok := err.(*BindError)
	if !ok || bindErr.Kind != BindErrorDuplicate {
		t.Fatalf("expected BindErrorDuplicate, got %v", err)
	}
}

func TestJunctionCoreRejectsLoop(t *testing.T) {
	//1.- Bind with a visited set that already contains this junction.
	j := NewJunctionCore(NewCore())
	visited := map[*JunctionCore]bool{j: true}
	err := j.Bind(visited, func() {})

	//2.- This must be reported as a loop, not a duplicate.
	bindErr, ok := err.(*BindError)
	if !ok || bindErr.Kind != BindErrorLoop {
		t.Fatalf("expected BindErrorLoop, got %v", err)
	}
}

func TestJunctionCoreRejectsBindAfterCancel(t *testing.T) {
	//1.- Cancel an unbound junction, then attempt to bind it.
	j := NewJunctionCore(NewCore())
	j.Cancel()
	err := j.Bind(nil, func() {})

	//2.- Binding after cancellation must be rejected.
	bindErr, ok := err.(*BindError)
	if !ok || bindErr.Kind != BindErrorCancelled {
		t.Fatalf("expected BindErrorCancelled, got %v", err)
	}
	if j.Bound() {
		t.Fatalf("expected cancelled junction to never report bound")
	}
}

func TestJunctionCoreCancelDisconnectsExistingBinding(t *testing.T) {
	//1.- Bind, then cancel: the unbind callback must run exactly once.
	j := NewJunctionCore(NewCore())
	var unbindCalls int
	if err := j.Bind(nil, func() { unbindCalls++ }); err != nil {
		t.Fatalf("unexpected bind error: %v", err)
	}
	j.Cancel()
	if unbindCalls != 1 {
		t.Fatalf("expected exactly one unbind call, got %d", unbindCalls)
	}
	if !j.Cancelled() {
		t.Fatalf("expected junction to report cancelled")
	}
}

func TestJunctionCoreDisconnectIsIdempotent(t *testing.T) {
	//1.- Disconnecting an unbound junction must be a harmless no-op.
	j := NewJunctionCore(NewCore())
	j.Disconnect()
	j.Disconnect()
	if j.Bound() {
		t.Fatalf("expected junction to remain unbound")
	}
}

func TestJunctionCorePublishesThroughWrappedCore(t *testing.T) {
	//1.- A bound junction's wrapped core still behaves as a normal pass-through.
	core := NewCore()
	j := NewJunctionCore(core)
	var values []int
	core.AddSubscriber(func(env Envelope, gen uint64) {
		if env.Value != nil {
			values = append(values, env.Value.(int))
		}
	})
	gen := core.Activate()
	if err := j.Bind(nil, func() {}); err != nil {
		t.Fatalf("unexpected bind error: %v", err)
	}

	//2.- Delivering through the wrapped core must reach the subscriber.
	core.Deliver(Envelope{Value: 9}, gen)
	if len(values) != 1 || values[0] != 9 {
		t.Fatalf("expected value 9 to be published, got %v", values)
	}
}
