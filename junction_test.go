package corestream

import (
	"testing"

	"github.com/rivenhollow/corestream/internal/execctx"
)

func TestJunctionDeliversNothingUntilBound(t *testing.T) {
	//1.- An unbound junction's output must deliver nothing while subscribed.
	j := NewJunction[int](execctx.NewInline())
	called := false
	lifetime := Subscribe(j.Output(), func(r Result[int]) { called = true })
	defer lifetime.Dispose()

	if called {
		t.Fatalf("expected no delivery before Bind")
	}
}

func TestJunctionForwardsAfterBind(t *testing.T) {
	//1.- Subscribe to the output, then bind a finite source; its values
	// must flow through.
	j := NewJunction[int](execctx.NewInline())
	var got []int
	lifetime := Subscribe(j.Output(), func(r Result[int]) {
		if v, ok := r.Value(); ok {
			got = append(got, v)
		}
	})
	defer lifetime.Dispose()

	if err := j.Bind(From(1, 2, 3), nil); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("expected [1 2 3], got %v", got)
	}
}

func TestJunctionRejectsDuplicateBind(t *testing.T) {
	j := NewJunction[int](execctx.NewInline())
	lifetime := Subscribe(j.Output(), func(r Result[int]) {})
	defer lifetime.Dispose()

	if err := j.Bind(Never[int](), nil); err != nil {
		t.Fatalf("first Bind: %v", err)
	}
	err := j.Bind(Never[int](), nil)
	bindErr, ok := err.(*BindError)
	if !ok || bindErr.Kind != BindErrorDuplicate {
		t.Fatalf("expected BindErrorDuplicate, got %v", err)
	}
}

func TestJunctionDisconnectThenRebind(t *testing.T) {
	//1.- Disconnect then Bind a second source; only the second source's
	// values should reach the still-attached downstream subscriber.
	j := NewJunction[int](execctx.NewInline())
	var got []int
	lifetime := Subscribe(j.Output(), func(r Result[int]) {
		if v, ok := r.Value(); ok {
			got = append(got, v)
		}
	})
	defer lifetime.Dispose()

	if err := j.Bind(Never[int](), nil); err != nil {
		t.Fatalf("Bind first: %v", err)
	}
	j.Disconnect()
	if j.Bound() {
		t.Fatalf("expected Bound() false after Disconnect")
	}

	if err := j.Bind(From(9), nil); err != nil {
		t.Fatalf("Bind second: %v", err)
	}

	if len(got) != 1 || got[0] != 9 {
		t.Fatalf("expected only [9] from the rebound source, got %v", got)
	}
}

func TestJunctionCancelForbidsFurtherBind(t *testing.T) {
	j := NewJunction[int](execctx.NewInline())
	lifetime := Subscribe(j.Output(), func(r Result[int]) {})
	defer lifetime.Dispose()

	j.Cancel()
	if !j.Cancelled() {
		t.Fatalf("expected Cancelled() true after Cancel")
	}
	err := j.Bind(Never[int](), nil)
	bindErr, ok := err.(*BindError)
	if !ok || bindErr.Kind != BindErrorCancelled {
		t.Fatalf("expected BindErrorCancelled, got %v", err)
	}
}

func TestJunctionOnErrorHookObservesEndBeforePropagation(t *testing.T) {
	j := NewJunction[int](execctx.NewInline())
	var hookReason EndReason
	var hookCalled bool
	var downstreamEnded bool

	lifetime := Subscribe(j.Output(), func(r Result[int]) {
		if r.IsEnd() {
			downstreamEnded = true
		}
	})
	defer lifetime.Dispose()

	err := j.Bind(Preclosed[int](nil, Cancelled, nil), func(jn *Junction[int], end EndInfo) {
		hookCalled = true
		hookReason = end.Reason
	})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	if !hookCalled || hookReason != Cancelled {
		t.Fatalf("expected onError hook called with Cancelled, got called=%v reason=%v", hookCalled, hookReason)
	}
	if !downstreamEnded {
		t.Fatalf("expected the End to still propagate downstream after the hook ran")
	}
}

func TestCaptureSnapshotsActivationBurstAndResendsOnBind(t *testing.T) {
	//1.- Capture a Continuous Multi whose cached value is 7.
	continuous := Continuous[int](From(7), execctx.NewInline())
	capture := NewCapture[int](continuous)

	if values := capture.CurrentValues(); len(values) != 1 || values[0] != 7 {
		t.Fatalf("expected captured value [7], got %v", values)
	}

	//2.- Binding with resend=true must deliver 7 before anything else.
	var got []Result[int]
	lifetime := capture.Bind(func(r Result[int]) { got = append(got, r) }, true)
	defer lifetime.Dispose()

	if len(got) == 0 {
		t.Fatalf("expected at least one resent result")
	}
	v, ok := got[0].Value()
	if !ok || v != 7 {
		t.Fatalf("expected the first resent result to be 7, got %v (ok=%v)", v, ok)
	}
}

func TestCaptureCurrentEndReflectsAlreadyEndedSource(t *testing.T) {
	capture := NewCapture[int](Preclosed[int](nil, Complete, nil))

	end := capture.CurrentEnd()
	if end == nil || end.Reason != Complete {
		t.Fatalf("expected captured End with Complete reason, got %+v", end)
	}

	var got []Result[int]
	lifetime := capture.Bind(func(r Result[int]) { got = append(got, r) }, true)
	defer lifetime.Dispose()

	if len(got) != 1 || !got[0].IsEnd() || got[0].End().Reason != Complete {
		t.Fatalf("expected only the captured End, got %+v", got)
	}
}
