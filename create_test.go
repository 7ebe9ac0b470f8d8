package corestream

import (
	"errors"
	"testing"
)

func TestPreclosedDeliversEndBeforeSubscribeReturns(t *testing.T) {
	//1.- Subscribe to a Preclosed signal and capture whatever arrives
	// synchronously, before Subscribe returns.
	sig := Preclosed[int](nil, Cancelled, errors.New("boom"))
	var got []Result[int]
	lifetime := Subscribe(sig, func(r Result[int]) { got = append(got, r) })
	defer lifetime.Dispose()

	//2.- Exactly one terminal End, with the given reason and error, must
	// have been observed already.
	if len(got) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(got))
	}
	if !got[0].IsEnd() {
		t.Fatalf("expected an End result, got a value")
	}
	if got[0].End().Reason != Cancelled {
		t.Fatalf("expected Cancelled reason, got %v", got[0].End().Reason)
	}
	if got[0].End().Err == nil || got[0].End().Err.Error() != "boom" {
		t.Fatalf("expected wrapped error, got %v", got[0].End().Err)
	}
}

func TestPreclosedDeliversValuesThenNonCompleteEnd(t *testing.T) {
	//1.- Preclosed must be able to carry both known values and a non-
	// Complete terminal End in the same activation burst.
	sig := Preclosed[int]([]int{1, 2}, Other, errors.New("upstream failed"))
	var got []Result[int]
	lifetime := Subscribe(sig, func(r Result[int]) { got = append(got, r) })
	defer lifetime.Dispose()

	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, want := range []int{1, 2} {
		v, ok := got[i].Value()
		if !ok || v != want {
			t.Fatalf("result %d: expected value %d, got %v (ok=%v)", i, want, v, ok)
		}
	}
	if !got[2].IsEnd() || got[2].End().Reason != Other {
		t.Fatalf("expected trailing Other End, got %+v", got[2])
	}
	if got[2].End().Err == nil || got[2].End().Err.Error() != "upstream failed" {
		t.Fatalf("expected wrapped error, got %v", got[2].End().Err)
	}
}

func TestNeverDeliversNothing(t *testing.T) {
	//1.- Subscribe to Never and confirm nothing arrives while it stays active.
	sig := Never[string]()
	called := false
	lifetime := Subscribe(sig, func(r Result[string]) { called = true })
	defer lifetime.Dispose()

	if called {
		t.Fatalf("expected Never to deliver nothing, got a callback invocation")
	}
}

func TestFromDeliversValuesThenComplete(t *testing.T) {
	//1.- Subscribing to From must synchronously replay every value in order.
	sig := From(1, 2, 3)
	var got []Result[int]
	lifetime := Subscribe(sig, func(r Result[int]) { got = append(got, r) })
	defer lifetime.Dispose()

	//2.- Four results total: three values then a Complete End.
	if len(got) != 4 {
		t.Fatalf("expected 4 results, got %d", len(got))
	}
	for i, want := range []int{1, 2, 3} {
		v, ok := got[i].Value()
		if !ok || v != want {
			t.Fatalf("result %d: expected value %d, got %v (ok=%v)", i, want, v, ok)
		}
	}
	if !got[3].IsEnd() || got[3].End().Reason != Complete {
		t.Fatalf("expected trailing Complete End, got %+v", got[3])
	}
}

func TestFromWithNoValuesStillCompletes(t *testing.T) {
	//1.- An empty From must still deliver the trailing Complete End.
	sig := From[int]()
	var got []Result[int]
	lifetime := Subscribe(sig, func(r Result[int]) { got = append(got, r) })
	defer lifetime.Dispose()

	if len(got) != 1 || !got[0].IsEnd() || got[0].End().Reason != Complete {
		t.Fatalf("expected a single Complete End, got %+v", got)
	}
}

func TestFromWithEndDeliversValuesThenChosenEnd(t *testing.T) {
	//1.- FromWithEnd is From's generalization to a caller-chosen End reason
	// and error, for the finite-sequence-that-fails case From itself
	// cannot express.
	sig := FromWithEnd([]string{"a", "b"}, Cancelled, nil)
	var got []Result[string]
	lifetime := Subscribe(sig, func(r Result[string]) { got = append(got, r) })
	defer lifetime.Dispose()

	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, want := range []string{"a", "b"} {
		v, ok := got[i].Value()
		if !ok || v != want {
			t.Fatalf("result %d: expected value %q, got %v (ok=%v)", i, want, v, ok)
		}
	}
	if !got[2].IsEnd() || got[2].End().Reason != Cancelled {
		t.Fatalf("expected trailing Cancelled End, got %+v", got[2])
	}
}
