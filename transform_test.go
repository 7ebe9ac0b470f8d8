package corestream

import (
	"testing"

	"github.com/rivenhollow/corestream/internal/execctx"
)

func TestTransformMapsValuesAndForwardsEnd(t *testing.T) {
	//1.- A stateless Transform doubling every int, preserving the trailing End.
	source := From(1, 2, 3)
	doubled := Transform[int, int](source, execctx.NewInline(), func(msg Result[int], next Next[int]) {
		if v, ok := msg.Value(); ok {
			next.Value(v * 2)
			return
		}
		next.End(msg.End().Reason, msg.End().Err)
	})

	var got []Result[int]
	lifetime := Subscribe(doubled, func(r Result[int]) { got = append(got, r) })
	defer lifetime.Dispose()

	if len(got) != 4 {
		t.Fatalf("expected 4 results, got %d", len(got))
	}
	for i, want := range []int{2, 4, 6} {
		if v, ok := got[i].Value(); !ok || v != want {
			t.Fatalf("result %d: expected %d, got %v (ok=%v)", i, want, v, ok)
		}
	}
	if !got[3].IsEnd() || got[3].End().Reason != Complete {
		t.Fatalf("expected trailing Complete End, got %+v", got[3])
	}
}

func TestTransformStateAccumulatesAcrossMessages(t *testing.T) {
	//1.- TransformState keeps a running sum, emitting it after every input value.
	source := From(1, 2, 3, 4)
	sums := TransformState[int, int, int](source, 0, execctx.NewInline(), func(state *int, msg Result[int], next Next[int]) {
		if v, ok := msg.Value(); ok {
			*state += v
			next.Value(*state)
			return
		}
		next.End(msg.End().Reason, msg.End().Err)
	})

	var values []int
	lifetime := Subscribe(sums, func(r Result[int]) {
		if v, ok := r.Value(); ok {
			values = append(values, v)
		}
	})
	defer lifetime.Dispose()

	want := []int{1, 3, 6, 10}
	if len(values) != len(want) {
		t.Fatalf("expected %v, got %v", want, values)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, values)
		}
	}
}

func TestTransformStateResetsOnEachActivation(t *testing.T) {
	//1.- A fresh subscription after disposing a prior one must see the
	// accumulator restart from its seed, not continue the old total.
	source := From(1, 1)
	sums := TransformState[int, int, int](source, 0, execctx.NewInline(), func(state *int, msg Result[int], next Next[int]) {
		if v, ok := msg.Value(); ok {
			*state += v
			next.Value(*state)
			return
		}
		next.End(msg.End().Reason, msg.End().Err)
	})

	var first []int
	l1 := Subscribe(sums, func(r Result[int]) {
		if v, ok := r.Value(); ok {
			first = append(first, v)
		}
	})
	l1.Dispose()

	var second []int
	l2 := Subscribe(sums, func(r Result[int]) {
		if v, ok := r.Value(); ok {
			second = append(second, v)
		}
	})
	defer l2.Dispose()

	if len(first) != 2 || first[1] != 2 {
		t.Fatalf("expected first subscription to reach 2, got %v", first)
	}
	if len(second) != 2 || second[1] != 2 {
		t.Fatalf("expected second subscription to restart from seed and reach 2 again, got %v", second)
	}
}
