package corestream

import (
	"testing"

	"github.com/rivenhollow/corestream/internal/execctx"
)

func TestCombine2TagsValuesByOrigin(t *testing.T) {
	//1.- Two finite sources combined into sums; handler tags which input an
	// arriving message came from.
	sa := From(1, 2)
	sb := From("x", "y")

	type tagged struct {
		fromFirst bool
		s         string
	}

	out := Combine2[int, string, tagged](sa, sb, execctx.NewInline(), func(msg Either2[int, string], next Next[tagged]) {
		if msg.IsFirst() {
			if v, ok := msg.First().Value(); ok {
				next.Value(tagged{fromFirst: true, s: itoaForTest(v)})
			}
			return
		}
		if v, ok := msg.Second().Value(); ok {
			next.Value(tagged{fromFirst: false, s: v})
		}
	})

	var got []tagged
	lifetime := Subscribe(out, func(r Result[tagged]) {
		if v, ok := r.Value(); ok {
			got = append(got, v)
		}
	})
	defer lifetime.Dispose()

	if len(got) != 4 {
		t.Fatalf("expected 4 tagged values, got %d: %+v", len(got), got)
	}
	var firsts, seconds int
	for _, g := range got {
		if g.fromFirst {
			firsts++
		} else {
			seconds++
		}
	}
	if firsts != 2 || seconds != 2 {
		t.Fatalf("expected 2 from each input, got firsts=%d seconds=%d", firsts, seconds)
	}
}

func itoaForTest(v int) string {
	digits := "0123456789"
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf []byte
	for v > 0 {
		buf = append([]byte{digits[v%10]}, buf...)
		v /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

func TestCombine3RoutesEachInputToItsOwnSlot(t *testing.T) {
	//1.- Three sources of distinct types combined, handler counts per-slot
	// arrivals rather than inspecting values.
	sa := From(1)
	sb := From(true)
	sc := From("z")

	counts := map[int]int{}
	out := Combine3[int, bool, string, int](sa, sb, sc, execctx.NewInline(), func(msg Either3[int, bool, string], next Next[int]) {
		switch {
		case msg.IsFirst():
			counts[1]++
		case msg.IsSecond():
			counts[2]++
		case msg.IsThird():
			counts[3]++
		}
		next.Value(0)
	})

	lifetime := Subscribe(out, func(r Result[int]) {})
	defer lifetime.Dispose()

	//2.- Each input delivers one value and one End, so each slot sees two
	// handler invocations.
	for slot := 1; slot <= 3; slot++ {
		if counts[slot] != 2 {
			t.Fatalf("expected slot %d to see 2 messages (value + end), got %d", slot, counts[slot])
		}
	}
}

func TestCombine2ForwardsEndFromEitherInput(t *testing.T) {
	//1.- Confirm an End arriving on either input reaches the handler tagged
	// correctly and the output can forward it.
	sa := Preclosed[int](nil, Complete, nil)
	sb := Never[string]()

	out := Combine2[int, string, string](sa, sb, execctx.NewInline(), func(msg Either2[int, string], next Next[string]) {
		if msg.IsFirst() && msg.First().IsEnd() {
			next.End(msg.First().End().Reason, msg.First().End().Err)
		}
	})

	var got []Result[string]
	lifetime := Subscribe(out, func(r Result[string]) { got = append(got, r) })
	defer lifetime.Dispose()

	if len(got) != 1 || !got[0].IsEnd() || got[0].End().Reason != Complete {
		t.Fatalf("expected a single forwarded Complete End, got %+v", got)
	}
}
