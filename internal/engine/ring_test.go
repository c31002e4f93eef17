package engine

import "testing"

func TestRingPushAndTail(t *testing.T) {
	r := newRing[int](3)
	if r.Len() != 0 {
		t.Fatalf("new ring len = %d", r.Len())
	}

	r.Push(1)
	r.Push(2)
	got := r.Tail(5)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("partial tail = %v", got)
	}

	r.Push(3)
	r.Push(4) // evicts 1
	r.Push(5) // evicts 2

	if r.Len() != 3 {
		t.Fatalf("full ring len = %d, want 3", r.Len())
	}
	got = r.Tail(3)
	if got[0] != 3 || got[1] != 4 || got[2] != 5 {
		t.Fatalf("tail after wraparound = %v, want [3 4 5]", got)
	}
	got = r.Tail(2)
	if len(got) != 2 || got[0] != 4 || got[1] != 5 {
		t.Fatalf("tail(2) = %v, want [4 5]", got)
	}
}

func TestRingAt(t *testing.T) {
	r := newRing[string](2)
	r.Push("a")
	r.Push("b")
	r.Push("c")
	if r.At(0) != "b" || r.At(1) != "c" {
		t.Fatalf("At = %s,%s, want b,c", r.At(0), r.At(1))
	}
}

func TestRingZeroCapacity(t *testing.T) {
	r := newRing[int](0)
	r.Push(7)
	r.Push(8)
	if r.Len() != 1 || r.At(0) != 8 {
		t.Fatalf("degenerate ring holds %d elems, last=%d", r.Len(), r.At(0))
	}
}
