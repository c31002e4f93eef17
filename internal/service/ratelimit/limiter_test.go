package ratelimit

import "testing"

func TestLimiterConsumesTokens(t *testing.T) {
	l := New()

	for i := 0; i < 3; i++ {
		if !l.Allow("sym", 3, 0) {
			t.Fatalf("request %d denied within capacity", i+1)
		}
	}
	if l.Allow("sym", 3, 0) {
		t.Fatalf("request allowed past capacity with no refill")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("first request for a denied")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("second request for a allowed")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("request for b denied after a exhausted")
	}
}
