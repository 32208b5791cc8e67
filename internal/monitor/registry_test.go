package monitor

import "testing"

func TestRegister_PreservesOrder(t *testing.T) {
	r := New()
	r.Register("a:1", 100)
	r.Register("b:2", 100)
	r.Register("a:1", 100) // same endpoint, independent entry

	live := r.Live()
	if len(live) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(live))
	}
	if live[0].ClientEndpoint != "a:1" || live[1].ClientEndpoint != "b:2" || live[2].ClientEndpoint != "a:1" {
		t.Fatalf("expected registration order preserved, got %+v", live)
	}
}

func TestPrune_DropsExpiredOnly(t *testing.T) {
	r := New()
	r.Register("expired:1", 10)
	r.Register("alive:1", 1000)

	r.Prune(500)

	live := r.Live()
	if len(live) != 1 || live[0].ClientEndpoint != "alive:1" {
		t.Fatalf("expected only the live entry to survive, got %+v", live)
	}
}

func TestLive_ReturnsIndependentCopy(t *testing.T) {
	r := New()
	r.Register("a:1", 1000)

	live := r.Live()
	live[0].ClientEndpoint = "mutated"

	again := r.Live()
	if again[0].ClientEndpoint != "a:1" {
		t.Fatal("Live() snapshot should not alias internal storage")
	}
}
