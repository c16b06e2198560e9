package rules

import (
	"sync"
	"testing"
)

func TestStoreEmptySnapshot(t *testing.T) {
	s := NewStore()

	if got := s.Snapshot(); len(got) != 0 {
		t.Errorf("expected empty snapshot, got %d rules", len(got))
	}
	if s.Len() != 0 {
		t.Errorf("expected Len 0, got %d", s.Len())
	}
}

func TestStoreReplaceAll(t *testing.T) {
	s := NewStore()

	s.ReplaceAll([]Rule{
		{Trigger: ";email", Replacement: "me@example.com"},
		{Trigger: ";sig", Replacement: "-- Jo"},
	})

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(snap))
	}
	if snap[0].Trigger != ";email" {
		t.Errorf("snapshot order changed: got %q first", snap[0].Trigger)
	}

	// Replace wholesale, not merge.
	s.ReplaceAll([]Rule{{Trigger: ";x", Replacement: "y"}})
	if s.Len() != 1 {
		t.Errorf("expected wholesale replace, got %d rules", s.Len())
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	s := NewStore()
	in := []Rule{{Trigger: ";a", Replacement: "1"}}
	s.ReplaceAll(in)

	// Mutating the caller's slice must not affect the store.
	in[0].Trigger = ";mutated"
	if got := s.Snapshot()[0].Trigger; got != ";a" {
		t.Errorf("store aliased caller slice: got %q", got)
	}

	// Mutating a snapshot must not affect the store.
	snap := s.Snapshot()
	snap[0].Replacement = "mutated"
	if got := s.Snapshot()[0].Replacement; got != "1" {
		t.Errorf("snapshot aliased store: got %q", got)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.ReplaceAll([]Rule{{Trigger: ";t", Replacement: "r"}})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = s.Snapshot()
			}
		}()
	}

	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("expected 1 rule after concurrent churn, got %d", s.Len())
	}
}
