package checkout

import "testing"

func TestSessionMergeSumsDuplicates(t *testing.T) {
	s := NewSession()
	s.Merge("A", "Apple Juice", 2)
	s.Merge("A", "Apple Juice", 3)
	entries := s.Snapshot()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", entries[0].Quantity)
	}
}

func TestSessionKeepsFirstSeenOrder(t *testing.T) {
	s := NewSession()
	s.Merge("B", "Bread", 1)
	s.Merge("A", "Apples", 1)
	s.Merge("C", "Cheese", 1)
	s.Merge("A", "Apples", 2)
	entries := s.Snapshot()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Barcode != "B" || entries[1].Barcode != "A" || entries[2].Barcode != "C" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[1].Quantity != 3 {
		t.Fatalf("expected A quantity 3, got %d", entries[1].Quantity)
	}
}

func TestSessionKeepsScanTimeName(t *testing.T) {
	s := NewSession()
	s.Merge("A", "Old Name", 1)
	s.Merge("A", "New Name", 1)
	entries := s.Snapshot()
	if entries[0].Name != "Old Name" {
		t.Fatalf("expected scan-time name preserved, got %q", entries[0].Name)
	}
}

func TestSessionSnapshotIsACopy(t *testing.T) {
	s := NewSession()
	s.Merge("A", "Apples", 1)
	snap := s.Snapshot()
	snap[0].Quantity = 99
	if got := s.Snapshot()[0].Quantity; got != 1 {
		t.Fatalf("snapshot mutation leaked into session: %d", got)
	}
}

func TestSessionClear(t *testing.T) {
	s := NewSession()
	if !s.IsEmpty() {
		t.Fatalf("new session should be empty")
	}
	s.Merge("A", "Apples", 1)
	if s.IsEmpty() || s.Len() != 1 {
		t.Fatalf("expected one staged entry")
	}
	s.Clear()
	if !s.IsEmpty() || len(s.Snapshot()) != 0 {
		t.Fatalf("expected empty session after clear")
	}
}
