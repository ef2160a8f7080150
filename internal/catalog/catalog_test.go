package catalog

import (
	"testing"
)

func TestSnapshotSortsItemsByID(t *testing.T) {
	snapshot := NewSnapshot("v1", []*Item{
		{ID: "zeta"},
		{ID: "alpha"},
		{ID: "mid"},
	})

	items := snapshot.Items()
	if items[0].ID != "alpha" || items[1].ID != "mid" || items[2].ID != "zeta" {
		t.Fatalf("expected id-sorted items, got %v", items)
	}
}

func TestSnapshotLookup(t *testing.T) {
	snapshot := NewSnapshot("v1", []*Item{{ID: "a", Name: "A"}})

	if item := snapshot.Item("a"); item == nil || item.Name != "A" {
		t.Fatalf("expected to find item a")
	}

	if item := snapshot.Item("missing"); item != nil {
		t.Fatalf("expected nil for an unknown id, got %v", item)
	}
}

func TestHasKnownDuration(t *testing.T) {
	known := &Item{DurationMinutes: 30}
	unknown := &Item{DurationMinutes: DurationUnknown}

	if !known.HasKnownDuration() {
		t.Fatalf("expected a known duration")
	}
	if unknown.HasKnownDuration() {
		t.Fatalf("expected an unknown duration")
	}
}

func TestHolderSwap(t *testing.T) {
	first := NewSnapshot("v1", []*Item{{ID: "a"}})
	second := NewSnapshot("v2", []*Item{{ID: "a"}, {ID: "b"}})

	holder := NewHolder(first)
	if holder.Get().Version() != "v1" {
		t.Fatalf("expected v1, got %s", holder.Get().Version())
	}

	holder.Swap(second)
	if holder.Get().Version() != "v2" || holder.Get().Len() != 2 {
		t.Fatalf("expected the swapped snapshot")
	}
}
