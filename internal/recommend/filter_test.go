package recommend

import (
	"testing"

	"github.com/spigell/assessment-recommender/internal/catalog"
)

func candidatesFrom(items ...*catalog.Item) []*Candidate {
	candidates := make([]*Candidate, len(items))
	for i, item := range items {
		candidates[i] = &Candidate{Item: item}
	}
	return candidates
}

func TestBundleFilterDropsBundles(t *testing.T) {
	candidates := candidatesFrom(
		&catalog.Item{ID: "a"},
		&catalog.Item{ID: "bundle", IsBundle: true},
		&catalog.Item{ID: "b"},
	)

	kept, step := NewBundleFilter().Apply(candidates)

	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	for _, cand := range kept {
		if cand.Item.IsBundle {
			t.Fatalf("bundle %s survived the filter", cand.Item.ID)
		}
	}

	if step.Initial != 3 || step.Dropped != 1 || step.Left != 2 {
		t.Fatalf("unexpected step stats: %+v", step)
	}
}

func TestDurationFilterNoLimitPassesAll(t *testing.T) {
	candidates := candidatesFrom(
		&catalog.Item{ID: "a", DurationMinutes: 90},
		&catalog.Item{ID: "b", DurationMinutes: catalog.DurationUnknown},
	)

	kept, step := NewDurationFilter(nil, false).Apply(candidates)
	if len(kept) != 2 || step.Dropped != 0 {
		t.Fatalf("expected everything to pass without a limit, got %d kept", len(kept))
	}
}

func TestDurationFilterDropsOverLimit(t *testing.T) {
	max := 45
	candidates := candidatesFrom(
		&catalog.Item{ID: "short", DurationMinutes: 30},
		&catalog.Item{ID: "exact", DurationMinutes: 45},
		&catalog.Item{ID: "long", DurationMinutes: 60},
	)

	kept, step := NewDurationFilter(&max, false).Apply(candidates)

	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if kept[0].Item.ID != "short" || kept[1].Item.ID != "exact" {
		t.Fatalf("wrong survivors: %s, %s", kept[0].Item.ID, kept[1].Item.ID)
	}
	if step.Dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", step.Dropped)
	}
}

func TestDurationFilterUnknownDurationPasses(t *testing.T) {
	max := 45
	candidates := candidatesFrom(
		&catalog.Item{ID: "unknown", DurationMinutes: catalog.DurationUnknown},
	)

	kept, _ := NewDurationFilter(&max, false).Apply(candidates)
	if len(kept) != 1 {
		t.Fatalf("expected unknown duration to pass, got %d kept", len(kept))
	}
}

func TestDurationFilterStrictDropsUnknown(t *testing.T) {
	max := 45
	candidates := candidatesFrom(
		&catalog.Item{ID: "unknown", DurationMinutes: catalog.DurationUnknown},
		&catalog.Item{ID: "short", DurationMinutes: 10},
	)

	kept, _ := NewDurationFilter(&max, true).Apply(candidates)
	if len(kept) != 1 || kept[0].Item.ID != "short" {
		t.Fatalf("expected strict mode to drop unknown durations, kept %d", len(kept))
	}
}
