package recommend

import (
	"testing"

	"github.com/spigell/assessment-recommender/internal/catalog"
)

func scored(id string, category catalog.Category, rerank float64) *Candidate {
	return &Candidate{
		Item:   &catalog.Item{ID: id, Category: category},
		Rerank: rerank,
	}
}

func ids(candidates []*Candidate) []string {
	out := make([]string, len(candidates))
	for i, cand := range candidates {
		out[i] = cand.Item.ID
	}
	return out
}

func TestSelectBalancedFewerThanTopK(t *testing.T) {
	candidates := []*Candidate{
		scored("a", catalog.CategoryKnowledge, 0.9),
		scored("b", catalog.CategoryPersonality, 0.8),
	}

	selected := selectBalanced(candidates, 5, floatPtr(0.5))
	if len(selected) != 2 {
		t.Fatalf("expected all candidates when fewer than topK, got %d", len(selected))
	}
}

func TestSelectBalancedNoRatioIsPureScoreOrder(t *testing.T) {
	candidates := []*Candidate{
		scored("k1", catalog.CategoryKnowledge, 0.9),
		scored("k2", catalog.CategoryKnowledge, 0.8),
		scored("k3", catalog.CategoryKnowledge, 0.7),
		scored("p1", catalog.CategoryPersonality, 0.1),
	}

	selected := selectBalanced(candidates, 3, nil)

	got := ids(selected)
	want := []string{"k1", "k2", "k3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSelectBalancedSteersTowardRatio(t *testing.T) {
	candidates := []*Candidate{
		scored("k1", catalog.CategoryKnowledge, 0.9),
		scored("k2", catalog.CategoryKnowledge, 0.8),
		scored("k3", catalog.CategoryKnowledge, 0.7),
		scored("p1", catalog.CategoryPersonality, 0.3),
		scored("p2", catalog.CategoryPersonality, 0.2),
		scored("p3", catalog.CategoryPersonality, 0.1),
	}

	selected := selectBalanced(candidates, 4, floatPtr(0.5))

	gotK, gotP := 0, 0
	for _, cand := range selected {
		if cand.Item.Category == catalog.CategoryKnowledge {
			gotK++
		} else {
			gotP++
		}
	}
	if gotK != 2 || gotP != 2 {
		t.Fatalf("expected a 2/2 split, got %d/%d: %v", gotK, gotP, ids(selected))
	}

	// Output order stays score descending, never grouped by category.
	got := ids(selected)
	want := []string{"k1", "k2", "p1", "p2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSelectBalancedBackfillsExhaustedCategory(t *testing.T) {
	candidates := []*Candidate{
		scored("k1", catalog.CategoryKnowledge, 0.9),
		scored("k2", catalog.CategoryKnowledge, 0.8),
		scored("k3", catalog.CategoryKnowledge, 0.7),
		scored("k4", catalog.CategoryKnowledge, 0.6),
		scored("p1", catalog.CategoryPersonality, 0.5),
	}

	// Ratio asks for 2 knowledge and 2 personality, but only one
	// personality candidate exists.
	selected := selectBalanced(candidates, 4, floatPtr(0.5))

	if len(selected) != 4 {
		t.Fatalf("expected a full list of 4, got %d", len(selected))
	}

	got := ids(selected)
	want := []string{"k1", "k2", "k3", "p1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCategoryTargets(t *testing.T) {
	cases := []struct {
		name  string
		topK  int
		ratio float64
		wantK int
		wantP int
	}{
		{name: "even split", topK: 10, ratio: 0.5, wantK: 5, wantP: 5},
		{name: "all knowledge", topK: 10, ratio: 1, wantK: 10, wantP: 0},
		{name: "all personality", topK: 10, ratio: 0, wantK: 0, wantP: 10},
		{name: "odd slot to larger remainder", topK: 10, ratio: 0.67, wantK: 7, wantP: 3},
		{name: "odd slot remainder to personality", topK: 10, ratio: 0.63, wantK: 6, wantP: 4},
		{name: "exact tie goes to knowledge", topK: 5, ratio: 0.5, wantK: 3, wantP: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotK, gotP := categoryTargets(tc.topK, tc.ratio)
			if gotK != tc.wantK || gotP != tc.wantP {
				t.Fatalf("expected %d/%d, got %d/%d", tc.wantK, tc.wantP, gotK, gotP)
			}
		})
	}
}
