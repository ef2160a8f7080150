package recommend

import (
	"math"
	"sort"

	"github.com/spigell/assessment-recommender/internal/catalog"
)

// selectBalanced picks the final top-k from the filtered, rerank-ordered
// candidates, steering the K/P mix toward ratio when one is set.
//
// The ratio is a soft preference: when one category runs out before its
// target is met the shortfall is backfilled from the other category in
// score order, so the list is never under-filled while eligible candidates
// remain. The final ordering is always by rerank score descending with
// ties broken by item id, never by category.
func selectBalanced(candidates []*Candidate, topK int, ratio *float64) []*Candidate {
	sortByRerank(candidates)

	if len(candidates) <= topK {
		out := make([]*Candidate, len(candidates))
		copy(out, candidates)
		return out
	}

	if ratio == nil {
		out := make([]*Candidate, topK)
		copy(out, candidates)
		return out
	}

	targetK, targetP := categoryTargets(topK, *ratio)

	selected := make([]*Candidate, 0, topK)
	taken := make(map[string]struct{}, topK)
	gotK, gotP := 0, 0

	for _, cand := range candidates {
		if gotK == targetK && gotP == targetP {
			break
		}
		switch cand.Item.Category {
		case catalog.CategoryKnowledge:
			if gotK == targetK {
				continue
			}
			gotK++
		case catalog.CategoryPersonality:
			if gotP == targetP {
				continue
			}
			gotP++
		}
		selected = append(selected, cand)
		taken[cand.Item.ID] = struct{}{}
	}

	// One category exhausted below its target: backfill from the rest in
	// score order rather than returning a short list.
	for _, cand := range candidates {
		if len(selected) == topK {
			break
		}
		if _, ok := taken[cand.Item.ID]; ok {
			continue
		}
		selected = append(selected, cand)
		taken[cand.Item.ID] = struct{}{}
	}

	sortByRerank(selected)
	return selected
}

// categoryTargets splits topK into knowledge and personality slot counts
// from the knowledge ratio. The category with the larger fractional
// remainder wins the odd slot; on an exact tie it goes to knowledge.
func categoryTargets(topK int, ratio float64) (targetK, targetP int) {
	exactK := float64(topK) * ratio
	exactP := float64(topK) - exactK

	targetK = int(math.Floor(exactK))
	targetP = int(math.Floor(exactP))

	if targetK+targetP < topK {
		if exactK-float64(targetK) >= exactP-float64(targetP) {
			targetK++
		} else {
			targetP++
		}
	}
	return targetK, targetP
}

func sortByRerank(candidates []*Candidate) {
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].Rerank != candidates[b].Rerank {
			return candidates[a].Rerank > candidates[b].Rerank
		}
		return candidates[a].Item.ID < candidates[b].Item.ID
	})
}
