package recommend

import (
	"sort"

	"github.com/spigell/assessment-recommender/internal/catalog"
	"github.com/spigell/assessment-recommender/internal/index"
)

// Default fusion weights, carried over from offline tuning: semantic
// retrieval is the stronger signal on paraphrased queries.
const (
	DefaultLexicalWeight  = 0.4
	DefaultSemanticWeight = 0.6
	DefaultFuseLimit      = 50
)

// FusionConfig controls how the two retriever result lists are merged.
type FusionConfig struct {
	LexicalWeight  float64
	SemanticWeight float64
	// Limit is how many fused candidates survive into reranking. It is
	// kept comfortably above the final top-k so filters have headroom.
	Limit int
}

// fuse merges the two independently ranked lists into one candidate set
// without double-counting items present in both.
//
// Scores are min-max normalized within each source list, never across
// requests, so fusion is invariant to the absolute scales of the two
// scoring functions. A missing signal contributes zero. Ties in fused
// score prefer candidates seen by both retrievers, then break by item id.
func fuse(lex, sem []index.Hit, snap *catalog.Snapshot, cfg FusionConfig) []*Candidate {
	lexNorm := normalize(lex)
	semNorm := normalize(sem)

	byID := make(map[string]*Candidate, len(lex)+len(sem))

	for i, hit := range lex {
		item := snap.Item(hit.ID)
		if item == nil {
			continue
		}
		score := lexNorm[i]
		byID[hit.ID] = &Candidate{Item: item, Lexical: &score}
	}

	for i, hit := range sem {
		item := snap.Item(hit.ID)
		if item == nil {
			continue
		}
		score := semNorm[i]
		if cand, ok := byID[hit.ID]; ok {
			cand.Semantic = &score
			continue
		}
		byID[hit.ID] = &Candidate{Item: item, Semantic: &score}
	}

	candidates := make([]*Candidate, 0, len(byID))
	for _, cand := range byID {
		fused := 0.0
		if cand.Lexical != nil {
			fused += cfg.LexicalWeight * *cand.Lexical
		}
		if cand.Semantic != nil {
			fused += cfg.SemanticWeight * *cand.Semantic
		}
		cand.Fused = fused
		candidates = append(candidates, cand)
	}

	sort.Slice(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.Fused != cb.Fused {
			return ca.Fused > cb.Fused
		}
		if ca.bothSignals() != cb.bothSignals() {
			return ca.bothSignals()
		}
		return ca.Item.ID < cb.Item.ID
	})

	if cfg.Limit > 0 && len(candidates) > cfg.Limit {
		candidates = candidates[:cfg.Limit]
	}
	return candidates
}

// normalize min-max scales the scores of one result list into [0,1]. When
// every hit carries the same score the whole list maps to 1: those are the
// best hits that source has to offer.
func normalize(hits []index.Hit) []float64 {
	if len(hits) == 0 {
		return nil
	}

	min, max := hits[0].Score, hits[0].Score
	for _, hit := range hits[1:] {
		if hit.Score < min {
			min = hit.Score
		}
		if hit.Score > max {
			max = hit.Score
		}
	}

	norm := make([]float64, len(hits))
	if max == min {
		for i := range norm {
			norm[i] = 1
		}
		return norm
	}

	for i, hit := range hits {
		norm[i] = (hit.Score - min) / (max - min)
	}
	return norm
}
