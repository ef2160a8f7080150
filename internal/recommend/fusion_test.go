package recommend

import (
	"testing"

	"github.com/spigell/assessment-recommender/internal/catalog"
	"github.com/spigell/assessment-recommender/internal/index"
)

func fusionSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot("test", []*catalog.Item{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
		{ID: "d", Name: "D"},
	})
}

var fusionCfg = FusionConfig{
	LexicalWeight:  DefaultLexicalWeight,
	SemanticWeight: DefaultSemanticWeight,
	Limit:          DefaultFuseLimit,
}

func TestFuseNormalizesWithinEachList(t *testing.T) {
	// Lexical scores are on an arbitrary BM25 scale, semantic on cosine.
	lex := []index.Hit{{ID: "a", Score: 12.0}, {ID: "b", Score: 3.0}}
	sem := []index.Hit{{ID: "c", Score: 0.95}, {ID: "b", Score: 0.80}}

	candidates := fuse(lex, sem, fusionSnapshot(), fusionCfg)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}

	byID := map[string]*Candidate{}
	for _, cand := range candidates {
		byID[cand.Item.ID] = cand
	}

	// Best lexical hit normalizes to 1 regardless of raw scale.
	if *byID["a"].Lexical != 1 {
		t.Fatalf("expected normalized 1 for top lexical hit, got %v", *byID["a"].Lexical)
	}

	// b has the worst score in both lists, so both signals normalize to 0.
	if byID["b"].Fused != 0 {
		t.Fatalf("expected fused 0 for b, got %v", byID["b"].Fused)
	}

	// a: lexical only. c: semantic only with the higher weight.
	if byID["a"].Fused != DefaultLexicalWeight {
		t.Fatalf("expected fused %v for a, got %v", DefaultLexicalWeight, byID["a"].Fused)
	}
	if byID["c"].Fused != DefaultSemanticWeight {
		t.Fatalf("expected fused %v for c, got %v", DefaultSemanticWeight, byID["c"].Fused)
	}

	if candidates[0].Item.ID != "c" {
		t.Fatalf("expected c ranked first, got %s", candidates[0].Item.ID)
	}
}

func TestFuseTieBreakPrefersBothSignals(t *testing.T) {
	// a and d both fuse to 0.4: a from lexical alone, d from a top
	// lexical score plus a bottom semantic score. The tie goes to d, the
	// candidate both retrievers saw.
	lex := []index.Hit{{ID: "a", Score: 10}, {ID: "d", Score: 10}, {ID: "b", Score: 2}}
	sem := []index.Hit{{ID: "c", Score: 0.9}, {ID: "d", Score: 0.5}}

	candidates := fuse(lex, sem, fusionSnapshot(), fusionCfg)

	var aCand, dCand *Candidate
	for _, cand := range candidates {
		switch cand.Item.ID {
		case "a":
			aCand = cand
		case "d":
			dCand = cand
		}
	}
	if aCand.Fused != dCand.Fused {
		t.Fatalf("fixture broken: expected a tie, got %v vs %v", aCand.Fused, dCand.Fused)
	}

	if candidates[1].Item.ID != "d" || candidates[2].Item.ID != "a" {
		t.Fatalf("expected d before a on the tie, got %s then %s",
			candidates[1].Item.ID, candidates[2].Item.ID)
	}
}

func TestFuseTieBreakByID(t *testing.T) {
	lex := []index.Hit{{ID: "b", Score: 5}, {ID: "a", Score: 5}}

	candidates := fuse(lex, nil, fusionSnapshot(), fusionCfg)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	if candidates[0].Item.ID != "a" || candidates[1].Item.ID != "b" {
		t.Fatalf("expected id-ascending tie break, got %s then %s",
			candidates[0].Item.ID, candidates[1].Item.ID)
	}
}

func TestFuseHonorsLimit(t *testing.T) {
	lex := []index.Hit{{ID: "a", Score: 3}, {ID: "b", Score: 2}, {ID: "c", Score: 1}}

	cfg := fusionCfg
	cfg.Limit = 2

	candidates := fuse(lex, nil, fusionSnapshot(), cfg)
	if len(candidates) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(candidates))
	}
}

func TestFuseSkipsUnknownItems(t *testing.T) {
	lex := []index.Hit{{ID: "a", Score: 3}, {ID: "ghost", Score: 9}}

	candidates := fuse(lex, nil, fusionSnapshot(), fusionCfg)
	if len(candidates) != 1 || candidates[0].Item.ID != "a" {
		t.Fatalf("expected only known items, got %v", candidates)
	}
}
