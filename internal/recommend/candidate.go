package recommend

import "github.com/spigell/assessment-recommender/internal/catalog"

// Candidate is one (query, item) pair surviving candidate generation. At
// least one of Lexical/Semantic is always present: candidates with neither
// signal are never created.
type Candidate struct {
	Item     *catalog.Item
	Lexical  *float64
	Semantic *float64
	Fused    float64
	Rerank   float64
}

func (c *Candidate) bothSignals() bool {
	return c.Lexical != nil && c.Semantic != nil
}

// Result is one entry of the final ranked list. Rank is 1-based and
// strictly increases with decreasing score; ties break by item id.
type Result struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Outcome is a successful recommendation response.
type Outcome struct {
	Results []Result `json:"results"`
	// Degraded is set when one retriever failed and the list was built
	// from the surviving source only.
	Degraded bool `json:"degraded"`
	// LowConfidence is set when fewer than MinTopK eligible items
	// survived filtering. It is a signal, not an error.
	LowConfidence bool `json:"low_confidence"`
}
