// Package index holds the in-process retrieval indices built from one
// catalog snapshot. Both indices are immutable after construction and safe
// for concurrent searches.
package index

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/spigell/assessment-recommender/internal/catalog"
)

// BM25 parameters, standard Okapi defaults.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Hit is one scored item returned by an index search.
type Hit struct {
	ID    string
	Score float64
}

type lexicalDoc struct {
	id     string
	terms  map[string]int
	length int
}

// Lexical is a BM25 inverted index over catalog item text.
type Lexical struct {
	docs      []lexicalDoc
	docFreq   map[string]int
	avgLength float64
}

// BuildLexical indexes every item of the snapshot.
func BuildLexical(snap *catalog.Snapshot) *Lexical {
	idx := &Lexical{docFreq: make(map[string]int)}

	total := 0
	for _, item := range snap.Items() {
		tokens := Tokenize(item.IndexText())

		doc := lexicalDoc{id: item.ID, terms: make(map[string]int), length: len(tokens)}
		for _, token := range tokens {
			doc.terms[token]++
		}
		for term := range doc.terms {
			idx.docFreq[term]++
		}

		idx.docs = append(idx.docs, doc)
		total += len(tokens)
	}

	if len(idx.docs) > 0 {
		idx.avgLength = float64(total) / float64(len(idx.docs))
	}

	return idx
}

// Len returns the number of indexed documents.
func (l *Lexical) Len() int { return len(l.docs) }

// Search returns up to limit items ranked by BM25 relevance to the query.
// Items with no term overlap are never returned. Ties break by id so the
// ranking is deterministic for a fixed index and query.
func (l *Lexical) Search(query string, limit int) []Hit {
	tokens := Tokenize(query)
	if len(tokens) == 0 || len(l.docs) == 0 || limit <= 0 {
		return nil
	}

	queryTerms := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		queryTerms[token] = struct{}{}
	}

	n := float64(len(l.docs))
	var hits []Hit
	for _, doc := range l.docs {
		score := 0.0
		for term := range queryTerms {
			tf, ok := doc.terms[term]
			if !ok {
				continue
			}

			df := float64(l.docFreq[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := 1 - bm25B + bm25B*float64(doc.length)/l.avgLength
			score += idf * float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*norm)
		}
		if score > 0 {
			hits = append(hits, Hit{ID: doc.id, Score: score})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ID < hits[b].ID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Tokenize lowercases the text and splits it on non-alphanumeric runes.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
