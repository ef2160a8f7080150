package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch is returned when a query vector does not match the
// dimensionality of the indexed vectors.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

type vectorDoc struct {
	id   string
	vec  []float32
	norm float64
}

// Vector is a brute-force cosine similarity index over document embeddings.
// Catalog scale (hundreds of items) makes exact search cheaper than any
// approximate structure.
type Vector struct {
	dims int
	docs []vectorDoc
}

// NewVector builds a vector index from per-item embeddings. All vectors must
// share one dimensionality; zero vectors are rejected.
func NewVector(vectors map[string][]float32) (*Vector, error) {
	idx := &Vector{}

	ids := make([]string, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		vec := vectors[id]
		if idx.dims == 0 {
			idx.dims = len(vec)
		}
		if len(vec) == 0 || len(vec) != idx.dims {
			return nil, fmt.Errorf("embedding for %s has %d dimensions, want %d: %w",
				id, len(vec), idx.dims, ErrDimensionMismatch)
		}

		norm := vectorNorm(vec)
		if norm == 0 {
			return nil, fmt.Errorf("embedding for %s is a zero vector", id)
		}

		idx.docs = append(idx.docs, vectorDoc{id: id, vec: vec, norm: norm})
	}

	return idx, nil
}

// Len returns the number of indexed vectors.
func (v *Vector) Len() int { return len(v.docs) }

// Dims returns the vector dimensionality.
func (v *Vector) Dims() int { return v.dims }

// Search returns up to limit items ranked by cosine similarity to the query
// vector, ties broken by id.
func (v *Vector) Search(query []float32, limit int) ([]Hit, error) {
	if len(v.docs) == 0 || limit <= 0 {
		return nil, nil
	}
	if len(query) != v.dims {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w",
			len(query), v.dims, ErrDimensionMismatch)
	}

	queryNorm := vectorNorm(query)
	if queryNorm == 0 {
		return nil, errors.New("query embedding is a zero vector")
	}

	hits := make([]Hit, 0, len(v.docs))
	for _, doc := range v.docs {
		dot := 0.0
		for i, q := range query {
			dot += float64(q) * float64(doc.vec[i])
		}
		hits = append(hits, Hit{ID: doc.id, Score: dot / (queryNorm * doc.norm)})
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
	return hits, nil
}

func vectorNorm(vec []float32) float64 {
	sum := 0.0
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
