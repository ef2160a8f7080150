package ai

import "context"

// Document is the text a reranker sees for one candidate.
type Document struct {
	ID          string
	Name        string
	Description string
}

// Embedder turns text into vectors in the same space as the document index.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker scores every document against the query in one batched call and
// returns a relevance score in [0,1] per document id.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []Document) (map[string]float64, error)
}
