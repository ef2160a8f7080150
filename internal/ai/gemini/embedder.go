package gemini

import (
	"context"
	"errors"
	"strings"
)

type textEmbedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder adapts the Generator to the ai.Embedder interface.
type Embedder struct {
	generator textEmbedder
}

// NewEmbedder wraps a text embedding backend.
func NewEmbedder(generator textEmbedder) *Embedder {
	return &Embedder{generator: generator}
}

// EmbedQuery embeds a single query string.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("query text must not be empty")
	}

	vectors, err := e.generator.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// EmbedDocuments embeds catalog documents in order.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return e.generator.EmbedTexts(ctx, texts)
}
