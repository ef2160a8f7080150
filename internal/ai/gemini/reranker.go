package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spigell/assessment-recommender/internal/ai"
	"github.com/spigell/assessment-recommender/internal/logger"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Reranker scores fused candidates against the query with one batched
// Gemini call, playing the cross-encoder role of the pipeline.
type Reranker struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

const (
	defaultMaxLogLength = 200
	maxDescriptionRunes = 500
)

// NewReranker creates a Gemini-backed reranker.
func NewReranker(generator contentGenerator, maxLogLength int, log *zap.Logger) *Reranker {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Reranker{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Rerank returns a relevance score in [0,1] for every document. The call is
// batched: one prompt carries all candidates, so cost scales with the fused
// candidate count and not with catalog size. An incomplete response is an
// error; the caller treats reranker failure as fatal for the request.
func (r *Reranker) Rerank(ctx context.Context, query string, docs []ai.Document) (map[string]float64, error) {
	if len(docs) == 0 {
		return map[string]float64{}, nil
	}

	prompt, err := buildRerankPrompt(query, docs)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini rerank request",
		zap.Int("candidates", len(docs)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini rerank response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, r.maxLogLen)),
	)

	scores, err := parseRerankResponse(raw)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		if _, ok := scores[doc.ID]; !ok {
			return nil, fmt.Errorf("rerank response is missing a score for %s", doc.ID)
		}
	}

	return scores, nil
}

func buildRerankPrompt(query string, docs []ai.Document) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("query must not be empty")
	}

	// Candidates are listed in id order so the prompt is identical for
	// identical inputs regardless of upstream ordering.
	sorted := make([]ai.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].ID < sorted[b].ID })

	type promptDoc struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	payload := make([]promptDoc, 0, len(sorted))
	for _, doc := range sorted {
		payload = append(payload, promptDoc{
			ID:          doc.ID,
			Name:        doc.Name,
			Description: truncateRunes(doc.Description, maxDescriptionRunes),
		})
	}

	docsJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal rerank candidates: %w", err)
	}

	var b strings.Builder
	b.WriteString("You grade standardized test assessments for relevance to a hiring query.\n")
	b.WriteString("Score each assessment between 0.0 (irrelevant) and 1.0 (perfect match), judging the query and the assessment text together.\n\n")
	b.WriteString("Query:\n")
	b.WriteString(query)
	b.WriteString("\n\nAssessments:\n")
	b.Write(docsJSON)
	b.WriteString("\n\nRespond with only a JSON array, one entry per assessment, ")
	b.WriteString(`each shaped as {"id": "...", "score": 0.0}. Include every id exactly once.`)

	return b.String(), nil
}

func parseRerankResponse(raw string) (map[string]float64, error) {
	cleaned := extractJSON(raw)

	var entries []struct {
		ID    string `json:"id"`
		Score any    `json:"score"`
	}
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("parse rerank response: %w", err)
	}

	scores := make(map[string]float64, len(entries))
	for _, entry := range entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("rerank response contains an entry without id")
		}

		score := coerceFloat(entry.Score)
		if math.IsNaN(score) {
			return nil, fmt.Errorf("rerank response has no numeric score for %s", id)
		}

		scores[id] = math.Min(math.Max(score, 0), 1)
	}

	return scores, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit])
}
