// Package evaluation computes Mean Recall@K for the recommendation engine
// over labeled query/item pairs. The engine is treated as a black box and
// no catalog or index state is touched.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spigell/assessment-recommender/internal/recommend"
	"go.uber.org/zap"
)

// DefaultK is the fixed cutoff of an evaluation run.
const DefaultK = 10

// LabeledQuery pairs a query with the ids of its relevant catalog items.
type LabeledQuery struct {
	Query       string   `json:"query"`
	RelevantIDs []string `json:"relevant_ids"`
}

// Recommender is the system under test.
type Recommender interface {
	Recommend(ctx context.Context, query string, constraints recommend.Constraints) (*recommend.Outcome, error)
}

// QueryResult is the per-query breakdown of a run.
type QueryResult struct {
	Query    string
	Recall   float64
	Returned int
	Relevant int
}

// Report is the outcome of one evaluation run.
type Report struct {
	MeanRecall float64
	K          int
	PerQuery   []QueryResult
	// Skipped counts queries with no relevant items. Recall is undefined
	// for them, so they are excluded from the mean rather than scored.
	Skipped int
}

// Run evaluates the recommender on the labeled queries at cutoff k.
func Run(ctx context.Context, rec Recommender, queries []LabeledQuery, k int, logger *zap.Logger) (*Report, error) {
	if k <= 0 {
		k = DefaultK
	}

	report := &Report{K: k}
	sum := 0.0

	for _, labeled := range queries {
		if len(labeled.RelevantIDs) == 0 {
			report.Skipped++
			logger.Debug("skipping query without relevant items",
				zap.String("query", labeled.Query))
			continue
		}

		// RawTopK keeps the cutoff exact even outside the service clamp.
		outcome, err := rec.Recommend(ctx, labeled.Query, recommend.Constraints{
			TopK:    k,
			RawTopK: true,
		})
		if err != nil {
			return nil, fmt.Errorf("evaluate query %q: %w", labeled.Query, err)
		}

		recall := recallAtK(outcome.Results, labeled.RelevantIDs, k)
		sum += recall

		report.PerQuery = append(report.PerQuery, QueryResult{
			Query:    labeled.Query,
			Recall:   recall,
			Returned: len(outcome.Results),
			Relevant: len(labeled.RelevantIDs),
		})

		logger.Debug("evaluated query",
			zap.String("query", labeled.Query),
			zap.Float64("recall", recall),
		)
	}

	if len(report.PerQuery) > 0 {
		report.MeanRecall = sum / float64(len(report.PerQuery))
	}

	return report, nil
}

// recallAtK is the fraction of relevant items found in the top k results.
func recallAtK(results []recommend.Result, relevantIDs []string, k int) float64 {
	relevant := make(map[string]struct{}, len(relevantIDs))
	for _, id := range relevantIDs {
		relevant[id] = struct{}{}
	}

	found := 0
	for i, result := range results {
		if i == k {
			break
		}
		if _, ok := relevant[result.ID]; ok {
			found++
		}
	}

	return float64(found) / float64(len(relevant))
}

// LoadQueries reads labeled queries from a JSON file holding an array of
// {"query": ..., "relevant_ids": [...]} objects.
func LoadQueries(path string) ([]LabeledQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labeled queries: %w", err)
	}

	var queries []LabeledQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("parse labeled queries: %w", err)
	}

	return queries, nil
}
