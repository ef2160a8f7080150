package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/assessment-recommender/internal/ai"
	"github.com/spigell/assessment-recommender/internal/index"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Default candidate limits per retriever, sized for reranker headroom.
const (
	DefaultLexicalLimit  = 40
	DefaultSemanticLimit = 40

	defaultRetrieverTimeout = 10 * time.Second
	defaultRerankTimeout    = 30 * time.Second
)

// Config tunes the recommendation pipeline.
type Config struct {
	LexicalLimit     int
	SemanticLimit    int
	Fusion           FusionConfig
	StrictDuration   bool
	RetrieverTimeout time.Duration
	RerankTimeout    time.Duration
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		LexicalLimit:  DefaultLexicalLimit,
		SemanticLimit: DefaultSemanticLimit,
		Fusion: FusionConfig{
			LexicalWeight:  DefaultLexicalWeight,
			SemanticWeight: DefaultSemanticWeight,
			Limit:          DefaultFuseLimit,
		},
		RetrieverTimeout: defaultRetrieverTimeout,
		RerankTimeout:    defaultRerankTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LexicalLimit <= 0 {
		c.LexicalLimit = d.LexicalLimit
	}
	if c.SemanticLimit <= 0 {
		c.SemanticLimit = d.SemanticLimit
	}
	if c.Fusion.LexicalWeight <= 0 && c.Fusion.SemanticWeight <= 0 {
		c.Fusion.LexicalWeight = d.Fusion.LexicalWeight
		c.Fusion.SemanticWeight = d.Fusion.SemanticWeight
	}
	if c.Fusion.Limit <= 0 {
		c.Fusion.Limit = d.Fusion.Limit
	}
	if c.RetrieverTimeout <= 0 {
		c.RetrieverTimeout = d.RetrieverTimeout
	}
	if c.RerankTimeout <= 0 {
		c.RerankTimeout = d.RerankTimeout
	}
	return c
}

// Engine runs the fixed pipeline: lexical and semantic retrieval in
// parallel, fusion, reranking, hard-constraint filtering and balanced
// top-k selection. All shared state (dataset, models) is read-only, so one
// engine serves concurrent requests.
type Engine struct {
	data     *Holder
	embedder ai.Embedder
	reranker ai.Reranker
	cfg      Config
	logger   *zap.Logger
}

// New creates an engine reading the current dataset from holder.
func New(data *Holder, embedder ai.Embedder, reranker ai.Reranker, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		data:     data,
		embedder: embedder,
		reranker: reranker,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

// Ready reports whether a catalog and its indices are loaded.
func (e *Engine) Ready() bool {
	data := e.data.Get()
	return data != nil && data.Snapshot.Len() > 0
}

// Recommend runs one request through the pipeline and returns the ranked
// list. A single retriever failure degrades the outcome instead of failing
// it; reranker failure and invalid input fail the request.
func (e *Engine) Recommend(ctx context.Context, query string, constraints Constraints) (*Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query text is required", ErrInvalidConstraints)
	}
	if err := constraints.Validate(); err != nil {
		return nil, err
	}

	data := e.data.Get()
	if data == nil || data.Snapshot.Len() == 0 {
		return nil, fmt.Errorf("%w: no catalog loaded", ErrIndexUnavailable)
	}

	topK := constraints.EffectiveTopK()

	lex, sem, degraded, err := e.retrieve(ctx, data, query)
	if err != nil {
		return nil, err
	}

	candidates := fuse(lex, sem, data.Snapshot, e.cfg.Fusion)
	e.logger.Debug("fused candidates",
		zap.Int("lexical", len(lex)),
		zap.Int("semantic", len(sem)),
		zap.Int("fused", len(candidates)),
	)

	if len(candidates) == 0 {
		e.logger.Info("no candidates retrieved", zap.String("query", query))
		return &Outcome{Results: []Result{}, Degraded: degraded, LowConfidence: true}, nil
	}

	if err := e.rerank(ctx, query, candidates); err != nil {
		return nil, err
	}

	candidates = e.runFilters(candidates, constraints)
	selected := selectBalanced(candidates, topK, constraints.CategoryRatio)

	results := make([]Result, len(selected))
	for i, cand := range selected {
		results[i] = Result{
			ID:    cand.Item.ID,
			Name:  cand.Item.Name,
			URL:   cand.Item.URL,
			Score: cand.Rerank,
			Rank:  i + 1,
		}
	}

	outcome := &Outcome{
		Results:       results,
		Degraded:      degraded,
		LowConfidence: len(results) < MinTopK,
	}

	e.logger.Info("recommendation complete",
		zap.Int("results", len(results)),
		zap.Bool("degraded", outcome.Degraded),
		zap.Bool("low_confidence", outcome.LowConfidence),
	)

	return outcome, nil
}

// retrieve runs both retrievers in parallel. The retrievers share no
// mutable state; fusion waits for both to finish or fail. A failure on one
// side degrades its contribution to empty, both sides failing is fatal.
func (e *Engine) retrieve(ctx context.Context, data *Dataset, query string) (lex, sem []index.Hit, degraded bool, err error) {
	var lexErr, semErr error

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lex, lexErr = e.retrieveLexical(data, query)
		return nil
	})
	g.Go(func() error {
		sem, semErr = e.retrieveSemantic(gctx, data, query)
		return nil
	})
	g.Wait()

	if lexErr != nil && semErr != nil {
		return nil, nil, false, fmt.Errorf("both retrievers failed: %w", errors.Join(lexErr, semErr))
	}

	if lexErr != nil {
		e.logger.Warn("lexical retriever failed, proceeding degraded", zap.Error(lexErr))
	}
	if semErr != nil {
		e.logger.Warn("semantic retriever failed, proceeding degraded", zap.Error(semErr))
	}

	return lex, sem, lexErr != nil || semErr != nil, nil
}

func (e *Engine) retrieveLexical(data *Dataset, query string) ([]index.Hit, error) {
	if data.Lexical == nil {
		return nil, fmt.Errorf("%w: lexical index not built", ErrIndexUnavailable)
	}
	return data.Lexical.Search(query, e.cfg.LexicalLimit), nil
}

func (e *Engine) retrieveSemantic(ctx context.Context, data *Dataset, query string) ([]index.Hit, error) {
	if data.Vector == nil {
		return nil, fmt.Errorf("%w: vector index not built", ErrIndexUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RetrieverTimeout)
	defer cancel()

	vector, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	hits, err := data.Vector.Search(vector, e.cfg.SemanticLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	return hits, nil
}

// rerank rescores the fused set in one batched call and reorders it. The
// fused score is superseded; it is kept on the candidate for debugging.
func (e *Engine) rerank(ctx context.Context, query string, candidates []*Candidate) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RerankTimeout)
	defer cancel()

	docs := make([]ai.Document, len(candidates))
	for i, cand := range candidates {
		docs[i] = ai.Document{
			ID:          cand.Item.ID,
			Name:        cand.Item.Name,
			Description: cand.Item.Description,
		}
	}

	scores, err := e.reranker.Rerank(ctx, query, docs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRerankerUnavailable, err)
	}

	for _, cand := range candidates {
		cand.Rerank = scores[cand.Item.ID]
	}
	sortByRerank(candidates)

	return nil
}

func (e *Engine) runFilters(candidates []*Candidate, constraints Constraints) []*Candidate {
	filters := []Filter{
		NewBundleFilter(),
		NewDurationFilter(constraints.MaxDurationMinutes, e.cfg.StrictDuration),
	}

	for _, filter := range filters {
		var step Step
		candidates, step = filter.Apply(candidates)
		e.logger.Debug("filter step",
			zap.String("name", filter.Name()),
			zap.Int("initial", step.Initial),
			zap.Int("dropped", step.Dropped),
			zap.Int("left", step.Left),
		)
	}

	return candidates
}
