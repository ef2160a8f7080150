package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spigell/assessment-recommender/internal/ai/gemini"
	"github.com/spigell/assessment-recommender/internal/catalog"
	"github.com/spigell/assessment-recommender/internal/index"
	"github.com/spigell/assessment-recommender/internal/logger"
	"github.com/spigell/assessment-recommender/internal/recommend"
	"github.com/spigell/assessment-recommender/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// newGenerator builds the Gemini client from the config and the key
// material it points at.
func newGenerator(ctx context.Context, config *Config, logger *zap.Logger) (*gemini.Generator, *GeminiConfig, error) {
	gcfg := &GeminiConfig{}
	if config.AI != nil && config.AI.Gemini != nil {
		gcfg = config.AI.Gemini
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		File:  gcfg.APIKeyFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("loading gemini api key: %w (set GEMINI_API_KEY_FILE or ai.gemini.api-key in the config)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.EmbeddingModel, gcfg.MaxRetries, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return generator, gcfg, nil
}

// loadDataset opens the catalog store and builds both indices from it.
func loadDataset(ctx context.Context, config *Config, logger *zap.Logger) (*recommend.Holder, error) {
	store, err := catalog.OpenStore(config.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog store: %w", err)
	}
	defer store.Close()

	snapshot, err := store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	vectors, err := store.LoadEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading embeddings: %w", err)
	}

	dataset := &recommend.Dataset{
		Snapshot: snapshot,
		Lexical:  index.BuildLexical(snapshot),
	}

	if len(vectors) > 0 {
		dataset.Vector, err = index.NewVector(vectors)
		if err != nil {
			return nil, fmt.Errorf("building vector index: %w", err)
		}
	} else {
		logger.Warn("no embeddings stored, semantic retrieval will be degraded",
			zap.String("hint", "run the 'index' command to embed the catalog"))
	}

	logger.Info("catalog loaded",
		zap.String("version", snapshot.Version()),
		zap.Int("items", snapshot.Len()),
		zap.Int("embeddings", len(vectors)),
	)

	return recommend.NewHolder(dataset), nil
}

// engineConfig maps the file config onto the pipeline config.
func engineConfig(config *Config) recommend.Config {
	cfg := recommend.DefaultConfig()

	if r := config.Retrieval; r != nil {
		if r.LexicalWeight > 0 || r.SemanticWeight > 0 {
			cfg.Fusion.LexicalWeight = r.LexicalWeight
			cfg.Fusion.SemanticWeight = r.SemanticWeight
		}
		if r.LexicalLimit > 0 {
			cfg.LexicalLimit = r.LexicalLimit
		}
		if r.SemanticLimit > 0 {
			cfg.SemanticLimit = r.SemanticLimit
		}
		if r.FuseLimit > 0 {
			cfg.Fusion.Limit = r.FuseLimit
		}
	}
	if config.Filter != nil {
		cfg.StrictDuration = config.Filter.StrictDuration
	}

	return cfg
}

// buildEngine assembles the full pipeline for serve, recommend and eval.
func buildEngine(ctx context.Context, config *Config, logger *zap.Logger) (*recommend.Engine, *recommend.Holder, error) {
	generator, gcfg, err := newGenerator(ctx, config, logger)
	if err != nil {
		return nil, nil, err
	}

	data, err := loadDataset(ctx, config, logger)
	if err != nil {
		return nil, nil, err
	}

	engine := recommend.New(
		data,
		gemini.NewEmbedder(generator),
		gemini.NewReranker(generator, gcfg.MaxLogLength, logger),
		engineConfig(config),
		logger,
	)

	return engine, data, nil
}

func mustConfigWithLogger() (*Config, *zap.Logger) {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}
	if config.CatalogPath == "" {
		config.CatalogPath = viper.GetString("catalog-path")
	}

	return config, zlog
}
