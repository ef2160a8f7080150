package cmd

import (
	"context"

	"github.com/spigell/assessment-recommender/internal/catalog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// embedBatchSize keeps single embedding requests well under the API
// payload limits.
const embedBatchSize = 32

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the stored catalog for semantic retrieval",
	Run: func(cmd *cobra.Command, _ []string) {
		buildIndex(cmd)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func buildIndex(_ *cobra.Command) {
	ctx := context.Background()

	config, logger := mustConfigWithLogger()

	generator, _, err := newGenerator(ctx, config, logger)
	if err != nil {
		logger.Fatal("creating gemini client", zap.Error(err))
	}

	store, err := catalog.OpenStore(config.CatalogPath)
	if err != nil {
		logger.Fatal("opening catalog store", zap.Error(err))
	}
	defer store.Close()

	snapshot, err := store.LoadSnapshot(ctx)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}

	items := snapshot.Items()
	logger.Info("embedding catalog",
		zap.String("version", snapshot.Version()),
		zap.Int("items", len(items)),
	)

	embedded := 0
	for start := 0; start < len(items); start += embedBatchSize {
		end := min(start+embedBatchSize, len(items))
		batch := items[start:end]

		texts := make([]string, len(batch))
		for i, item := range batch {
			texts[i] = item.IndexText()
		}

		vectors, err := generator.EmbedTexts(ctx, texts)
		if err != nil {
			logger.Fatal("embedding batch failed",
				zap.Int("start", start), zap.Error(err))
		}

		for i, vector := range vectors {
			if err := store.SaveEmbedding(ctx, batch[i].ID, vector); err != nil {
				logger.Fatal("storing embedding failed",
					zap.String("item_id", batch[i].ID), zap.Error(err))
			}
		}

		embedded += len(batch)
		logger.Debug("embedded batch", zap.Int("done", embedded), zap.Int("total", len(items)))
	}

	logger.Info("catalog embedded", zap.Int("items", embedded))
}
