package cmd

import (
	"context"

	"github.com/spigell/assessment-recommender/internal/catalog"
	"github.com/spigell/assessment-recommender/internal/scraper"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var crawlPrompt = promptui.Select{
	Label: "A catalog already exists and will be replaced. Proceed?",
	Items: []string{PromptYes, PromptNo},
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the SHL product catalog into the local database",
	Run: func(cmd *cobra.Command, _ []string) {
		crawl(cmd)
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before replacing an existing catalog")
}

func crawl(cmd *cobra.Command) {
	ctx := context.Background()

	config, logger := mustConfigWithLogger()

	store, err := catalog.OpenStore(config.CatalogPath)
	if err != nil {
		logger.Fatal("opening catalog store", zap.Error(err))
	}
	defer store.Close()

	autoApprove, _ := cmd.Flags().GetBool("yes")

	existing, err := store.Version(ctx)
	switch {
	case err != nil:
		logger.Fatal("reading catalog version", zap.Error(err))
	case existing == "":
		// Nothing to replace.
	case !autoApprove:
		logger.Info("catalog already present", zap.String("version", existing))
		_, answer, err := crawlPrompt.Run()
		if err != nil {
			logger.Fatal("prompt failed", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("keeping the existing catalog")
			return
		}
	}

	baseURL := ""
	concurrency := 0
	if config.Scrape != nil {
		baseURL = config.Scrape.BaseURL
		concurrency = config.Scrape.Concurrency
	}

	items, err := scraper.New(baseURL, concurrency, logger).Crawl(ctx)
	if err != nil {
		logger.Fatal("crawling the catalog", zap.Error(err))
	}

	version, err := store.Replace(ctx, items)
	if err != nil {
		logger.Fatal("storing the catalog", zap.Error(err))
	}

	logger.Info("catalog stored",
		zap.String("version", version),
		zap.Int("items", len(items)),
		zap.String("hint", "run the 'index' command to embed the new catalog"),
	)
}
