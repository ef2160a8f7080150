package cmd

import (
	"context"
	"fmt"

	"github.com/spigell/assessment-recommender/internal/evaluation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var evalCmd = &cobra.Command{
	Use:   "eval [labeled-queries.json]",
	Short: "Compute Mean Recall@K over a labeled query set",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		evaluate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().IntP("k", "k", evaluation.DefaultK, "evaluation cutoff")
}

func evaluate(cmd *cobra.Command, path string) {
	ctx := context.Background()

	config, logger := mustConfigWithLogger()

	queries, err := evaluation.LoadQueries(path)
	if err != nil {
		logger.Fatal("loading labeled queries", zap.Error(err))
	}

	engine, _, err := buildEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the recommendation engine", zap.Error(err))
	}

	k, _ := cmd.Flags().GetInt("k")

	report, err := evaluation.Run(ctx, engine, queries, k, logger)
	if err != nil {
		logger.Fatal("evaluation failed", zap.Error(err))
	}

	for _, result := range report.PerQuery {
		fmt.Printf("recall@%d %.3f  (%d returned, %d relevant)  %s\n",
			report.K, result.Recall, result.Returned, result.Relevant, result.Query)
	}
	if report.Skipped > 0 {
		fmt.Printf("skipped %d queries without relevant items\n", report.Skipped)
	}
	fmt.Printf("mean recall@%d over %d queries: %.4f\n",
		report.K, len(report.PerQuery), report.MeanRecall)
}
