package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/assessment-recommender/internal/recommend"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [query]",
	Short: "Run one recommendation query and print the results",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runRecommend(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().IntP("top-k", "k", 0, "number of results to return (clamped to the service range)")
	recommendCmd.Flags().Int("max-duration", 0, "drop assessments longer than this many minutes")
	recommendCmd.Flags().Float64("category-ratio", -1, "preferred share of knowledge/skill assessments, between 0 and 1")
	recommendCmd.Flags().Bool("json-output", false, "print results as json")
}

func runRecommend(cmd *cobra.Command, query string) {
	ctx := context.Background()

	config, logger := mustConfigWithLogger()

	engine, _, err := buildEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the recommendation engine", zap.Error(err))
	}

	constraints := recommend.Constraints{}
	if topK, _ := cmd.Flags().GetInt("top-k"); topK > 0 {
		constraints.TopK = topK
	}
	if maxDuration, _ := cmd.Flags().GetInt("max-duration"); maxDuration > 0 {
		constraints.MaxDurationMinutes = &maxDuration
	}
	if ratio, _ := cmd.Flags().GetFloat64("category-ratio"); ratio >= 0 {
		constraints.CategoryRatio = &ratio
	}

	outcome, err := engine.Recommend(ctx, query, constraints)
	if err != nil {
		logger.Fatal("recommendation failed", zap.Error(err))
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json-output"); jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(outcome); err != nil {
			logger.Fatal("encoding results", zap.Error(err))
		}
		return
	}

	if len(outcome.Results) == 0 {
		fmt.Println("no assessments matched the query")
		return
	}

	for _, result := range outcome.Results {
		fmt.Printf("%2d. %-60s %.3f  %s\n", result.Rank, result.Name, result.Score, result.URL)
	}
	if outcome.Degraded {
		fmt.Println("note: one retriever was unavailable, results may be partial")
	}
	if outcome.LowConfidence {
		fmt.Println("note: fewer results than expected, confidence is low")
	}
}
