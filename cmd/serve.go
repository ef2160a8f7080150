package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spigell/assessment-recommender/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultListenAddress = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation API over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", defaultListenAddress, "listen address for the http server")
	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, logger := mustConfigWithLogger()

	logger.Info("starting the assessment-recommender", zap.String("version", version))

	engine, data, err := buildEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the recommendation engine", zap.Error(err))
	}

	// Viper resolves the precedence: explicit flag, then config file,
	// then the flag default.
	addr := viper.GetString("server.address")
	if addr == "" {
		addr = defaultListenAddress
	}

	srv := server.New(addr, engine, data, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}
