package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "assessment-recommender"

	defaultCatalogPath = "assessments.db"
)

type Config struct {
	CatalogPath string           `mapstructure:"catalog-path"`
	Server      *ServerConfig    `mapstructure:"server"`
	Retrieval   *RetrievalConfig `mapstructure:"retrieval"`
	Filter      *FilterConfig    `mapstructure:"filter"`
	Scrape      *ScrapeConfig    `mapstructure:"scrape"`
	AI          *AIConfig        `mapstructure:"ai"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type RetrievalConfig struct {
	LexicalWeight  float64 `mapstructure:"lexical-weight"`
	SemanticWeight float64 `mapstructure:"semantic-weight"`
	LexicalLimit   int     `mapstructure:"lexical-limit"`
	SemanticLimit  int     `mapstructure:"semantic-limit"`
	FuseLimit      int     `mapstructure:"fuse-limit"`
}

type FilterConfig struct {
	StrictDuration bool `mapstructure:"strict-duration"`
}

type ScrapeConfig struct {
	BaseURL     string `mapstructure:"base-url"`
	Concurrency int    `mapstructure:"concurrency"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxRetries     int    `mapstructure:"max-retries"`
	MaxLogLength   int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "assessment-recommender serves SHL assessment recommendations for natural language hiring queries",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is assessment-recommender.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("catalog-path", defaultCatalogPath, "path to the sqlite catalog database")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("catalog-path", rootCmd.PersistentFlags().Lookup("catalog-path"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// A missing config file is fine, flags and env cover the defaults.
	// A present but broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}
	if config == nil {
		config = &Config{}
	}

	return config, nil
}
