package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch"
	"github.com/kailas-cloud/docsearch/internal/config"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
)

var (
	env      string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "docsearch",
	Short: "Search, filter and highlight documents indexed in Redis",
	Long: `docsearch indexes documents in Redis and searches them with a
Lucene-like query language, filter facets and starred documents.
Configuration is read from config/<env>.yaml.`,
	SilenceUsage: true,
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "configuration environment (local, dev, prod)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override: debug, info, warn, error")
}

// setup loads the configuration and builds the logger.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

func connect(ctx context.Context, cfg config.Config, logger *zap.Logger) (*docsearch.Client, error) {
	opts := append(docsearch.FromConfig(cfg), docsearch.WithLogger(logger))
	client, err := docsearch.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("connected to database", zap.Strings("addrs", cfg.Database.Addrs))
	return client, nil
}
