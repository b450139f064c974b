package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <index> <file.jsonl>",
	Short: "Load documents from a JSON Lines file",
	Long: `Reads one JSON document per line and stores it in the index.
The index is created first when it does not exist.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	index, path := args[0], args[1]

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ctx := context.Background()
	client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.Indices().Ensure(ctx, index); err != nil {
		return fmt.Errorf("ensure index %s: %w", index, err)
	}

	start := time.Now()
	n, err := client.Documents().Ingest(ctx, index, f)
	logger.Info("ingest finished",
		zap.String("index", index),
		zap.String("file", path),
		zap.Int("documents", n),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d documents stored in %s\n", n, index)
	return nil
}
