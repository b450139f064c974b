package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage document indices",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create <index>",
	Short: "Create a document index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClientIndex(cmd, args[0], func(ctx context.Context, s indexService) error {
			created, err := s.Ensure(ctx, args[0])
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "index %s created\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "index %s already exists\n", args[0])
			}
			return nil
		})
	},
}

var indexDropCmd = &cobra.Command{
	Use:   "drop <index>",
	Short: "Drop a document index, keeping its documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClientIndex(cmd, args[0], func(ctx context.Context, s indexService) error {
			if err := s.Drop(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "index %s dropped\n", args[0])
			return nil
		})
	},
}

var indexCountCmd = &cobra.Command{
	Use:   "count <index>",
	Short: "Count the documents of an index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClientIndex(cmd, args[0], func(ctx context.Context, s indexService) error {
			n, err := s.Count(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		})
	},
}

func init() {
	indexCmd.AddCommand(indexCreateCmd, indexDropCmd, indexCountCmd)
	rootCmd.AddCommand(indexCmd)
}

type indexService interface {
	Ensure(ctx context.Context, index string) (bool, error)
	Drop(ctx context.Context, index string) error
	Count(ctx context.Context, index string) (int, error)
}

func withClientIndex(cmd *cobra.Command, index string, fn func(context.Context, indexService) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := fn(ctx, client.Indices()); err != nil {
		logger.Error("index command failed", zap.String("index", index), zap.Error(err))
		fmt.Fprintf(os.Stderr, "index %s: %v\n", index, err)
		return err
	}
	return nil
}
