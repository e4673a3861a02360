package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ragline/ragline"
	"github.com/ragline/ragline/internal/log"
	"github.com/spf13/cobra"
)

func ingestCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest PDF documents into the local store",
		Long: `Ingest one or more PDF files into the local document store.

Each file is parsed, chunked, embedded, and indexed for retrieval. Files
whose content is already in the store are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, envFile, args)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runIngest(cmd *cobra.Command, envFile string, paths []string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.NewLogger(cfg)

	client, err := ragline.New(
		ragline.WithConfig(cfg),
		ragline.WithLogger(logger.Slog()),
	)
	if err != nil {
		return fmt.Errorf("create ragline client: %w", err)
	}
	defer func() { _ = client.Close() }()

	ctx := cmd.Context()
	failed := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed++
			continue
		}

		outcome, err := client.Ingest.Ingest(ctx, filepath.Base(path), data)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed++
			continue
		}

		if outcome.AlreadyExists() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: already ingested (document %d)\n", path, outcome.Document().ID())
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: document %d, %d chunks\n", path, outcome.Document().ID(), outcome.ChunksInserted())
	}

	if failed == len(paths) {
		return fmt.Errorf("all %d files failed to ingest", failed)
	}
	if failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d files failed\n", failed, len(paths))
	}
	return nil
}
