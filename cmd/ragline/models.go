package main

import (
	"fmt"

	"github.com/ragline/ragline"
	"github.com/ragline/ragline/internal/log"
	"github.com/spf13/cobra"
)

func modelsCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List GGUF models discovered under the model directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(cmd, envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runModels(cmd *cobra.Command, envFile string) error {
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

	infos, err := client.Models.List()
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	if len(infos) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no .gguf files found under %s\n", cfg.ModelDir())
		return nil
	}

	for _, m := range infos {
		fmt.Fprintf(cmd.OutOrStdout(), "%-30s %10d bytes  %s\n", m.Key(), m.SizeBytes(), m.Path())
	}
	return nil
}
