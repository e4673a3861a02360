package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ragline/ragline"
	"github.com/ragline/ragline/infrastructure/api"
	"github.com/ragline/ragline/internal/config"
	"github.com/ragline/ragline/internal/log"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                 Server host to bind to (default: 0.0.0.0)
  PORT                 Server port to listen on (default: 8080)
  DATA_DIR             Data directory (default: ~/.ragline)
  DB_URL               Database URL (default: sqlite:///{data_dir}/ragline.db)
  MODEL_DIR            Directory scanned recursively for .gguf files
  LOG_LEVEL            Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT           Log format: pretty, json (default: pretty)
  ALLOWED_ORIGINS      Comma-separated list of CORS origins
  API_KEYS             Comma-separated keys required on mutating endpoints
  CHUNK_SIZE           Chunk window size in characters (default: 800)
  CHUNK_OVERLAP        Chunk window overlap in characters (default: 150)
  TOP_K                Default retrieval depth (default: 5)
  PROFILES_PATH        Optional model profiles YAML path

  EMBEDDING_*          Embedding provider configuration
    BASE_URL           OpenAI-compatible endpoint; empty uses local models
    API_KEY            API key for the remote endpoint
    MODEL              Embedding model (default: all-MiniLM-L6-v2)
    FALLBACK_MODEL     Fallback model (default: bge-large-en-v1.5)

  GGUF_*               Inference runtime configuration
    SERVER_BIN         llama-server executable (default: llama-server)
    N_CTX              Context window size (default: 4096)
    N_BATCH            Prompt batch size (default: 512)
    N_THREADS          Inference threads (default: cpu count - 1)
    N_GPU_LAYERS       Layers offloaded to GPU (default: -1, all)
    TEMPERATURE        Sampling temperature (default: 0.2)
    TOP_P              Nucleus sampling threshold (default: 0.95)
    MAX_TOKENS         Maximum generated tokens (default: 512)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Flags take precedence over env vars.
	cfg = applyServeOverrides(cfg, host, port)

	logger := log.NewLogger(cfg)
	slogger := logger.Slog()

	slogger.Info("starting ragline",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()),
		slog.String("model_dir", cfg.ModelDir()),
	)

	client, err := ragline.New(
		ragline.WithConfig(cfg),
		ragline.WithLogger(slogger),
	)
	if err != nil {
		return fmt.Errorf("create ragline client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close ragline client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client, cfg.APIKeys())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slogger.Info("shutting down server")
		cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			slogger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	if err := apiServer.ListenAndServe(cfg.Addr()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
