package provider

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/ragline/ragline/internal/config"
)

// LazyEmbedder implements document.Embedder over a provider chosen from
// configuration. The backing provider is constructed on first use so server
// startup never blocks on model loading, and an initialization failure is
// remembered rather than retried on every call.
type LazyEmbedder struct {
	cfg    config.AppConfig
	logger *slog.Logger

	once     sync.Once
	embedder Embedder
	initErr  error
}

// NewLazyEmbedder creates a LazyEmbedder.
func NewLazyEmbedder(cfg config.AppConfig, logger *slog.Logger) *LazyEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LazyEmbedder{cfg: cfg, logger: logger}
}

func (l *LazyEmbedder) initialize() {
	embedding := l.cfg.Embedding()

	if embedding.IsRemote() {
		l.logger.Info("using remote embedding provider",
			"base_url", embedding.BaseURL(),
			"model", embedding.Model(),
		)
		l.embedder = NewOpenAIEmbedding(OpenAIConfig{
			APIKey:   embedding.APIKey(),
			BaseURL:  embedding.BaseURL(),
			Model:    embedding.Model(),
			CacheDir: filepath.Join(l.cfg.DataDir(), "http-cache"),
		})
		return
	}

	local := NewHugotEmbedding(l.cfg.EmbedCacheDir(), embedding.Model(), embedding.FallbackModel())
	if !local.Available() {
		l.initErr = fmt.Errorf(
			"no embedding provider available: no remote endpoint configured and no local model found in %s",
			l.cfg.EmbedCacheDir(),
		)
		return
	}
	l.logger.Info("using local embedding provider", "model_dir", l.cfg.EmbedCacheDir())
	l.embedder = local
}

// Embed maps one text to its embedding vector.
func (l *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	l.once.Do(l.initialize)
	if l.initErr != nil {
		return nil, l.initErr
	}

	resp, err := l.embedder.Embed(ctx, NewEmbeddingRequest([]string{text}))
	if err != nil {
		return nil, err
	}

	embeddings := resp.Embeddings()
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("embed: expected 1 vector, got %d", len(embeddings))
	}
	return embeddings[0], nil
}

// Close releases the backing provider, if one was initialized.
func (l *LazyEmbedder) Close() error {
	if l.embedder != nil {
		return l.embedder.Close()
	}
	return nil
}
