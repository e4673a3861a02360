package ragline

import (
	"log/slog"

	"github.com/ragline/ragline/domain/document"
	"github.com/ragline/ragline/infrastructure/runtime"
	"github.com/ragline/ragline/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	cfg      config.AppConfig
	logger   *slog.Logger
	parser   document.Parser
	embedder document.Embedder
	factory  runtime.Factory
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		cfg: config.NewAppConfig(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig replaces the default application configuration.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.cfg = cfg
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithParser sets a custom document parser. If not specified, a pdfium
// backed PDF parser is created.
func WithParser(p document.Parser) Option {
	return func(c *clientConfig) {
		c.parser = p
	}
}

// WithEmbedder sets a custom embedding provider. If not specified, a
// lazily-initialized provider is chosen from the configuration.
func WithEmbedder(e document.Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithRuntimeFactory sets the factory used to start model runtimes.
// Defaults to a llama-server subprocess factory. Replacing it lets tests
// run without spawning a model process.
func WithRuntimeFactory(f runtime.Factory) Option {
	return func(c *clientConfig) {
		c.factory = f
	}
}
