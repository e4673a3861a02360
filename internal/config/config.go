// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultLogLevel        = "INFO"
	DefaultChunkSize       = 800
	DefaultChunkOverlap    = 150
	DefaultTopK            = 5
	DefaultTemperature     = 0.2
	DefaultTopP            = 0.95
	DefaultMaxTokens       = 512
	DefaultContextSize     = 4096
	DefaultBatchSize       = 512
	DefaultModelSubdir     = "models"
	DefaultUploadSubdir    = "uploads"
	DefaultEmbedCacheSubdir = "embed"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// EmbeddingConfig configures the embedding provider. When BaseURL is set an
// OpenAI-compatible endpoint is used; otherwise embeddings are computed locally
// from model files under the embed cache directory.
type EmbeddingConfig struct {
	baseURL       string
	apiKey        string
	model         string
	fallbackModel string
}

// NewEmbeddingConfig creates an EmbeddingConfig with defaults.
func NewEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		model:         "all-MiniLM-L6-v2",
		fallbackModel: "bge-large-en-v1.5",
	}
}

// BaseURL returns the OpenAI-compatible endpoint base URL, if any.
func (e EmbeddingConfig) BaseURL() string { return e.baseURL }

// APIKey returns the API key for the remote endpoint.
func (e EmbeddingConfig) APIKey() string { return e.apiKey }

// Model returns the primary embedding model identifier.
func (e EmbeddingConfig) Model() string { return e.model }

// FallbackModel returns the embedding model used when the primary is
// unavailable. The fallback is attempted once per process, not per call.
func (e EmbeddingConfig) FallbackModel() string { return e.fallbackModel }

// IsRemote reports whether a remote embedding endpoint is configured.
func (e EmbeddingConfig) IsRemote() bool { return e.baseURL != "" }

// SamplingConfig holds the generation sampling parameters passed to the
// inference runtime.
type SamplingConfig struct {
	temperature float64
	topP        float64
	maxTokens   int
}

// NewSamplingConfig creates a SamplingConfig with defaults.
func NewSamplingConfig() SamplingConfig {
	return SamplingConfig{
		temperature: DefaultTemperature,
		topP:        DefaultTopP,
		maxTokens:   DefaultMaxTokens,
	}
}

// Temperature returns the sampling temperature.
func (s SamplingConfig) Temperature() float64 { return s.temperature }

// TopP returns the nucleus sampling threshold.
func (s SamplingConfig) TopP() float64 { return s.topP }

// MaxTokens returns the maximum number of generated tokens.
func (s SamplingConfig) MaxTokens() int { return s.maxTokens }

// RuntimeConfig configures the local GGUF inference runtime.
type RuntimeConfig struct {
	serverBin   string
	contextSize int
	batchSize   int
	threads     int
	gpuLayers   int
}

// NewRuntimeConfig creates a RuntimeConfig with defaults.
func NewRuntimeConfig() RuntimeConfig {
	threads := runtime.NumCPU() - 1
	if threads < 1 {
		threads = 1
	}
	return RuntimeConfig{
		serverBin:   "llama-server",
		contextSize: DefaultContextSize,
		batchSize:   DefaultBatchSize,
		threads:     threads,
		gpuLayers:   -1,
	}
}

// ServerBin returns the llama-server executable name or path.
func (r RuntimeConfig) ServerBin() string { return r.serverBin }

// ContextSize returns the model context window size.
func (r RuntimeConfig) ContextSize() int { return r.contextSize }

// BatchSize returns the prompt processing batch size.
func (r RuntimeConfig) BatchSize() int { return r.batchSize }

// Threads returns the number of inference threads.
func (r RuntimeConfig) Threads() int { return r.threads }

// GPULayers returns the number of layers offloaded to the GPU (-1 for all).
func (r RuntimeConfig) GPULayers() int { return r.gpuLayers }

// AppConfig holds the main application configuration.
type AppConfig struct {
	host           string
	port           int
	dataDir        string
	dbURL          string
	modelDir       string
	logLevel       string
	logFormat      LogFormat
	chunkSize      int
	chunkOverlap   int
	topK           int
	allowedOrigins []string
	apiKeys        []string
	embedding      EmbeddingConfig
	sampling       SamplingConfig
	runtime        RuntimeConfig
	profilesPath   string
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ragline"
	}
	return filepath.Join(home, ".ragline")
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:         DefaultHost,
		port:         DefaultPort,
		dataDir:      dataDir,
		dbURL:        "sqlite:///" + filepath.Join(dataDir, "ragline.db"),
		modelDir:     filepath.Join(dataDir, DefaultModelSubdir),
		logLevel:     DefaultLogLevel,
		logFormat:    LogFormatPretty,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		topK:         DefaultTopK,
		embedding:    NewEmbeddingConfig(),
		sampling:     NewSamplingConfig(),
		runtime:      NewRuntimeConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// ModelDir returns the root directory scanned for GGUF model files.
func (c AppConfig) ModelDir() string { return c.modelDir }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// ChunkSize returns the chunk window size in characters.
func (c AppConfig) ChunkSize() int { return c.chunkSize }

// ChunkOverlap returns the chunk window overlap in characters.
func (c AppConfig) ChunkOverlap() int { return c.chunkOverlap }

// TopK returns the default number of retrieved chunks per query.
func (c AppConfig) TopK() int { return c.topK }

// AllowedOrigins returns the CORS allowed origins.
func (c AppConfig) AllowedOrigins() []string {
	origins := make([]string, len(c.allowedOrigins))
	copy(origins, c.allowedOrigins)
	return origins
}

// APIKeys returns the keys accepted on mutating API endpoints. Empty means
// write protection is disabled.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// Embedding returns the embedding provider config.
func (c AppConfig) Embedding() EmbeddingConfig { return c.embedding }

// Sampling returns the generation sampling config.
func (c AppConfig) Sampling() SamplingConfig { return c.sampling }

// Runtime returns the inference runtime config.
func (c AppConfig) Runtime() RuntimeConfig { return c.runtime }

// ProfilesPath returns the optional model profiles YAML path.
func (c AppConfig) ProfilesPath() string { return c.profilesPath }

// UploadDir returns the directory where uploaded documents are archived.
func (c AppConfig) UploadDir() string {
	return filepath.Join(c.dataDir, DefaultUploadSubdir)
}

// EmbedCacheDir returns the directory holding local embedding model files.
func (c AppConfig) EmbedCacheDir() string {
	return filepath.Join(c.dataDir, DefaultEmbedCacheSubdir)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// EnsureUploadDir creates the upload directory if it doesn't exist.
func (c AppConfig) EnsureUploadDir() error {
	return os.MkdirAll(c.UploadDir(), 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory and rebases the default database and
// model paths onto it.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		c.dbURL = "sqlite:///" + filepath.Join(dir, "ragline.db")
		c.modelDir = filepath.Join(dir, DefaultModelSubdir)
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithModelDir sets the GGUF model root directory.
func WithModelDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.modelDir = dir }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithChunking sets the chunk window size and overlap.
func WithChunking(size, overlap int) AppConfigOption {
	return func(c *AppConfig) {
		if size > 0 && overlap >= 0 && overlap < size {
			c.chunkSize = size
			c.chunkOverlap = overlap
		}
	}
}

// WithTopK sets the default retrieval depth.
func WithTopK(k int) AppConfigOption {
	return func(c *AppConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithAllowedOrigins sets the CORS allowed origins.
func WithAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.allowedOrigins = make([]string, len(origins))
		copy(c.allowedOrigins, origins)
	}
}

// WithAPIKeys sets the keys accepted on mutating API endpoints.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// WithEmbeddingConfig sets the embedding provider config.
func WithEmbeddingConfig(e EmbeddingConfig) AppConfigOption {
	return func(c *AppConfig) { c.embedding = e }
}

// WithSamplingConfig sets the generation sampling config.
func WithSamplingConfig(s SamplingConfig) AppConfigOption {
	return func(c *AppConfig) { c.sampling = s }
}

// WithRuntimeConfig sets the inference runtime config.
func WithRuntimeConfig(r RuntimeConfig) AppConfigOption {
	return func(c *AppConfig) { c.runtime = r }
}

// WithProfilesPath sets the model profiles YAML path.
func WithProfilesPath(path string) AppConfigOption {
	return func(c *AppConfig) { c.profilesPath = path }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
