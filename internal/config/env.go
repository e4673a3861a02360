// Package config provides application configuration.
package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.ragline
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/ragline.db
	DBURL string `envconfig:"DB_URL"`

	// ModelDir is the root directory scanned recursively for .gguf files.
	// Env: MODEL_DIR
	// Default: {data_dir}/models
	ModelDir string `envconfig:"MODEL_DIR"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// ChunkSize is the chunk window size in characters.
	// Env: CHUNK_SIZE (default: 800)
	ChunkSize int `envconfig:"CHUNK_SIZE" default:"800"`

	// ChunkOverlap is the chunk window overlap in characters.
	// Env: CHUNK_OVERLAP (default: 150)
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"150"`

	// TopK is the default number of retrieved chunks per query.
	// Env: TOP_K (default: 5)
	TopK int `envconfig:"TOP_K" default:"5"`

	// AllowedOrigins is a comma-separated list of CORS origins.
	// Env: ALLOWED_ORIGINS
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS"`

	// APIKeys is a comma-separated list of keys accepted on mutating API
	// endpoints. Empty disables write protection.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// ProfilesPath is the optional model profiles YAML path.
	// Env: PROFILES_PATH
	ProfilesPath string `envconfig:"PROFILES_PATH"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingEnv `envconfig:"EMBEDDING"`

	// Sampling configures generation sampling parameters.
	Sampling SamplingEnv `envconfig:"GGUF"`

	// Runtime configures the local inference runtime.
	Runtime RuntimeEnv `envconfig:"GGUF"`
}

// EmbeddingEnv holds environment configuration for the embedding provider.
type EmbeddingEnv struct {
	// BaseURL is an OpenAI-compatible endpoint; empty means local embeddings.
	// Env: EMBEDDING_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey is the API key for the remote endpoint.
	// Env: EMBEDDING_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Model is the primary embedding model identifier.
	// Env: EMBEDDING_MODEL (default: all-MiniLM-L6-v2)
	Model string `envconfig:"MODEL" default:"all-MiniLM-L6-v2"`

	// FallbackModel is tried once per process when the primary is unavailable.
	// Env: EMBEDDING_FALLBACK_MODEL (default: bge-large-en-v1.5)
	FallbackModel string `envconfig:"FALLBACK_MODEL" default:"bge-large-en-v1.5"`
}

// SamplingEnv holds environment configuration for generation sampling.
type SamplingEnv struct {
	// Temperature is the sampling temperature.
	// Env: GGUF_TEMPERATURE (default: 0.2)
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.2"`

	// TopP is the nucleus sampling threshold.
	// Env: GGUF_TOP_P (default: 0.95)
	TopP float64 `envconfig:"TOP_P" default:"0.95"`

	// MaxTokens is the maximum number of generated tokens.
	// Env: GGUF_MAX_TOKENS (default: 512)
	MaxTokens int `envconfig:"MAX_TOKENS" default:"512"`
}

// RuntimeEnv holds environment configuration for the inference runtime.
type RuntimeEnv struct {
	// ServerBin is the llama-server executable name or path.
	// Env: GGUF_SERVER_BIN (default: llama-server)
	ServerBin string `envconfig:"SERVER_BIN" default:"llama-server"`

	// ContextSize is the model context window size.
	// Env: GGUF_N_CTX (default: 4096)
	ContextSize int `envconfig:"N_CTX" default:"4096"`

	// BatchSize is the prompt processing batch size.
	// Env: GGUF_N_BATCH (default: 512)
	BatchSize int `envconfig:"N_BATCH" default:"512"`

	// Threads is the number of inference threads (0 = cpu count - 1).
	// Env: GGUF_N_THREADS
	Threads int `envconfig:"N_THREADS"`

	// GPULayers is the number of layers offloaded to the GPU.
	// Env: GGUF_N_GPU_LAYERS (default: -1)
	GPULayers int `envconfig:"N_GPU_LAYERS" default:"-1"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts environment configuration to an AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	opts := []AppConfigOption{
		WithHost(e.Host),
		WithPort(e.Port),
		WithLogLevel(e.LogLevel),
		WithLogFormat(parseLogFormat(e.LogFormat)),
		WithChunking(e.ChunkSize, e.ChunkOverlap),
		WithTopK(e.TopK),
	}

	if e.DataDir != "" {
		opts = append(opts, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	}
	if e.ModelDir != "" {
		opts = append(opts, WithModelDir(e.ModelDir))
	}
	if e.AllowedOrigins != "" {
		opts = append(opts, WithAllowedOrigins(splitCommaList(e.AllowedOrigins)))
	}
	if e.APIKeys != "" {
		opts = append(opts, WithAPIKeys(splitCommaList(e.APIKeys)))
	}
	if e.ProfilesPath != "" {
		opts = append(opts, WithProfilesPath(e.ProfilesPath))
	}

	embedding := NewEmbeddingConfig()
	embedding.baseURL = e.Embedding.BaseURL
	embedding.apiKey = e.Embedding.APIKey
	if e.Embedding.Model != "" {
		embedding.model = e.Embedding.Model
	}
	if e.Embedding.FallbackModel != "" {
		embedding.fallbackModel = e.Embedding.FallbackModel
	}
	opts = append(opts, WithEmbeddingConfig(embedding))

	sampling := NewSamplingConfig()
	if e.Sampling.Temperature > 0 {
		sampling.temperature = e.Sampling.Temperature
	}
	if e.Sampling.TopP > 0 {
		sampling.topP = e.Sampling.TopP
	}
	if e.Sampling.MaxTokens > 0 {
		sampling.maxTokens = e.Sampling.MaxTokens
	}
	opts = append(opts, WithSamplingConfig(sampling))

	rt := NewRuntimeConfig()
	if e.Runtime.ServerBin != "" {
		rt.serverBin = e.Runtime.ServerBin
	}
	if e.Runtime.ContextSize > 0 {
		rt.contextSize = e.Runtime.ContextSize
	}
	if e.Runtime.BatchSize > 0 {
		rt.batchSize = e.Runtime.BatchSize
	}
	if e.Runtime.Threads > 0 {
		rt.threads = e.Runtime.Threads
	}
	rt.gpuLayers = e.Runtime.GPULayers
	opts = append(opts, WithRuntimeConfig(rt))

	return NewAppConfigWithOptions(opts...)
}

func parseLogFormat(s string) LogFormat {
	if strings.EqualFold(s, string(LogFormatJSON)) {
		return LogFormatJSON
	}
	return LogFormatPretty
}

func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
