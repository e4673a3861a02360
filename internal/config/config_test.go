package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConstants(t *testing.T) {
	if DefaultHost != "0.0.0.0" {
		t.Errorf("DefaultHost = %v, want '0.0.0.0'", DefaultHost)
	}
	if DefaultPort != 8080 {
		t.Errorf("DefaultPort = %v, want 8080", DefaultPort)
	}
	if DefaultLogLevel != "INFO" {
		t.Errorf("DefaultLogLevel = %v, want 'INFO'", DefaultLogLevel)
	}
	if DefaultChunkSize != 800 {
		t.Errorf("DefaultChunkSize = %v, want 800", DefaultChunkSize)
	}
	if DefaultChunkOverlap != 150 {
		t.Errorf("DefaultChunkOverlap = %v, want 150", DefaultChunkOverlap)
	}
	if DefaultTopK != 5 {
		t.Errorf("DefaultTopK = %v, want 5", DefaultTopK)
	}
}

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 800, cfg.ChunkSize())
	assert.Equal(t, 150, cfg.ChunkOverlap())
	assert.Equal(t, 5, cfg.TopK())
	assert.Equal(t, LogFormatPretty, cfg.LogFormat())
	assert.Equal(t, filepath.Join(cfg.DataDir(), "models"), cfg.ModelDir())
	assert.Equal(t, "sqlite:///"+filepath.Join(cfg.DataDir(), "ragline.db"), cfg.DBURL())
	assert.Empty(t, cfg.APIKeys())
	assert.False(t, cfg.Embedding().IsRemote())
}

func TestWithDataDir_RebasesDerivedPaths(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDataDir("/tmp/rag"))

	assert.Equal(t, "/tmp/rag", cfg.DataDir())
	assert.Equal(t, "sqlite:///"+filepath.Join("/tmp/rag", "ragline.db"), cfg.DBURL())
	assert.Equal(t, filepath.Join("/tmp/rag", "models"), cfg.ModelDir())
	assert.Equal(t, filepath.Join("/tmp/rag", "uploads"), cfg.UploadDir())
	assert.Equal(t, filepath.Join("/tmp/rag", "embed"), cfg.EmbedCacheDir())
}

func TestWithChunking_RejectsInvalidValues(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithChunking(100, 100))
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize(), "overlap >= size must be ignored")

	cfg = NewAppConfigWithOptions(WithChunking(0, 0))
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize())

	cfg = NewAppConfigWithOptions(WithChunking(400, 50))
	assert.Equal(t, 400, cfg.ChunkSize())
	assert.Equal(t, 50, cfg.ChunkOverlap())
}

func TestAppConfig_Apply(t *testing.T) {
	cfg := NewAppConfig()
	updated := cfg.Apply(WithHost("127.0.0.1"), WithPort(9090))

	assert.Equal(t, "127.0.0.1:9090", updated.Addr())
	// The original is unchanged.
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestAppConfig_CopiesSlices(t *testing.T) {
	origins := []string{"http://localhost:3000"}
	cfg := NewAppConfigWithOptions(WithAllowedOrigins(origins))

	origins[0] = "mutated"
	assert.Equal(t, "http://localhost:3000", cfg.AllowedOrigins()[0])

	got := cfg.AllowedOrigins()
	got[0] = "mutated again"
	assert.Equal(t, "http://localhost:3000", cfg.AllowedOrigins()[0])
}

func TestNewRuntimeConfig_Threads(t *testing.T) {
	rt := NewRuntimeConfig()
	assert.GreaterOrEqual(t, rt.Threads(), 1)
	assert.Equal(t, "llama-server", rt.ServerBin())
	assert.Equal(t, -1, rt.GPULayers())
}
