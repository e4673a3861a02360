package ragline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ragline/ragline"
	"github.com/ragline/ragline/application/service"
	"github.com/ragline/ragline/domain/chat"
	"github.com/ragline/ragline/domain/document"
	"github.com/ragline/ragline/infrastructure/runtime"
	"github.com/ragline/ragline/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct{}

func (fakeParser) Parse(_ context.Context, data []byte) ([]document.PageText, error) {
	return []document.PageText{document.NewPageText(1, string(data))}, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type fakeRuntime struct{}

func (fakeRuntime) Complete(_ context.Context, _ []chat.Message, _ config.SamplingConfig) (string, error) {
	return "the answer", nil
}

func (fakeRuntime) Close() error { return nil }

func newClient(t *testing.T, modelFiles ...string) *ragline.Client {
	t.Helper()

	tmpDir := t.TempDir()
	modelDir := filepath.Join(tmpDir, "models")
	require.NoError(t, os.MkdirAll(modelDir, 0o755))
	for _, name := range modelFiles {
		require.NoError(t, os.WriteFile(filepath.Join(modelDir, name), []byte("gguf"), 0o644))
	}

	cfg := config.NewAppConfigWithOptions(
		config.WithDataDir(tmpDir),
		config.WithModelDir(modelDir),
	)

	factory := func(_ context.Context, _ string, _ config.RuntimeConfig) (runtime.Runtime, error) {
		return fakeRuntime{}, nil
	}

	client, err := ragline.New(
		ragline.WithConfig(cfg),
		ragline.WithParser(fakeParser{}),
		ragline.WithEmbedder(fakeEmbedder{}),
		ragline.WithRuntimeFactory(factory),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_IngestAndAsk(t *testing.T) {
	ctx := context.Background()
	client := newClient(t, "phi-2-q4.gguf")

	outcome, err := client.Ingest.Ingest(ctx, "report.pdf", []byte("quarterly results were strong"))
	require.NoError(t, err)
	assert.False(t, outcome.AlreadyExists())
	assert.Equal(t, 1, outcome.ChunksInserted())

	result, err := client.Chat.Ask(ctx, service.NewChatRequest(
		"how were the results?", "", "",
		[]int64{outcome.Document().ID()}, 0,
	))
	require.NoError(t, err)

	assert.Equal(t, "the answer", result.Answer())
	assert.Equal(t, "phi-2-q4.gguf", result.ModelFile())
	require.Len(t, result.Sources(), 1)
	assert.Equal(t, "report.pdf", result.Sources()[0].Title())
}

func TestClient_IngestDeduplicates(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)

	first, err := client.Ingest.Ingest(ctx, "a.pdf", []byte("same content"))
	require.NoError(t, err)

	second, err := client.Ingest.Ingest(ctx, "b.pdf", []byte("same content"))
	require.NoError(t, err)
	assert.True(t, second.AlreadyExists())
	assert.Equal(t, first.Document().ID(), second.Document().ID())
}

func TestClient_ModelsList(t *testing.T) {
	client := newClient(t, "b.gguf", "a.gguf")

	infos, err := client.Models.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "a.gguf", infos[0].FileName())
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	client := newClient(t)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}
