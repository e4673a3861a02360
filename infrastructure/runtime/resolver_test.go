package runtime

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ragline/ragline/domain/model"
	"github.com/ragline/ragline/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("gguf"), 0o644))
	return path
}

func TestResolver_DiscoverSortedRecursive(t *testing.T) {
	dir := t.TempDir()
	writeModelFile(t, filepath.Join(dir, "sub"), "zeta.gguf")
	writeModelFile(t, dir, "alpha.GGUF")
	writeModelFile(t, dir, "notes.txt")

	r := NewResolver(dir, nil)
	models, err := r.Discover()
	require.NoError(t, err)

	require.Len(t, models, 2)
	assert.Equal(t, "alpha", models[0].Key())
	assert.Equal(t, "zeta", models[1].Key())
	assert.Equal(t, int64(4), models[0].SizeBytes())
}

func TestResolver_DiscoverMissingDir(t *testing.T) {
	r := NewResolver(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	models, err := r.Discover()
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestResolver_ResolveNoModels(t *testing.T) {
	r := NewResolver(t.TempDir(), nil)
	_, err := r.Resolve("anything", "")
	assert.ErrorIs(t, err, ErrNoModelsFound)
}

func TestResolver_ResolveAliasFallback(t *testing.T) {
	// A phi-3.5 selection must resolve to the phi-2 file on disk through the
	// alias table.
	dir := t.TempDir()
	writeModelFile(t, dir, "phi-2-q4.gguf")

	r := NewResolver(dir, config.DefaultModelProfiles().AliasTable())
	match, err := r.Resolve("phi-3-5-mini", "Phi 3.5 Mini")
	require.NoError(t, err)
	assert.Equal(t, model.StrategyAliasKey, match.Strategy())
	assert.Equal(t, "phi-2-q4", match.Model().Key())
}

func TestResolver_ResolveNoCompatibleModel(t *testing.T) {
	dir := t.TempDir()
	writeModelFile(t, dir, "phi-2-q4.gguf")

	r := NewResolver(dir, nil)
	_, err := r.Resolve("falcon-40b", "Falcon")

	var noMatch *NoCompatibleModelError
	require.True(t, errors.As(err, &noMatch))
	assert.Equal(t, []string{"phi-2-q4.gguf"}, noMatch.Available())
	assert.Contains(t, err.Error(), "phi-2-q4.gguf")
}

func TestResolver_ResolveDefaultFirst(t *testing.T) {
	dir := t.TempDir()
	writeModelFile(t, dir, "bbb.gguf")
	writeModelFile(t, dir, "aaa.gguf")

	r := NewResolver(dir, nil)
	match, err := r.Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, model.StrategyDefaultFirst, match.Strategy())
	assert.Equal(t, "aaa", match.Model().Key())
}
