package search

import (
	"testing"

	"github.com/ragline/ragline/domain/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(id int64, vec []float32) document.Candidate {
	return document.NewCandidate(id, 1, 1, "doc", "content", vec)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTopK_RanksDescending(t *testing.T) {
	candidates := []document.Candidate{
		candidate(1, []float32{0, 1}),
		candidate(2, []float32{1, 0}),
		candidate(3, []float32{1, 1}),
	}

	ranked := TopK([]float32{1, 0}, candidates, 3)

	require.Len(t, ranked, 3)
	assert.Equal(t, int64(2), ranked[0].ChunkID())
	assert.Equal(t, int64(3), ranked[1].ChunkID())
	assert.Equal(t, int64(1), ranked[2].ChunkID())
	assert.InDelta(t, 1, ranked[0].Score(), 1e-9)
}

func TestTopK_TruncatesToK(t *testing.T) {
	candidates := []document.Candidate{
		candidate(1, []float32{1, 0}),
		candidate(2, []float32{1, 0.1}),
		candidate(3, []float32{0, 1}),
	}

	ranked := TopK([]float32{1, 0}, candidates, 2)

	require.Len(t, ranked, 2)
}

func TestTopK_ClampsKToOne(t *testing.T) {
	candidates := []document.Candidate{
		candidate(1, []float32{1, 0}),
	}

	ranked := TopK([]float32{1, 0}, candidates, 0)

	require.Len(t, ranked, 1)
}

func TestTopK_SkipsZeroNormCandidates(t *testing.T) {
	candidates := []document.Candidate{
		candidate(1, []float32{0, 0}),
		candidate(2, []float32{0.1, 0}),
	}

	ranked := TopK([]float32{1, 0}, candidates, 5)

	require.Len(t, ranked, 1)
	assert.Equal(t, int64(2), ranked[0].ChunkID())
}

func TestTopK_ZeroNormQueryMatchesNothing(t *testing.T) {
	candidates := []document.Candidate{
		candidate(1, []float32{1, 0}),
	}

	assert.Empty(t, TopK([]float32{0, 0}, candidates, 3))
	assert.Empty(t, TopK(nil, candidates, 3))
}

func TestTopK_TiesKeepInputOrder(t *testing.T) {
	candidates := []document.Candidate{
		candidate(7, []float32{2, 0}),
		candidate(8, []float32{3, 0}),
	}

	ranked := TopK([]float32{1, 0}, candidates, 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, int64(7), ranked[0].ChunkID())
	assert.Equal(t, int64(8), ranked[1].ChunkID())
}
