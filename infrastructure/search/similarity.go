// Package search ranks stored embedding vectors against a query vector.
package search

import (
	"math"
	"sort"

	"github.com/ragline/ragline/domain/document"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 (opposite) and 1 (identical).
// Returns 0 if the vectors differ in length or either has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, magA, magB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(magA) * math.Sqrt(magB))
}

func zeroNorm(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// TopK ranks candidates against the query vector and returns the k highest
// scoring chunks in descending score order. Ties keep the candidates' input
// order, so repeated queries over the same rows rank identically.
//
// A zero-magnitude query matches nothing. Candidates with zero-magnitude
// vectors are skipped rather than scored at zero, so they can never displace
// a real match. k is clamped to a minimum of 1.
func TopK(query []float32, candidates []document.Candidate, k int) []document.ScoredChunk {
	if len(query) == 0 || zeroNorm(query) || len(candidates) == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}

	scored := make([]document.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		vec := c.Vector()
		if len(vec) != len(query) || zeroNorm(vec) {
			continue
		}
		scored = append(scored, document.NewScoredChunk(c, CosineSimilarity(query, vec)))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score() > scored[j].Score()
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
