package vector

import (
	"math"
	"sort"

	"github.com/sih-agent/backend/internal/storage/models"
)

// Store is an immutable in-memory similarity index over chunk embeddings.
// Once built or loaded it is never mutated, so any number of sessions may
// search it concurrently without locking.
type Store struct {
	chunks  []models.Chunk
	vectors [][]float32
	dim     int
	model   string
}

// Size returns the number of indexed chunks.
func (s *Store) Size() int {
	return len(s.chunks)
}

// Dim returns the embedding dimensionality of the index.
func (s *Store) Dim() int {
	return s.dim
}

// Model returns the embedding model identifier the index was built with.
func (s *Store) Model() string {
	return s.model
}

// Search returns the k chunks most similar to the query vector, ordered from
// most to least similar. Ties keep index-insertion order. k larger than the
// index returns everything. The search is read-only and deterministic.
func (s *Store) Search(query []float32, k int) []models.SearchResult {
	if k <= 0 || len(s.chunks) == 0 {
		return nil
	}

	q := normalize(query)

	results := make([]models.SearchResult, len(s.chunks))
	for i := range s.chunks {
		results[i] = models.SearchResult{
			Chunk: s.chunks[i],
			Score: dot(s.vectors[i], q),
		}
	}

	// Stable sort keeps insertion order between equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// normalize returns an L2-normalized copy so dot products are cosine
// similarities.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
