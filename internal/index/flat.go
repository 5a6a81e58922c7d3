// Package index provides an ephemeral exact nearest-neighbor structure.
// A Flat index is built fresh per query over the filtered candidate vectors
// and discarded afterwards; the persistent corpus store is never mutated.
package index

import (
	"fmt"
	"math"
	"sort"
)

// Hit is one nearest-neighbor match: the candidate's position in the slice
// the index was built over, plus its Euclidean distance to the query.
type Hit struct {
	Pos      int
	Distance float64
}

// Flat is a brute-force Euclidean index over a fixed candidate set.
type Flat struct {
	vectors [][]float32
	dim     int
}

// NewFlat builds a flat index. All vectors must share one dimension.
func NewFlat(vectors [][]float32) (*Flat, error) {
	dim := 0
	for i, v := range vectors {
		if dim == 0 {
			dim = len(v)
		}
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("vector %d: dimension %d, index dimension %d", i, len(v), dim)
		}
	}
	return &Flat{vectors: vectors, dim: dim}, nil
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int { return len(f.vectors) }

// Search returns the k nearest vectors by Euclidean distance, closest first.
// k is clamped to the index size; k <= 0 or an empty index yields no hits.
// Equal distances keep insertion order.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 || len(f.vectors) == 0 {
		return nil, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(query), f.dim)
	}
	if k > len(f.vectors) {
		k = len(f.vectors)
	}

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{Pos: i, Distance: euclidean(query, v)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	return hits[:k], nil
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
