package memory

import (
	"fmt"
	"sort"

	"github.com/joinaiwms/horizon/core"
)

// Hit is a single index match: the insertion position of the vector and its
// inner-product score against the query.
type Hit struct {
	Position int
	Score    float32
}

// FlatIndex is an exact inner-product index over fixed-width vectors. Inserts
// append; nothing is ever removed or reordered, so a vector's position is a
// permanent handle. Search scans every stored vector, which is the right
// trade-off for the collection sizes a single assistant accumulates.
//
// FlatIndex is not goroutine safe; the owning Store serializes access.
type FlatIndex struct {
	dim   int
	data  []float32 // count * dim entries, row-major
	count int
}

// NewFlatIndex creates an empty index for vectors of the given width.
func NewFlatIndex(dim int) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("memory: index dimension must be positive, got %d", dim)
	}
	return &FlatIndex{dim: dim}, nil
}

// Dimension returns the vector width the index accepts.
func (ix *FlatIndex) Dimension() int { return ix.dim }

// Count returns the number of stored vectors, including ones whose metadata
// entries have been tombstoned.
func (ix *FlatIndex) Count() int { return ix.count }

// Insert appends a vector and returns its position. A vector of the wrong
// width is rejected and the index is left unchanged.
func (ix *FlatIndex) Insert(vec []float32) (int, error) {
	if len(vec) != ix.dim {
		return 0, &core.DimensionMismatchError{Want: ix.dim, Got: len(vec)}
	}
	ix.data = append(ix.data, vec...)
	pos := ix.count
	ix.count++
	return pos, nil
}

// Search returns the k highest-scoring positions for the query, best first.
// Ties are broken toward the earlier position, so equal inputs always produce
// equal output orderings. k <= 0 returns no hits; k beyond the stored count
// returns everything.
func (ix *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, &core.DimensionMismatchError{Want: ix.dim, Got: len(query)}
	}
	if k <= 0 || ix.count == 0 {
		return []Hit{}, nil
	}
	if k > ix.count {
		k = ix.count
	}

	hits := make([]Hit, ix.count)
	for pos := 0; pos < ix.count; pos++ {
		row := ix.data[pos*ix.dim : (pos+1)*ix.dim]
		var score float32
		for i, q := range query {
			score += q * row[i]
		}
		hits[pos] = Hit{Position: pos, Score: score}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	return hits[:k], nil
}
