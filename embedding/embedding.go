package embedding

import (
	"context"
	"math"
)

// Embedder turns text into a fixed-width dense vector. Implementations must
// return unit-length vectors of exactly Dimensions() entries so the memory
// index can rank them by inner product.
type Embedder interface {
	// Embed computes the vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the width every returned vector has.
	Dimensions() int

	// Name identifies the provider and model, e.g. "openai/text-embedding-3-small".
	// Persisted alongside the index so a store is never reopened under a
	// different embedding space.
	Name() string
}

// Normalize scales the vector to unit length in place. Zero vectors are left
// untouched.
func Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
}
