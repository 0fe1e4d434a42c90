package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// MockOptions configure the mock embedder.
type MockOptions struct {
	// Dimensions sets the vector width. Defaults to 384, matching small
	// sentence-transformer models.
	Dimensions int
}

// MockEmbedder is a deterministic in-process Embedder useful for tests and
// examples. Vectors are derived from a hash of the input text, so equal texts
// always map to equal vectors without any network dependency. Unrelated texts
// land roughly orthogonal; the mock imitates the shape of real embeddings,
// not their semantics.
type MockEmbedder struct {
	opts MockOptions
}

// NewMockEmbedder constructs a mock embedder.
func NewMockEmbedder(optFns ...func(o *MockOptions)) *MockEmbedder {
	opts := MockOptions{Dimensions: 384}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MockEmbedder{opts: opts}
}

// Embed derives a unit vector from an FNV hash of the text expanded through a
// linear congruential generator.
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))

	vec := make([]float32, m.opts.Dimensions)
	seed := h.Sum64()
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	Normalize(vec)
	return vec, nil
}

// Dimensions implements Embedder.
func (m *MockEmbedder) Dimensions() int { return m.opts.Dimensions }

// Name implements Embedder.
func (m *MockEmbedder) Name() string { return "mock" }
