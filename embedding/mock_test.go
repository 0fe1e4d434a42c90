package embedding

import (
	"context"
	"math"
	"testing"
)

var _ Embedder = (*MockEmbedder)(nil)

func TestMockEmbedder_Deterministic(t *testing.T) {
	emb := NewMockEmbedder()

	a, err := emb.Embed(context.Background(), "the sky is blue")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, err := emb.Embed(context.Background(), "the sky is blue")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	if len(a) != emb.Dimensions() {
		t.Fatalf("expected %d entries, got %d", emb.Dimensions(), len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors diverge at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestMockEmbedder_UnitLength(t *testing.T) {
	emb := NewMockEmbedder()

	vec, err := emb.Embed(context.Background(), "normalization check")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Fatalf("expected unit length, got norm^2 = %f", sum)
	}
}

func TestMockEmbedder_DistinctTexts(t *testing.T) {
	emb := NewMockEmbedder()

	a, _ := emb.Embed(context.Background(), "alpha")
	b, _ := emb.Embed(context.Background(), "beta")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different texts should not share a vector")
	}
}

func TestMockEmbedder_CustomDimensions(t *testing.T) {
	emb := NewMockEmbedder(func(o *MockOptions) { o.Dimensions = 8 })

	vec, err := emb.Embed(context.Background(), "small")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(vec))
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	vec := make([]float32, 4)
	Normalize(vec)
	for _, v := range vec {
		if v != 0 {
			t.Fatal("zero vector should stay zero")
		}
	}
}
