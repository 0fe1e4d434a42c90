// Package openai provides an implementation of embedding.Embedder using the
// OpenAI Embeddings API. It pins the vector width through the request's
// dimensions parameter and normalizes the result so inner product ranking
// behaves as cosine similarity.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/embedding"
)

// Options configure the OpenAI embedding adapter.
type Options struct {
	// Model selects the embedding model.
	Model openai.EmbeddingModel

	// Dimensions requests a reduced output width. Supported by the
	// text-embedding-3 family; the API truncates and rescales server-side.
	Dimensions int
}

// Embedder wraps the OpenAI Embeddings API behind the generic
// embedding.Embedder interface.
type Embedder struct {
	client *openai.Client
	opts   Options
}

// NewEmbedder creates a new OpenAI embedder using the official client.
func NewEmbedder(optFns ...func(o *Options)) *Embedder {
	client := openai.NewClient()
	return NewEmbedderFromClient(&client, optFns...)
}

// NewEmbedderFromClient creates a new OpenAI embedder from an existing client.
func NewEmbedderFromClient(client *openai.Client, optFns ...func(o *Options)) *Embedder {
	opts := Options{
		Model:      openai.EmbeddingModelTextEmbedding3Small,
		Dimensions: 384,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Embedder{client: client, opts: opts}
}

// Embed implements embedding.Embedder. A response whose width does not match
// the configured dimensions is rejected rather than stored, since inserting
// it would corrupt the index.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model:      e.opts.Model,
		Dimensions: openai.Int(int64(e.opts.Dimensions)),
	})
	if err != nil {
		return nil, &core.EmbeddingError{Provider: e.Name(), Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &core.EmbeddingError{Provider: e.Name(), Err: fmt.Errorf("no embedding returned")}
	}

	raw := resp.Data[0].Embedding
	if len(raw) != e.opts.Dimensions {
		return nil, &core.DimensionMismatchError{Want: e.opts.Dimensions, Got: len(raw)}
	}

	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	embedding.Normalize(vec)
	return vec, nil
}

// Dimensions implements embedding.Embedder.
func (e *Embedder) Dimensions() int { return e.opts.Dimensions }

// Name implements embedding.Embedder.
func (e *Embedder) Name() string { return fmt.Sprintf("openai/%s", e.opts.Model) }
