package model

import (
	"context"
	"errors"
	"fmt"

	"audiobook/types"
)

// Embedder maps an ordered batch of texts to vectors of a fixed dimension,
// preserving length and order. Implementations batch internally.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Name() string
}

// EmbedderChain is a prioritized list of embedding providers behind the
// Embedder contract. The chain is assembled once at configuration time;
// a provider is only consulted when every provider before it was
// unavailable. All providers must agree on dimensionality, since a
// collection's vectors have to stay comparable no matter which provider
// produced them.
type EmbedderChain struct {
	providers []Embedder
}

func NewEmbedderChain(providers ...Embedder) (*EmbedderChain, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: embedder chain needs at least one provider", types.ErrInvalidConfig)
	}
	dim := providers[0].Dimension()
	for _, p := range providers[1:] {
		if p.Dimension() != dim {
			return nil, fmt.Errorf("%w: embedder %s has dimension %d, chain expects %d",
				types.ErrInvalidConfig, p.Name(), p.Dimension(), dim)
		}
	}
	return &EmbedderChain{providers: providers}, nil
}

func (c *EmbedderChain) Name() string   { return "chain" }
func (c *EmbedderChain) Dimension() int { return c.providers[0].Dimension() }

func (c *EmbedderChain) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for _, p := range c.providers {
		vectors, err := p.EmbedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if !errors.Is(err, types.ErrEmbeddingUnavailable) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Embed is a convenience wrapper for single-text queries.
func Embed(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one input", types.ErrEmbeddingUnavailable, len(vectors))
	}
	return vectors[0], nil
}
