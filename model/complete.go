package model

import (
	"context"
	"errors"
	"fmt"

	"audiobook/types"
)

// Completer generates an answer from a system prompt and a user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// CompleterChain tries each provider in priority order, moving on when a
// provider is unavailable or quota-limited. When every provider fails the
// last error is returned, so a quota failure at the end of the chain is
// still distinguishable from an outage.
type CompleterChain struct {
	providers []Completer
}

func NewCompleterChain(providers ...Completer) (*CompleterChain, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: completer chain needs at least one provider", types.ErrInvalidConfig)
	}
	return &CompleterChain{providers: providers}, nil
}

func (c *CompleterChain) Name() string { return "chain" }

func (c *CompleterChain) Complete(ctx context.Context, system, prompt string) (string, error) {
	var lastErr error
	for _, p := range c.providers {
		out, err := p.Complete(ctx, system, prompt)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, types.ErrLLMUnavailable) && !errors.Is(err, types.ErrLLMQuotaExceeded) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}
