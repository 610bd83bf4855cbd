// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aiex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// Model describes one model a provider can serve.
type Model struct {
	Name          string
	ContextTokens int
	Vision        bool
}

// CompletionRequest is a single prompt submission.
type CompletionRequest struct {
	Model     string
	Prompt    string
	MaxTokens int
}

// CompletionResponse is the provider's raw answer.
type CompletionResponse struct {
	Text       string
	TokensUsed int
}

// Provider abstracts one AI backend so tests can supply a mock and the
// chain can fall back across implementations.
type Provider interface {
	Name() string
	// Available reports whether the provider can serve requests right
	// now. An unavailable provider is skipped, not an error.
	Available(ctx context.Context) bool
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	// SelectModel returns the smallest model whose context window covers
	// the estimated token count and whose vision capability matches.
	// ok is false when no model fits.
	SelectModel(requiresVision bool, estimatedTokens int) (Model, bool)
}

// chooseModel implements the shared model-selection rule: among models
// matching the vision requirement with a context window of at least
// estimatedTokens, pick the one with the smallest window.
func chooseModel(models []Model, requiresVision bool, estimatedTokens int) (Model, bool) {
	var best Model
	found := false
	for _, m := range models {
		if m.Vision != requiresVision || m.ContextTokens < estimatedTokens {
			continue
		}
		if !found || m.ContextTokens < best.ContextTokens {
			best = m
			found = true
		}
	}
	return best, found
}

// ErrNoProvider reports that every provider in the chain was unavailable
// or failed. The caller marks the document for manual handling; it is
// never dropped.
var ErrNoProvider = errors.New("no AI provider available")

// retryDelay is the base backoff between provider call attempts.
// Package-level var for test substitution.
var retryDelay = 2 * time.Second

// Chain tries providers in order. A provider that is unavailable, has no
// fitting model, or errors after bounded retries is skipped and the next
// one is tried.
type Chain struct {
	Providers  []Provider
	MaxRetries int
}

// Complete submits the request through the chain and reports which
// provider answered. The request's Model field is filled per provider
// from its own model selection.
func (c *Chain) Complete(ctx context.Context, req CompletionRequest, requiresVision bool, estimatedTokens int) (CompletionResponse, string, error) {
	attempts := c.MaxRetries
	if attempts <= 0 {
		attempts = 3
	}

	var lastErr error
	for _, p := range c.Providers {
		if !p.Available(ctx) {
			continue
		}
		model, ok := p.SelectModel(requiresVision, estimatedTokens)
		if !ok {
			continue
		}
		req.Model = model.Name

		resp, err := retry.DoWithData(
			func() (CompletionResponse, error) { return p.Complete(ctx, req) },
			retry.Context(ctx),
			retry.Attempts(uint(attempts)),
			retry.Delay(retryDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			lastErr = fmt.Errorf("provider %s: %w", p.Name(), err)
			continue
		}
		return resp, p.Name(), nil
	}

	if lastErr != nil {
		return CompletionResponse{}, "", fmt.Errorf("%w: %v", ErrNoProvider, lastErr)
	}
	return CompletionResponse{}, "", ErrNoProvider
}
