// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs per-document work with bounded concurrency. Every
// per-document failure is soft: it is counted and logged, and the pass
// continues. No two workers ever hold the same document.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/legis-engine/pkg/types"
)

// maxDefaultWorkers caps the derived worker count.
const maxDefaultWorkers = 8

// Workers resolves the worker count from configuration, deriving it from
// the available cores when unset.
func Workers(cfg types.BatchConfig) int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	n := runtime.NumCPU()
	if n > maxDefaultWorkers {
		n = maxDefaultWorkers
	}
	return n
}

// Outcome is one document's result within a pass.
type Outcome int

const (
	Succeeded Outcome = iota
	Failed
	Skipped
)

// Result aggregates a pass's outcomes.
type Result struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
}

// Run applies fn to every document with at most workers in flight. fn's
// error is recorded and logged, never propagated: the pass runs to
// completion unless the context is cancelled between items.
func Run(ctx context.Context, docs []*types.LegalDocument, workers int, logger *slog.Logger, fn func(ctx context.Context, doc *types.LegalDocument) (Outcome, error)) (Result, error) {
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	var result Result

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, doc := range docs {
		doc := doc
		select {
		case <-gctx.Done():
			return result, gctx.Err()
		default:
		}

		eg.Go(func() error {
			outcome, err := fn(gctx, doc)

			mu.Lock()
			defer mu.Unlock()
			result.Processed++
			switch {
			case err != nil:
				result.Failed++
				logger.Warn("document failed",
					"document_id", doc.DocumentID, "status", doc.Status, "error", err)
			case outcome == Skipped:
				result.Skipped++
			case outcome == Failed:
				result.Failed++
			default:
				result.Succeeded++
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return result, err
	}
	return result, nil
}
