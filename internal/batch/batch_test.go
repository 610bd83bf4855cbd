// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/legis-engine/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDocs(n int) []*types.LegalDocument {
	docs := make([]*types.LegalDocument, n)
	for i := range docs {
		docs[i] = types.NewLegalDocument("loi", 2024, i+1)
	}
	return docs
}

func TestRun_CountsOutcomes(t *testing.T) {
	docs := testDocs(6)

	result, err := Run(context.Background(), docs, 3, testLogger(),
		func(_ context.Context, doc *types.LegalDocument) (Outcome, error) {
			switch doc.Number % 3 {
			case 0:
				return Failed, nil
			case 1:
				return Skipped, nil
			}
			return Succeeded, nil
		})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Processed)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 2, result.Skipped)
}

func TestRun_ErrorIsSoft(t *testing.T) {
	docs := testDocs(4)

	result, err := Run(context.Background(), docs, 2, testLogger(),
		func(_ context.Context, doc *types.LegalDocument) (Outcome, error) {
			if doc.Number == 2 {
				return Failed, fmt.Errorf("boom")
			}
			return Succeeded, nil
		})
	require.NoError(t, err, "a per-document error never aborts the pass")

	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
}

func TestRun_BoundsConcurrency(t *testing.T) {
	docs := testDocs(20)

	var inFlight, peak atomic.Int64
	_, err := Run(context.Background(), docs, 3, testLogger(),
		func(_ context.Context, _ *types.LegalDocument) (Outcome, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			return Succeeded, nil
		})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int64(3))
}

func TestRun_CancelledBetweenItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, testDocs(5), 1, testLogger(),
		func(_ context.Context, _ *types.LegalDocument) (Outcome, error) {
			return Succeeded, nil
		})
	assert.Error(t, err)
	assert.Zero(t, result.Processed)
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 5, Workers(types.BatchConfig{Workers: 5}))

	derived := Workers(types.BatchConfig{})
	assert.Greater(t, derived, 0)
	assert.LessOrEqual(t, derived, maxDefaultWorkers)
}
