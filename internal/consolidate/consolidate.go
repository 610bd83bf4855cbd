// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package consolidate writes extraction results into the queryable store
// behind a confidence gate: a re-run never overwrites consolidated data
// with a weaker result.
package consolidate

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/legis-engine/internal/extract"
	"github.com/pdiddy/legis-engine/internal/files"
	"github.com/pdiddy/legis-engine/pkg/types"
)

// Store is the slice of the storage layer the consolidation stage needs.
type Store interface {
	FindByStatus(ctx context.Context, status types.DocumentStatus, limit int) ([]*types.LegalDocument, error)
	Save(ctx context.Context, doc *types.LegalDocument) error
	ConsolidatedConfidence(ctx context.Context, documentID string) (confidence float64, ok bool, err error)
	ReplaceConsolidation(ctx context.Context, result *types.ExtractionResult) error
}

// Summary holds the outcome counts of a consolidation pass.
type Summary struct {
	Consolidated int
	Skipped      int
	Failed       int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Consolidated + s.Skipped + s.Failed
}

// RunAll consolidates every EXTRACTED document. A gate skip still
// advances the document to CONSOLIDATED: the stronger data is already in
// place.
func RunAll(ctx context.Context, st Store, fs *files.Store, maxItems int, w io.Writer) (Summary, error) {
	docs, err := st.FindByStatus(ctx, types.StatusExtracted, maxItems)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		written, err := RunOne(ctx, st, fs, doc)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed: %s (%s)\n", doc.DocumentID, doc.ErrorMessage)
			sum.Failed++
		case written:
			fmt.Fprintf(w, "consolidated: %s\n", doc.DocumentID)
			sum.Consolidated++
		default:
			fmt.Fprintf(w, "skipped: %s (existing data is stronger)\n", doc.DocumentID)
			sum.Skipped++
		}

		if err := st.Save(ctx, doc); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// RunOne consolidates a single document, updating it in place. written
// reports whether the store was modified; a confidence-gated skip
// returns (false, nil).
func RunOne(ctx context.Context, st Store, fs *files.Store, doc *types.LegalDocument) (written bool, err error) {
	if doc.Status != types.StatusExtracted {
		return false, nil
	}

	if doc.JSONPath == "" || !fs.Exists(doc.JSONPath) {
		return false, fail(doc, fmt.Errorf("extraction JSON missing for %s", doc.DocumentID))
	}

	result, err := extract.ReadResult(doc.JSONPath)
	if err != nil {
		return false, fail(doc, err)
	}
	result.DocumentID = doc.DocumentID

	existing, ok, err := st.ConsolidatedConfidence(ctx, doc.DocumentID)
	if err != nil {
		return false, fail(doc, err)
	}
	if ok && result.Confidence <= existing {
		doc.Status = types.StatusConsolidated
		doc.ErrorMessage = ""
		return false, nil
	}

	if err := st.ReplaceConsolidation(ctx, result); err != nil {
		return false, fail(doc, err)
	}

	doc.Status = types.StatusConsolidated
	doc.ErrorMessage = ""
	return true, nil
}

func fail(doc *types.LegalDocument, err error) error {
	doc.Status = types.StatusFailedConsolidation
	doc.ErrorMessage = err.Error()
	return err
}
