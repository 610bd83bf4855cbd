// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract runs the extraction stage: corrected OCR text goes
// through the regex extractor first, and through the AI fallback chain
// when the regex result's confidence is too low. The winning result is
// written as the document's JSON artifact.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pdiddy/legis-engine/internal/aiex"
	"github.com/pdiddy/legis-engine/internal/batch"
	"github.com/pdiddy/legis-engine/internal/correct"
	"github.com/pdiddy/legis-engine/internal/files"
	"github.com/pdiddy/legis-engine/internal/structex"
	"github.com/pdiddy/legis-engine/pkg/types"
)

// DocumentStore is the slice of the storage layer the extraction stage
// needs.
type DocumentStore interface {
	FindByStatus(ctx context.Context, status types.DocumentStatus, limit int) ([]*types.LegalDocument, error)
	Save(ctx context.Context, doc *types.LegalDocument) error
}

// Fallback is the AI extraction path. aiex.Extractor implements it;
// tests supply a mock.
type Fallback interface {
	Extract(ctx context.Context, documentID, text string) (*types.ExtractionResult, []string, error)
}

// Summary holds the outcome counts of an extraction pass.
type Summary struct {
	Regex  int
	AI     int
	Failed int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Regex + s.AI + s.Failed
}

// Runner wires the extraction stage's collaborators.
type Runner struct {
	Store      DocumentStore
	Files      *files.Store
	Structural *structex.Extractor
	// Fallback may be nil to run regex-only.
	Fallback      Fallback
	MinConfidence float64
}

// RunAll extracts every OCRED document, advancing each to EXTRACTED or
// FAILED_EXTRACTION. Per-document failures never abort the pass.
func (r *Runner) RunAll(ctx context.Context, maxItems int, w io.Writer) (Summary, error) {
	if err := r.Files.EnsureDirs(); err != nil {
		return Summary{}, err
	}

	docs, err := r.Store.FindByStatus(ctx, types.StatusOCRed, maxItems)
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

		status, method, warnings := r.RunOne(ctx, doc)
		for _, warn := range warnings {
			fmt.Fprintf(w, "warning: %s: %s\n", doc.DocumentID, warn)
		}

		switch {
		case status != types.StatusExtracted:
			fmt.Fprintf(w, "failed: %s (%s)\n", doc.DocumentID, doc.ErrorMessage)
			sum.Failed++
		case method == types.MethodAI:
			fmt.Fprintf(w, "extracted: %s (ai)\n", doc.DocumentID)
			sum.AI++
		default:
			fmt.Fprintf(w, "extracted: %s (regex)\n", doc.DocumentID)
			sum.Regex++
		}

		if err := r.Store.Save(ctx, doc); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// RunConcurrent is RunAll with a bounded worker pool. Extraction is the
// slowest stage when the AI fallback engages, and each document is
// independent, so it parallelizes cleanly.
func (r *Runner) RunConcurrent(ctx context.Context, maxItems, workers int, logger *slog.Logger) (batch.Result, error) {
	if err := r.Files.EnsureDirs(); err != nil {
		return batch.Result{}, err
	}

	docs, err := r.Store.FindByStatus(ctx, types.StatusOCRed, maxItems)
	if err != nil {
		return batch.Result{}, err
	}

	return batch.Run(ctx, docs, workers, logger,
		func(ctx context.Context, doc *types.LegalDocument) (batch.Outcome, error) {
			status, method, warnings := r.RunOne(ctx, doc)
			for _, warn := range warnings {
				logger.Warn("extraction warning", "document_id", doc.DocumentID, "warning", warn)
			}
			if err := r.Store.Save(ctx, doc); err != nil {
				return batch.Failed, err
			}
			if status != types.StatusExtracted {
				logger.Warn("extraction failed",
					"document_id", doc.DocumentID, "error", doc.ErrorMessage)
				return batch.Failed, nil
			}
			logger.Info("extracted", "document_id", doc.DocumentID, "method", method)
			return batch.Succeeded, nil
		})
}

// RunOne extracts a single document, updating it in place, and reports
// the resulting status, the winning extraction method, and any per-chunk
// warnings from the AI path.
func (r *Runner) RunOne(ctx context.Context, doc *types.LegalDocument) (types.DocumentStatus, types.ExtractionMethod, []string) {
	if doc.Status != types.StatusOCRed {
		return doc.Status, "", nil
	}

	if doc.OCRPath == "" || !r.Files.Exists(doc.OCRPath) {
		return fail(doc, fmt.Errorf("OCR artifact missing for %s", doc.DocumentID)), "", nil
	}
	raw, err := os.ReadFile(doc.OCRPath)
	if err != nil {
		return fail(doc, fmt.Errorf("reading OCR text: %w", err)), "", nil
	}

	text := correct.Apply(string(raw))

	result, structErr := r.Structural.Extract(doc.DocumentID, text)
	if structErr != nil && !errors.Is(structErr, structex.ErrNoArticles) {
		return fail(doc, structErr), "", nil
	}

	var warnings []string
	if r.Fallback != nil && (len(result.Articles) == 0 || result.Confidence < r.MinConfidence) {
		aiResult, aiWarnings, aiErr := r.Fallback.Extract(ctx, doc.DocumentID, text)
		warnings = aiWarnings
		switch {
		case errors.Is(aiErr, aiex.ErrNoProvider) && len(result.Articles) == 0:
			// Nothing extractable and nobody to ask: park the document
			// for manual handling.
			return fail(doc, fmt.Errorf("no articles found and no AI provider available")), "", warnings
		case aiErr != nil:
			// Keep the regex result; the quality detector flags it
			// later if it is too weak.
			warnings = append(warnings, aiErr.Error())
		case len(aiResult.Articles) == 0:
			// A result without articles never supersedes one that has
			// them, whatever its metadata-driven confidence says.
			if len(result.Articles) == 0 {
				return fail(doc, fmt.Errorf("no articles found in %s", doc.DocumentID)), "", warnings
			}
			warnings = append(warnings, "fallback returned no articles; keeping structural result")
		case aiResult.Confidence > result.Confidence || len(result.Articles) == 0:
			result = aiResult
		}
	}

	if len(result.Articles) == 0 {
		return fail(doc, fmt.Errorf("no articles found in %s", doc.DocumentID)), "", warnings
	}

	ref, err := r.Files.Ref(files.KindJSON, doc.DocumentID)
	if err != nil {
		return fail(doc, err), "", warnings
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fail(doc, fmt.Errorf("marshaling extraction: %w", err)), "", warnings
	}
	if err := os.WriteFile(ref, data, 0o644); err != nil {
		return fail(doc, fmt.Errorf("writing extraction JSON: %w", err)), "", warnings
	}

	doc.Status = types.StatusExtracted
	doc.JSONPath = ref
	doc.ErrorMessage = ""
	return doc.Status, result.Method, warnings
}

// ReadResult loads a document's extraction JSON artifact.
func ReadResult(ref string) (*types.ExtractionResult, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("reading extraction JSON: %w", err)
	}
	var result types.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing extraction JSON %s: %w", ref, err)
	}
	return &result, nil
}

func fail(doc *types.LegalDocument, err error) types.DocumentStatus {
	doc.Status = types.StatusFailedExtraction
	doc.ErrorMessage = err.Error()
	return doc.Status
}
