// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pdiddy/legis-engine/internal/batch"
	"github.com/pdiddy/legis-engine/internal/files"
	"github.com/pdiddy/legis-engine/pkg/types"
)

// DocumentStore is the slice of the storage layer the OCR stage needs.
type DocumentStore interface {
	FindByStatus(ctx context.Context, status types.DocumentStatus, limit int) ([]*types.LegalDocument, error)
	Save(ctx context.Context, doc *types.LegalDocument) error
}

// Summary holds the outcome counts of an OCR pass.
type Summary struct {
	Extracted int
	Failed    int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Extracted + s.Failed
}

// RunAll extracts text from every DOWNLOADED document's PDF, advancing
// each to OCRED. A document whose PDF reference is missing at this point
// fails alone; the pass continues.
func RunAll(ctx context.Context, st DocumentStore, fs *files.Store, engine Engine, maxItems int, w io.Writer) (Summary, error) {
	if err := fs.EnsureDirs(); err != nil {
		return Summary{}, err
	}

	docs, err := st.FindByStatus(ctx, types.StatusDownloaded, maxItems)
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

		if RunOne(ctx, doc, fs, engine) == types.StatusOCRed {
			fmt.Fprintf(w, "ocred:  %s (quality %.2f)\n", doc.DocumentID, qualityOf(doc.OCRPath))
			sum.Extracted++
		} else {
			fmt.Fprintf(w, "failed: %s (%s)\n", doc.DocumentID, doc.ErrorMessage)
			sum.Failed++
		}

		if err := st.Save(ctx, doc); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// RunConcurrent is RunAll with a bounded worker pool; OCR invocations
// are CPU-bound external processes and parallelize per document.
func RunConcurrent(ctx context.Context, st DocumentStore, fs *files.Store, engine Engine, maxItems, workers int, logger *slog.Logger) (batch.Result, error) {
	if err := fs.EnsureDirs(); err != nil {
		return batch.Result{}, err
	}

	docs, err := st.FindByStatus(ctx, types.StatusDownloaded, maxItems)
	if err != nil {
		return batch.Result{}, err
	}

	return batch.Run(ctx, docs, workers, logger,
		func(ctx context.Context, doc *types.LegalDocument) (batch.Outcome, error) {
			status := RunOne(ctx, doc, fs, engine)
			if err := st.Save(ctx, doc); err != nil {
				return batch.Failed, err
			}
			if status != types.StatusOCRed {
				logger.Warn("ocr failed", "document_id", doc.DocumentID, "error", doc.ErrorMessage)
				return batch.Failed, nil
			}
			logger.Info("ocred", "document_id", doc.DocumentID, "quality", qualityOf(doc.OCRPath))
			return batch.Succeeded, nil
		})
}

// RunOne extracts text for a single document, writing the text artifact
// and updating the document in place.
func RunOne(ctx context.Context, doc *types.LegalDocument, fs *files.Store, engine Engine) types.DocumentStatus {
	if doc.Status != types.StatusDownloaded {
		return doc.Status
	}

	if doc.PDFPath == "" || !fs.Exists(doc.PDFPath) {
		return fail(doc, fmt.Errorf("PDF artifact missing for %s", doc.DocumentID))
	}

	text, err := engine.ExtractText(ctx, doc.PDFPath)
	if err != nil {
		return fail(doc, err)
	}
	if len(text) == 0 {
		return fail(doc, fmt.Errorf("OCR produced no text for %s", doc.DocumentID))
	}

	ref, err := fs.Ref(files.KindOCR, doc.DocumentID)
	if err != nil {
		return fail(doc, err)
	}
	if err := os.WriteFile(ref, []byte(text), 0o644); err != nil {
		return fail(doc, fmt.Errorf("writing OCR text: %w", err))
	}

	doc.Status = types.StatusOCRed
	doc.OCRPath = ref
	doc.ErrorMessage = ""
	return doc.Status
}

func fail(doc *types.LegalDocument, err error) types.DocumentStatus {
	doc.Status = types.StatusFailed
	doc.ErrorMessage = err.Error()
	return doc.Status
}

func qualityOf(ref string) float64 {
	data, err := os.ReadFile(ref)
	if err != nil {
		return 0
	}
	return TextQuality(string(data))
}
