// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package doctor

import (
	"fmt"

	"github.com/pdiddy/legis-engine/internal/files"
	"github.com/pdiddy/legis-engine/pkg/types"
)

// Fix rewinds the document one stage for the given issue, deleting the
// artifact owned by the stage being undone so the re-run starts clean.
// The document is mutated in place; the caller persists it.
func Fix(doc *types.LegalDocument, issue types.Issue, fs *files.Store) types.FixResult {
	result := types.FixResult{
		DocumentID: doc.DocumentID,
		IssueType:  issue.Type,
	}

	prev, ok := rewindTarget(doc)
	if !ok {
		result.Status = types.FixSkipped
		result.Details = fmt.Sprintf("no predecessor for status %s", doc.Status)
		return result
	}

	if err := dropUndoneArtifact(doc, fs); err != nil {
		result.Status = types.FixFailed
		result.Details = err.Error()
		return result
	}

	result.Action = fmt.Sprintf("rewind %s -> %s", doc.Status, prev)
	result.Status = types.FixSuccess
	result.Details = issue.Description

	doc.Status = prev
	doc.ErrorMessage = ""
	return result
}

// rewindTarget resolves the status a fix rewinds to. FAILED has no
// entry in the predecessor table because three stages produce it; the
// artifact trail identifies the stage that failed. A PDF on disk means
// OCR failed, a source URL without a PDF means the download failed, and
// a bare record means the probe itself failed.
func rewindTarget(doc *types.LegalDocument) (types.DocumentStatus, bool) {
	if doc.Status != types.StatusFailed {
		return doc.Status.Previous()
	}
	switch {
	case doc.PDFPath != "":
		return types.StatusDownloaded, true
	case doc.SourceURL != "":
		return types.StatusFetched, true
	default:
		return types.StatusPending, true
	}
}

// dropUndoneArtifact removes the artifact produced by the stage the
// rewind undoes and clears its reference. Rewinding CONSOLIDATED keeps
// everything: the consolidation gate already protects the stored data.
func dropUndoneArtifact(doc *types.LegalDocument, fs *files.Store) error {
	var ref *string
	switch doc.Status {
	case types.StatusDownloaded, types.StatusFailedCorrupted:
		ref = &doc.PDFPath
	case types.StatusOCRed:
		ref = &doc.OCRPath
	case types.StatusExtracted, types.StatusFailedExtraction:
		ref = &doc.JSONPath
	default:
		return nil
	}

	if *ref != "" {
		if err := fs.Remove(*ref); err != nil {
			return err
		}
	}
	*ref = ""
	return nil
}
