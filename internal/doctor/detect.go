// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package doctor diagnoses documents at rest and repairs them by
// rewinding their status so the normal forward pipeline redoes the work.
// The fixer never re-derives data itself.
package doctor

import (
	"fmt"
	"time"

	"github.com/pdiddy/legis-engine/internal/files"
	"github.com/pdiddy/legis-engine/internal/structex"
	"github.com/pdiddy/legis-engine/pkg/types"
)

// forwardStates are the non-terminal states a document can get stuck in.
var forwardStates = map[types.DocumentStatus]bool{
	types.StatusPending:    true,
	types.StatusFetched:    true,
	types.StatusDownloaded: true,
	types.StatusOCRed:      true,
	types.StatusExtracted:  true,
}

// failureStates are terminal failures the fixer may rewind for another
// attempt.
var failureStates = map[types.DocumentStatus]bool{
	types.StatusFailed:              true,
	types.StatusFailedCorrupted:     true,
	types.StatusFailedExtraction:    true,
	types.StatusFailedConsolidation: true,
}

// DetectStatus flags a document sitting in a non-terminal forward state
// for longer than stuckAfter, or parked in a rewindable failure state.
func DetectStatus(doc *types.LegalDocument, stuckAfter time.Duration, now time.Time) *types.Issue {
	switch {
	case failureStates[doc.Status]:
		return &types.Issue{
			DocumentID:      doc.DocumentID,
			Type:            types.IssueStuckStatus,
			Severity:        types.SeverityHigh,
			Description:     fmt.Sprintf("failed in %s: %s", doc.Status, doc.ErrorMessage),
			CurrentStatus:   doc.Status,
			SuggestedAction: "rewind to prior stage and retry",
			AutoFixable:     true,
		}
	case forwardStates[doc.Status] && now.Sub(doc.UpdatedAt) > stuckAfter:
		// PENDING has no predecessor; the fix there is simply running
		// the probe stage.
		_, fixable := doc.Status.Previous()
		return &types.Issue{
			DocumentID:      doc.DocumentID,
			Type:            types.IssueStuckStatus,
			Severity:        types.SeverityMedium,
			Description:     fmt.Sprintf("stuck in %s since %s", doc.Status, doc.UpdatedAt.Format(time.RFC3339)),
			CurrentStatus:   doc.Status,
			SuggestedAction: "rewind to prior stage and re-run the pipeline",
			AutoFixable:     fixable,
		}
	}
	return nil
}

// artifactClaims maps each status to the artifact kinds a document in
// that status must have.
var artifactClaims = []struct {
	kind  files.Kind
	issue types.IssueType
	since map[types.DocumentStatus]bool
}{
	{files.KindPDF, types.IssueMissingPDF, map[types.DocumentStatus]bool{
		types.StatusDownloaded: true, types.StatusOCRed: true,
		types.StatusExtracted: true, types.StatusConsolidated: true,
	}},
	{files.KindOCR, types.IssueMissingOCR, map[types.DocumentStatus]bool{
		types.StatusOCRed: true, types.StatusExtracted: true, types.StatusConsolidated: true,
	}},
	{files.KindJSON, types.IssueMissingJSON, map[types.DocumentStatus]bool{
		types.StatusExtracted: true, types.StatusConsolidated: true,
	}},
}

// DetectFiles flags artifacts the document's status claims but which are
// absent from the file store.
func DetectFiles(doc *types.LegalDocument, fs *files.Store) []types.Issue {
	refs := map[files.Kind]string{
		files.KindPDF:  doc.PDFPath,
		files.KindOCR:  doc.OCRPath,
		files.KindJSON: doc.JSONPath,
	}

	var issues []types.Issue
	for _, claim := range artifactClaims {
		if !claim.since[doc.Status] {
			continue
		}
		if ref := refs[claim.kind]; ref != "" && fs.Exists(ref) {
			continue
		}
		issues = append(issues, types.Issue{
			DocumentID:      doc.DocumentID,
			Type:            claim.issue,
			Severity:        types.SeverityCritical,
			Description:     fmt.Sprintf("status %s but no %s artifact", doc.Status, claim.kind),
			CurrentStatus:   doc.Status,
			SuggestedAction: "rewind to the stage that produces the artifact",
			AutoFixable:     true,
		})
	}
	return issues
}

// DetectQuality flags extraction-quality defects on EXTRACTED or
// CONSOLIDATED documents. result is the document's extraction JSON;
// ocrText may be empty when the OCR artifact is unavailable.
func DetectQuality(doc *types.LegalDocument, result *types.ExtractionResult, ocrText string, cfg types.DoctorConfig) []types.Issue {
	if doc.Status != types.StatusExtracted && doc.Status != types.StatusConsolidated {
		return nil
	}

	var issues []types.Issue
	add := func(t types.IssueType, sev types.IssueSeverity, desc string) {
		issues = append(issues, types.Issue{
			DocumentID:      doc.DocumentID,
			Type:            t,
			Severity:        sev,
			Description:     desc,
			CurrentStatus:   doc.Status,
			SuggestedAction: "rewind and re-extract",
			AutoFixable:     true,
		})
	}

	if len(result.Articles) == 0 {
		add(types.IssueZeroArticles, types.SeverityHigh, "extraction produced zero articles")
	}
	if result.Confidence < cfg.MinConfidence {
		add(types.IssueLowConfidence, types.SeverityMedium,
			fmt.Sprintf("confidence %.2f below %.2f", result.Confidence, cfg.MinConfidence))
	}
	if anomalies := structex.SequenceAnomalies(result.Articles); len(anomalies) > 0 {
		add(types.IssueBadSequence, types.SeverityMedium,
			fmt.Sprintf("article sequence: %v", anomalies))
	}
	if ocrText != "" {
		if rate := structex.UnrecognizedWordRate(ocrText); rate > cfg.MaxUnknownWordRate {
			add(types.IssueHighUnknownRate, types.SeverityHigh,
				fmt.Sprintf("unrecognized-word rate %.2f above %.2f", rate, cfg.MaxUnknownWordRate))
		}
	}
	return issues
}
