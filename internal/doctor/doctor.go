// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/legis-engine/internal/extract"
	"github.com/pdiddy/legis-engine/internal/files"
	"github.com/pdiddy/legis-engine/pkg/types"
)

// defaultMaxRetries bounds rewinds per (document, issue type) before the
// fixer gives up and leaves the document for a human.
const defaultMaxRetries = 3

// Store is the slice of the storage layer the doctor needs.
type Store interface {
	FindByStatus(ctx context.Context, status types.DocumentStatus, limit int) ([]*types.LegalDocument, error)
	Save(ctx context.Context, doc *types.LegalDocument) error
	CountFixAttempts(ctx context.Context, documentID string, issueType types.IssueType) (int, error)
	SaveFixResults(ctx context.Context, results []types.FixResult) error
}

// Report is the outcome of one doctor run.
type Report struct {
	RunID  string
	Issues []types.Issue
	Fixes  []types.FixResult
}

// Fixed returns the number of successful repairs.
func (r Report) Fixed() int {
	n := 0
	for _, f := range r.Fixes {
		if f.Status == types.FixSuccess {
			n++
		}
	}
	return n
}

// Doctor scans documents at rest, diagnoses them, and applies at most
// one fix per document per run: a rewind invalidates any later-stage
// issue, so the rest are moot until the pipeline has re-run.
type Doctor struct {
	Store Store
	Files *files.Store
	Cfg   types.DoctorConfig

	// FixIssues disables repairs when false: detection only.
	FixIssues bool

	// now is the clock used by the stuck check; tests override it.
	now func() time.Time
}

// scannedStates is every status the doctor examines.
var scannedStates = []types.DocumentStatus{
	types.StatusPending,
	types.StatusFetched,
	types.StatusDownloaded,
	types.StatusOCRed,
	types.StatusExtracted,
	types.StatusConsolidated,
	types.StatusFailed,
	types.StatusFailedCorrupted,
	types.StatusFailedExtraction,
	types.StatusFailedConsolidation,
}

// Run diagnoses every document in a scanned state and, when FixIssues is
// set, repairs the most severe auto-fixable issue per document. All fix
// attempts are recorded as audit rows under one run ID.
func (d *Doctor) Run(ctx context.Context, w io.Writer) (Report, error) {
	report := Report{RunID: uuid.NewString()}

	for _, status := range scannedStates {
		docs, err := d.Store.FindByStatus(ctx, status, 0)
		if err != nil {
			return report, err
		}

		for _, doc := range docs {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			default:
			}

			issues := d.diagnose(doc)
			if len(issues) == 0 {
				continue
			}
			report.Issues = append(report.Issues, issues...)
			for _, issue := range issues {
				fmt.Fprintf(w, "issue: %s %s [%s] %s\n",
					doc.DocumentID, issue.Type, issue.Severity, issue.Description)
			}

			if !d.FixIssues {
				continue
			}
			fix, applied, err := d.fixFirst(ctx, doc, issues)
			if err != nil {
				return report, err
			}
			if !applied {
				continue
			}
			fix.RunID = report.RunID
			report.Fixes = append(report.Fixes, fix)
			fmt.Fprintf(w, "fix: %s %s %s\n", doc.DocumentID, fix.Status, fix.Action)

			if fix.Status == types.FixSuccess {
				if err := d.Store.Save(ctx, doc); err != nil {
					return report, err
				}
			}
		}
	}

	if len(report.Fixes) > 0 {
		if err := d.Store.SaveFixResults(ctx, report.Fixes); err != nil {
			return report, err
		}
	}

	fmt.Fprintf(w, "doctor: %d issue(s), %d fixed (run %s)\n",
		len(report.Issues), report.Fixed(), report.RunID)
	return report, nil
}

// diagnose runs every detector against one document and returns the
// issues ordered severity-descending.
func (d *Doctor) diagnose(doc *types.LegalDocument) []types.Issue {
	var issues []types.Issue

	now := time.Now
	if d.now != nil {
		now = d.now
	}
	if issue := DetectStatus(doc, d.Cfg.StuckAfter, now()); issue != nil {
		issues = append(issues, *issue)
	}

	issues = append(issues, DetectFiles(doc, d.Files)...)

	if doc.JSONPath != "" && d.Files.Exists(doc.JSONPath) {
		if result, err := extract.ReadResult(doc.JSONPath); err == nil {
			issues = append(issues, DetectQuality(doc, result, d.ocrText(doc), d.Cfg)...)
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity > issues[j].Severity
	})
	return issues
}

// fixFirst applies the first auto-fixable issue, honoring the per-issue
// retry budget. applied is false when no issue was fixable.
func (d *Doctor) fixFirst(ctx context.Context, doc *types.LegalDocument, issues []types.Issue) (types.FixResult, bool, error) {
	maxRetries := d.Cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for _, issue := range issues {
		if !issue.AutoFixable {
			continue
		}

		attempts, err := d.Store.CountFixAttempts(ctx, doc.DocumentID, issue.Type)
		if err != nil {
			return types.FixResult{}, false, err
		}
		if attempts >= maxRetries {
			return types.FixResult{
				DocumentID: doc.DocumentID,
				IssueType:  issue.Type,
				Status:     types.FixSkipped,
				Details:    fmt.Sprintf("retry budget exhausted after %d attempts", attempts),
				RetryCount: attempts,
			}, true, nil
		}

		fix := Fix(doc, issue, d.Files)
		fix.RetryCount = attempts + 1
		return fix, true, nil
	}
	return types.FixResult{}, false, nil
}

func (d *Doctor) ocrText(doc *types.LegalDocument) string {
	if doc.OCRPath == "" || !d.Files.Exists(doc.OCRPath) {
		return ""
	}
	data, err := os.ReadFile(doc.OCRPath)
	if err != nil {
		return ""
	}
	return string(data)
}
