// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// IssueType classifies a defect detected on a document at rest.
type IssueType string

const (
	IssueStuckStatus     IssueType = "STUCK_STATUS"
	IssueMissingPDF      IssueType = "MISSING_PDF"
	IssueMissingOCR      IssueType = "MISSING_OCR"
	IssueMissingJSON     IssueType = "MISSING_JSON"
	IssueLowConfidence   IssueType = "LOW_CONFIDENCE"
	IssueHighUnknownRate IssueType = "HIGH_UNKNOWN_WORD_RATE"
	IssueBadSequence     IssueType = "ARTICLE_SEQUENCE_ANOMALY"
	IssueZeroArticles    IssueType = "ZERO_ARTICLES"
)

// IssueSeverity orders issues for fixing; higher values fix first.
type IssueSeverity int

const (
	SeverityLow IssueSeverity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the severity label used in reports.
func (s IssueSeverity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// Issue is an ephemeral diagnosis of one document. Issues are produced by
// detection and consumed by fixing within a single doctor run; they are
// not persisted as a source of truth.
type Issue struct {
	DocumentID      string         `json:"document_id" yaml:"document_id"`
	Type            IssueType      `json:"type" yaml:"type"`
	Severity        IssueSeverity  `json:"severity" yaml:"severity"`
	Description     string         `json:"description" yaml:"description"`
	CurrentStatus   DocumentStatus `json:"current_status" yaml:"current_status"`
	SuggestedAction string         `json:"suggested_action" yaml:"suggested_action"`
	AutoFixable     bool           `json:"auto_fixable" yaml:"auto_fixable"`
}

// FixStatus is the outcome of one repair attempt.
type FixStatus string

const (
	FixSuccess FixStatus = "SUCCESS"
	FixFailed  FixStatus = "FAILED"
	FixSkipped FixStatus = "SKIPPED"
)

// FixResult is the audit record of a repair attempt on one document.
type FixResult struct {
	// RunID groups results from a single doctor invocation.
	RunID string `json:"run_id" yaml:"run_id"`

	DocumentID string    `json:"document_id" yaml:"document_id"`
	IssueType  IssueType `json:"issue_type" yaml:"issue_type"`
	Status     FixStatus `json:"status" yaml:"status"`

	// Action describes the repair applied, e.g. "rewind DOWNLOADED -> FETCHED".
	Action  string `json:"action" yaml:"action"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`

	// RetryCount is how many times this document has been rewound for the
	// same issue type across doctor runs.
	RetryCount int `json:"retry_count" yaml:"retry_count"`
}
