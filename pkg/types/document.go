// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the legis-engine pipeline.
package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DocumentStatus tracks the last pipeline stage that completed successfully
// for a document, plus terminal-negative outcomes.
type DocumentStatus string

const (
	StatusPending      DocumentStatus = "PENDING"
	StatusFetched      DocumentStatus = "FETCHED"
	StatusDownloaded   DocumentStatus = "DOWNLOADED"
	StatusOCRed        DocumentStatus = "OCRED"
	StatusExtracted    DocumentStatus = "EXTRACTED"
	StatusConsolidated DocumentStatus = "CONSOLIDATED"

	// StatusNotFound records a definitive 404 on every URL variant.
	StatusNotFound DocumentStatus = "NOT_FOUND"

	// StatusRateLimited records an exhausted 429 backoff. Unlike the FAILED
	// family it remains eligible for the same probe on a later pass.
	StatusRateLimited DocumentStatus = "RATE_LIMITED"

	StatusFailed              DocumentStatus = "FAILED"
	StatusFailedCorrupted     DocumentStatus = "FAILED_CORRUPTED"
	StatusFailedExtraction    DocumentStatus = "FAILED_EXTRACTION"
	StatusFailedConsolidation DocumentStatus = "FAILED_CONSOLIDATION"
)

// statusPredecessor encodes the forward pipeline adjacency as data. The
// doctor's rewind logic is a lookup here, not a switch.
var statusPredecessor = map[DocumentStatus]DocumentStatus{
	StatusFetched:      StatusPending,
	StatusDownloaded:   StatusFetched,
	StatusOCRed:        StatusDownloaded,
	StatusExtracted:    StatusOCRed,
	StatusConsolidated: StatusExtracted,

	// Failure states rewind to the input state of the stage that failed,
	// so the normal forward pipeline redoes the work.
	StatusFailedCorrupted:     StatusFetched,
	StatusFailedExtraction:    StatusOCRed,
	StatusFailedConsolidation: StatusExtracted,
}

// Previous returns the status immediately before s in the pipeline, and
// whether a predecessor exists. PENDING, NOT_FOUND, and RATE_LIMITED
// have no rewind target. FAILED has no static entry either: three
// stages produce it, so the doctor infers its rewind target from the
// document's artifact trail.
func (s DocumentStatus) Previous() (DocumentStatus, bool) {
	prev, ok := statusPredecessor[s]
	return prev, ok
}

// Terminal reports whether automated forward progress stops at s. A
// RATE_LIMITED document is not terminal: the same probe applies again.
func (s DocumentStatus) Terminal() bool {
	switch s {
	case StatusConsolidated, StatusNotFound, StatusFailed,
		StatusFailedCorrupted, StatusFailedExtraction, StatusFailedConsolidation:
		return true
	}
	return false
}

// LegalDocument is a single law or decree tracked through the pipeline.
// Identity is the (Type, Year, Number) triple; DocumentID is its derived
// key and is immutable once created.
type LegalDocument struct {
	// DocumentID is "{type}-{year}-{number}", e.g. "loi-2024-13".
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Type is the document category slug (e.g. "loi", "decret").
	Type string `json:"type" yaml:"type"`

	// Year is the publication year.
	Year int `json:"year" yaml:"year"`

	// Number is the per-year sequence number assigned by the publisher.
	Number int `json:"number" yaml:"number"`

	// Status is the last stage that completed successfully.
	Status DocumentStatus `json:"status" yaml:"status"`

	// SourceURL is the canonical URL the document was probed at. When the
	// zero-padded variant matched, this holds the working variant.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// PDFPath, OCRPath, and JSONPath are opaque artifact references owned
	// by the file store. Empty until the producing stage has run.
	PDFPath  string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`
	OCRPath  string `json:"ocr_path,omitempty" yaml:"ocr_path,omitempty"`
	JSONPath string `json:"json_path,omitempty" yaml:"json_path,omitempty"`

	// ErrorMessage describes the most recent failure, if any.
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`

	// UpdatedAt is the time of the last status change.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// DocumentID formats the canonical identity key for a (type, year, number)
// triple.
func DocumentID(docType string, year, number int) string {
	return fmt.Sprintf("%s-%d-%d", docType, year, number)
}

// ParseDocumentID splits a document ID back into its components. Malformed
// input (wrong part count, non-numeric year or number) returns ok=false;
// it never panics, since malformed IDs are skipped rather than reported.
func ParseDocumentID(id string) (docType string, year, number int, ok bool) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 {
		return "", 0, 0, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, false
	}
	number, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, false
	}
	return parts[0], year, number, true
}

// NewLegalDocument builds a PENDING document with its derived key.
func NewLegalDocument(docType string, year, number int) *LegalDocument {
	return &LegalDocument{
		DocumentID: DocumentID(docType, year, number),
		Type:       docType,
		Year:       year,
		Number:     number,
		Status:     StatusPending,
	}
}
