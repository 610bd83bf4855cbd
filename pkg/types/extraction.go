// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Article is one numbered article of a legal document. Articles are owned
// by a single document and replaced wholesale on re-extraction.
type Article struct {
	// Index is the 1-based article number, validated against the expected
	// sequence during extraction.
	Index int `json:"index" yaml:"index"`

	// Content is the article body text. Never empty for an accepted article.
	Content string `json:"content" yaml:"content"`
}

// Signatory is one signer of the promulgation, in publication order.
type Signatory struct {
	Role string `json:"role" yaml:"role"`
	Name string `json:"name" yaml:"name"`

	// MandateStart and MandateEnd bound the signer's term when the source
	// states them. Best effort; empty means unknown.
	MandateStart string `json:"mandate_start,omitempty" yaml:"mandate_start,omitempty"`
	MandateEnd   string `json:"mandate_end,omitempty" yaml:"mandate_end,omitempty"`
}

// DocumentMetadata holds best-effort header fields of a document. Absence
// of any field is not an error.
type DocumentMetadata struct {
	Title            string      `json:"title,omitempty" yaml:"title,omitempty"`
	PromulgationDate string      `json:"promulgation_date,omitempty" yaml:"promulgation_date,omitempty"`
	PromulgationCity string      `json:"promulgation_city,omitempty" yaml:"promulgation_city,omitempty"`
	Signatories      []Signatory `json:"signatories,omitempty" yaml:"signatories,omitempty"`
}

// ExtractionMethod identifies which path produced an ExtractionResult.
type ExtractionMethod string

const (
	MethodRegex ExtractionMethod = "regex"
	MethodAI    ExtractionMethod = "ai"
)

// ExtractionResult is the structured output of either extraction path.
// Confidence is the single scalar deciding whether this result supersedes
// a previously stored one.
type ExtractionResult struct {
	DocumentID string           `json:"document_id" yaml:"document_id"`
	Articles   []Article        `json:"articles" yaml:"articles"`
	Metadata   DocumentMetadata `json:"metadata" yaml:"metadata"`

	// Confidence is in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	Method    ExtractionMethod `json:"method" yaml:"method"`
	Timestamp time.Time        `json:"timestamp" yaml:"timestamp"`
}
