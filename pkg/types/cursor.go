// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CursorType distinguishes independent scan positions for the same
// document type.
type CursorType string

const (
	// CursorPreviousYears tracks the resumable backward scan over past
	// publication years.
	CursorPreviousYears CursorType = "previous_years"
)

// FetchCursor is the persisted resumption point of a backward scan. For a
// given (DocumentType, CursorType) the (CurrentYear, CurrentNumber) pair is
// monotonically non-increasing in scan order; only the scanner that owns
// the cursor type writes it.
type FetchCursor struct {
	DocumentType string     `json:"document_type" yaml:"document_type"`
	CursorType   CursorType `json:"cursor_type" yaml:"cursor_type"`

	// CurrentYear and CurrentNumber identify the next position to probe.
	CurrentYear   int `json:"current_year" yaml:"current_year"`
	CurrentNumber int `json:"current_number" yaml:"current_number"`
}

// Before reports whether position (year, number) comes strictly later in
// the backward scan than the cursor position, i.e. has already been
// passed. Scan order is descending year, then ascending number within a
// year.
func (c FetchCursor) Before(year, number int) bool {
	if year != c.CurrentYear {
		return year > c.CurrentYear
	}
	return number < c.CurrentNumber
}
