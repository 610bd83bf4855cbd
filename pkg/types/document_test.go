// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentIDRoundTrip(t *testing.T) {
	tests := []struct {
		docType string
		year    int
		number  int
		want    string
	}{
		{"loi", 2024, 1, "loi-2024-1"},
		{"loi", 2024, 13, "loi-2024-13"},
		{"decret", 1999, 2000, "decret-1999-2000"},
	}

	for _, tt := range tests {
		id := DocumentID(tt.docType, tt.year, tt.number)
		assert.Equal(t, tt.want, id)

		docType, year, number, ok := ParseDocumentID(id)
		require.True(t, ok)
		assert.Equal(t, tt.docType, docType)
		assert.Equal(t, tt.year, year)
		assert.Equal(t, tt.number, number)
	}
}

func TestParseDocumentID_Malformed(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"too few parts", "loi-2024"},
		{"too many parts", "loi-2024-1-extra"},
		{"non-numeric year", "loi-yyyy-1"},
		{"non-numeric number", "loi-2024-n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, ok := ParseDocumentID(tt.id)
			assert.False(t, ok)
		})
	}
}

func TestStatusPrevious(t *testing.T) {
	tests := []struct {
		status  DocumentStatus
		want    DocumentStatus
		rewinds bool
	}{
		{StatusFetched, StatusPending, true},
		{StatusDownloaded, StatusFetched, true},
		{StatusOCRed, StatusDownloaded, true},
		{StatusExtracted, StatusOCRed, true},
		{StatusConsolidated, StatusExtracted, true},
		{StatusFailedCorrupted, StatusFetched, true},
		{StatusFailedExtraction, StatusOCRed, true},
		{StatusFailedConsolidation, StatusExtracted, true},
		{StatusPending, "", false},
		{StatusNotFound, "", false},
		{StatusRateLimited, "", false},
		{StatusFailed, "", false},
	}

	for _, tt := range tests {
		prev, ok := tt.status.Previous()
		assert.Equal(t, tt.rewinds, ok, "status %s", tt.status)
		if tt.rewinds {
			assert.Equal(t, tt.want, prev, "status %s", tt.status)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusRateLimited.Terminal(), "RATE_LIMITED stays eligible for the same probe")
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusExtracted.Terminal())
	assert.True(t, StatusConsolidated.Terminal())
	assert.True(t, StatusNotFound.Terminal())
	assert.True(t, StatusFailedExtraction.Terminal())
}

func TestCursorBefore(t *testing.T) {
	c := FetchCursor{CurrentYear: 2020, CurrentNumber: 50}

	assert.True(t, c.Before(2021, 1), "newer year already passed")
	assert.True(t, c.Before(2020, 10), "earlier number in cursor year already passed")
	assert.False(t, c.Before(2020, 50), "cursor position itself is next")
	assert.False(t, c.Before(2020, 51))
	assert.False(t, c.Before(2019, 1), "older year not yet reached")
}
