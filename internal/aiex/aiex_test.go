// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aiex

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/legis-engine/pkg/types"
)

func TestExtractor_SingleChunk(t *testing.T) {
	p := okProvider("mock", `{"title": "LOI n° 2024-1", "articles": [{"index": 1, "content": "Texte complet."}]}`)
	e := &Extractor{Chain: &Chain{Providers: []Provider{p}}}

	result, warnings, err := e.Extract(context.Background(), "loi-2024-1", "Article 1\nTexte complet.")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "loi-2024-1", result.DocumentID)
	assert.Equal(t, types.MethodAI, result.Method)
	assert.Equal(t, "LOI n° 2024-1", result.Metadata.Title)
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "Texte complet.", result.Articles[0].Content)
	assert.False(t, result.Timestamp.IsZero())
}

func TestExtractor_LongTextIsChunked(t *testing.T) {
	responses := []string{
		`{"articles": [{"index": 1, "content": "premier"}]}`,
		`{"articles": [{"index": 1, "content": "premier-bis"}, {"index": 2, "content": "deuxième"}]}`,
	}
	calls := 0
	p := &mockProvider{
		name: "mock", available: true, hasModel: true,
		model: Model{Name: "m", ContextTokens: 100000},
		complete: func(int) (CompletionResponse, error) {
			resp := responses[calls%len(responses)]
			calls++
			return CompletionResponse{Text: resp}, nil
		},
	}
	e := &Extractor{
		Chain:        &Chain{Providers: []Provider{p}},
		ChunkSize:    300,
		ChunkOverlap: 30,
	}

	text := strings.Repeat("Texte de loi. ", 20) + "\n\n" + strings.Repeat("Encore du texte. ", 20)
	result, warnings, err := e.Extract(context.Background(), "loi-2024-2", text)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.GreaterOrEqual(t, calls, 2, "long text submits multiple chunks")

	// Overlapping chunks both reported article 1; the first wins.
	require.Len(t, result.Articles, 2)
	assert.Equal(t, "premier", result.Articles[0].Content)
	assert.Equal(t, "deuxième", result.Articles[1].Content)
}

func TestExtractor_BadChunkBecomesWarning(t *testing.T) {
	responses := []string{
		`{"articles": [{"index": 1, "content": "premier"}]}`,
		`I am sorry, I cannot help with that.`,
	}
	calls := 0
	p := &mockProvider{
		name: "mock", available: true, hasModel: true,
		model: Model{Name: "m", ContextTokens: 100000},
		complete: func(int) (CompletionResponse, error) {
			resp := responses[calls%len(responses)]
			calls++
			return CompletionResponse{Text: resp}, nil
		},
	}
	e := &Extractor{
		Chain:        &Chain{Providers: []Provider{p}},
		ChunkSize:    300,
		ChunkOverlap: 30,
	}

	text := strings.Repeat("Texte de loi. ", 20) + "\n\n" + strings.Repeat("Encore du texte. ", 20)
	result, warnings, err := e.Extract(context.Background(), "loi-2024-3", text)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "chunk 2/")

	// The failed chunk is excluded, not fatal.
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "premier", result.Articles[0].Content)
}

func TestExtractor_NoProvider(t *testing.T) {
	down := okProvider("down", "never")
	down.available = false
	e := &Extractor{Chain: &Chain{Providers: []Provider{down}}}

	_, _, err := e.Extract(context.Background(), "loi-2024-4", "Article 1\nTexte.")
	assert.ErrorIs(t, err, ErrNoProvider)
}
