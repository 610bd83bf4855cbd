// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aiex

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/legis-engine/pkg/types"
)

// promptOverheadTokens approximates the fixed instruction cost added to
// every chunk submission.
const promptOverheadTokens = 600

// Extractor drives the provider chain over chunked OCR text.
type Extractor struct {
	Chain        *Chain
	ChunkSize    int
	ChunkOverlap int
}

// NewExtractor builds the standard chain from configuration: local
// Ollama first, Groq cloud as fallback.
func NewExtractor(cfg types.AIConfig) *Extractor {
	return &Extractor{
		Chain: &Chain{
			Providers: []Provider{
				&OllamaProvider{BaseURL: cfg.OllamaURL},
				&GroqProvider{APIKey: cfg.GroqAPIKey},
			},
			MaxRetries: cfg.MaxRetries,
		},
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	}
}

// Extract submits the text through the chain, chunking when it exceeds
// the configured size, and merges the per-chunk results. Chunks whose
// responses fail to parse or validate are reported as warnings and left
// out of the merge. ErrNoProvider is returned when no provider could
// serve any chunk; the caller routes the document to manual handling.
func (e *Extractor) Extract(ctx context.Context, documentID, text string) (*types.ExtractionResult, []string, error) {
	chunks := SplitText(text, e.ChunkSize, e.ChunkOverlap)

	var results []*chunkResult
	var warnings []string

	for i, chunk := range chunks {
		prompt, err := renderPrompt(chunk)
		if err != nil {
			return nil, warnings, fmt.Errorf("rendering prompt: %w", err)
		}

		resp, provider, err := e.Chain.Complete(ctx, CompletionRequest{
			Prompt:    prompt,
			MaxTokens: 8192,
		}, false, estimateTokens(chunk))
		if err != nil {
			return nil, warnings, err
		}

		parsed, err := parseChunk(resp.Text)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("chunk %d/%d (%s): %v", i+1, len(chunks), provider, err))
			continue
		}
		results = append(results, parsed)
	}

	result := toExtraction(documentID, mergeChunks(results))
	result.Timestamp = time.Now().UTC()
	return result, warnings, nil
}

// estimateTokens approximates the token count of a chunk submission.
// Four characters per token is close enough for model selection.
func estimateTokens(chunk string) int {
	return len(chunk)/4 + promptOverheadTokens
}
