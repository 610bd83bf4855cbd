// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aiex

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/legis-engine/internal/structex"
	"github.com/pdiddy/legis-engine/pkg/types"
)

// responseSchema validates the model's JSON before it is trusted. A
// chunk that fails validation becomes a warning, not a document failure.
const responseSchema = `{
	"type": "object",
	"required": ["articles"],
	"properties": {
		"title": {"type": "string"},
		"promulgation_date": {"type": "string"},
		"promulgation_city": {"type": "string"},
		"signatories": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["role", "name"],
				"properties": {
					"role": {"type": "string", "minLength": 1},
					"name": {"type": "string", "minLength": 1},
					"mandate_start": {"type": "string"},
					"mandate_end": {"type": "string"}
				}
			}
		},
		"articles": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["index", "content"],
				"properties": {
					"index": {"type": "integer", "minimum": 1},
					"content": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

var compiledSchema = jsonschema.MustCompileString("response.json", responseSchema)

// chunkResult is one chunk's parsed model output.
type chunkResult struct {
	Title            string           `json:"title"`
	PromulgationDate string           `json:"promulgation_date"`
	PromulgationCity string           `json:"promulgation_city"`
	Signatories      []chunkSignatory `json:"signatories"`
	Articles         []chunkArticle   `json:"articles"`
}

type chunkSignatory struct {
	Role         string `json:"role"`
	Name         string `json:"name"`
	MandateStart string `json:"mandate_start"`
	MandateEnd   string `json:"mandate_end"`
}

type chunkArticle struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
}

// parseChunk extracts and validates the JSON object in a model response.
// Models sometimes wrap the object in prose or a code fence; the parser
// takes the outermost braces.
func parseChunk(text string) (*chunkResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	raw := text[start : end+1]

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}
	if err := compiledSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("response failed validation: %w", err)
	}

	var result chunkResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &result, nil
}

// mergeChunks combines per-chunk results into a single result. Metadata
// comes from the first chunk that carries each field; articles are
// de-duplicated by index (first occurrence wins) and re-sorted.
func mergeChunks(results []*chunkResult) chunkResult {
	var merged chunkResult
	seen := make(map[int]bool)

	for _, r := range results {
		if r == nil {
			continue
		}
		if merged.Title == "" {
			merged.Title = r.Title
		}
		if merged.PromulgationDate == "" {
			merged.PromulgationDate = r.PromulgationDate
		}
		if merged.PromulgationCity == "" {
			merged.PromulgationCity = r.PromulgationCity
		}
		if len(merged.Signatories) == 0 {
			merged.Signatories = r.Signatories
		}
		for _, a := range r.Articles {
			if seen[a.Index] {
				continue
			}
			seen[a.Index] = true
			merged.Articles = append(merged.Articles, a)
		}
	}

	sort.Slice(merged.Articles, func(i, j int) bool {
		return merged.Articles[i].Index < merged.Articles[j].Index
	})
	return merged
}

// toExtraction converts a merged chunk result into the pipeline's result
// type.
func toExtraction(documentID string, merged chunkResult) *types.ExtractionResult {
	result := &types.ExtractionResult{
		DocumentID: documentID,
		Method:     types.MethodAI,
		Metadata: types.DocumentMetadata{
			Title:            merged.Title,
			PromulgationDate: merged.PromulgationDate,
			PromulgationCity: merged.PromulgationCity,
		},
	}
	for _, s := range merged.Signatories {
		result.Metadata.Signatories = append(result.Metadata.Signatories, types.Signatory{
			Role:         s.Role,
			Name:         s.Name,
			MandateStart: s.MandateStart,
			MandateEnd:   s.MandateEnd,
		})
	}
	for _, a := range merged.Articles {
		result.Articles = append(result.Articles, types.Article{
			Index:   a.Index,
			Content: a.Content,
		})
	}
	result.Confidence = aiConfidence(result)
	return result
}

// AI confidence blend weights. Unlike the regex blend, this one scores
// the shape of the model's output rather than the source text.
const (
	weightArticles   = 0.40
	weightMetadata   = 0.25
	weightSequence   = 0.20
	weightSignatures = 0.15

	aiArticleScale = 10
)

// aiConfidence scores an AI extraction from the presence of articles,
// metadata fields, sequence validity, and signatories.
func aiConfidence(r *types.ExtractionResult) float64 {
	articleTerm := float64(len(r.Articles)) / aiArticleScale
	if articleTerm > 1 {
		articleTerm = 1
	}

	fields := 0
	if r.Metadata.Title != "" {
		fields++
	}
	if r.Metadata.PromulgationDate != "" {
		fields++
	}
	if r.Metadata.PromulgationCity != "" {
		fields++
	}
	metadataTerm := float64(fields) / 3

	sequenceTerm := 0.0
	if len(r.Articles) > 0 {
		anomalies := structex.SequenceAnomalies(r.Articles)
		sequenceTerm = 1 - float64(len(anomalies))/float64(len(r.Articles))
		if sequenceTerm < 0 {
			sequenceTerm = 0
		}
	}

	signatureTerm := 0.0
	if len(r.Metadata.Signatories) > 0 {
		signatureTerm = 1
	}

	return weightArticles*articleTerm +
		weightMetadata*metadataTerm +
		weightSequence*sequenceTerm +
		weightSignatures*signatureTerm
}
