// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aiex extracts document structure with a chain of AI providers
// when the regex extractor's confidence is too low. Long inputs are
// chunked, each chunk is submitted independently, and the per-chunk
// results are merged.
package aiex

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/legis-engine/pkg/types"
)

const (
	// DefaultChunkSize bounds a single model submission, in characters.
	DefaultChunkSize = 8000
	// DefaultChunkOverlap is carried from a chunk's tail into the next
	// chunk's head so article boundaries are not lost at the cut.
	DefaultChunkOverlap = 200
)

// SplitText splits text into chunks of about limit characters (the
// carried overlap may push a chunk slightly past it). It prefers
// paragraph breaks, falls back to line breaks when a paragraph
// alone exceeds the limit, and force-splits by rune count when a single
// line does. The last overlap characters of each chunk are repeated at
// the head of the next one.
func SplitText(text string, limit, overlap int) []string {
	if limit <= 0 {
		limit = DefaultChunkSize
	}
	if overlap < 0 || overlap >= limit {
		overlap = DefaultChunkOverlap
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0 // runes in cur; Builder.Len counts bytes

	flush := func() {
		if curLen == 0 {
			return
		}
		chunks = append(chunks, cur.String())
		cur.Reset()
		// Carry the tail of the previous chunk forward.
		tail := chunks[len(chunks)-1]
		runes := []rune(tail)
		if len(runes) > overlap {
			runes = runes[len(runes)-overlap:]
		}
		cur.WriteString(string(runes))
		curLen = len(runes)
	}

	for _, atom := range atomize(text, limit) {
		atomLen := utf8.RuneCountInString(atom)
		if curLen > 0 && curLen+atomLen+1 > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteString("\n")
			curLen++
		}
		cur.WriteString(atom)
		curLen += atomLen
	}
	if curLen > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// atomize breaks text into pieces that each fit within limit runes:
// paragraphs, then lines, then hard rune splits.
func atomize(text string, limit int) []string {
	var atoms []string
	for _, para := range strings.Split(text, "\n\n") {
		if utf8.RuneCountInString(para) <= limit {
			atoms = append(atoms, para)
			continue
		}
		for _, line := range strings.Split(para, "\n") {
			if utf8.RuneCountInString(line) <= limit {
				atoms = append(atoms, line)
				continue
			}
			runes := []rune(line)
			for len(runes) > 0 {
				n := limit
				if n > len(runes) {
					n = len(runes)
				}
				atoms = append(atoms, string(runes[:n]))
				runes = runes[n:]
			}
		}
	}
	return atoms
}

// JoinText recombines chunk outputs by ordered concatenation. Overlap is
// not de-duplicated: chunk outputs are self-contained results, not raw
// slices of the input.
func JoinText(chunks []string) string {
	return strings.Join(chunks, "\n")
}

// StructuredPayload is the JSON-object shape handled by the structured
// chunker: document metadata plus the articles array.
type StructuredPayload struct {
	Metadata types.DocumentMetadata `json:"metadata"`
	Articles []types.Article        `json:"articles"`
}

// SplitStructured partitions the articles array by cumulative serialized
// size, duplicating the metadata into every chunk. A single oversized
// article still gets its own chunk rather than being dropped.
func SplitStructured(p StructuredPayload, limit int) []StructuredPayload {
	if limit <= 0 {
		limit = DefaultChunkSize
	}

	base := StructuredPayload{Metadata: p.Metadata}
	baseSize := serializedSize(base)

	var chunks []StructuredPayload
	cur := base
	curSize := baseSize

	for _, a := range p.Articles {
		size := serializedSize(a)
		if len(cur.Articles) > 0 && curSize+size > limit {
			chunks = append(chunks, cur)
			cur = base
			cur.Articles = nil
			curSize = baseSize
		}
		cur.Articles = append(cur.Articles, a)
		curSize += size
	}
	chunks = append(chunks, cur)
	return chunks
}

// JoinStructured recombines structured chunks: metadata from the first
// chunk, articles concatenated in chunk order.
func JoinStructured(chunks []StructuredPayload) StructuredPayload {
	if len(chunks) == 0 {
		return StructuredPayload{}
	}
	out := StructuredPayload{Metadata: chunks[0].Metadata}
	for _, c := range chunks {
		out.Articles = append(out.Articles, c.Articles...)
	}
	return out
}

func serializedSize(v any) int {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(b)
}
