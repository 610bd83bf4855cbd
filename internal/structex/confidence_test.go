// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package structex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/legis-engine/pkg/types"
)

func articlesOf(indices ...int) []types.Article {
	out := make([]types.Article, len(indices))
	for i, n := range indices {
		out[i] = types.Article{Index: n, Content: "contenu"}
	}
	return out
}

func TestConfidence_Bounds(t *testing.T) {
	assert.Equal(t, 0.0, Confidence(nil, ""))

	// Saturate every term: many articles, long recognized legal text.
	text := strings.Repeat("la loi décret article république ministre président "+
		"constitution vigueur disposition conseil gouvernement ordonnance ", 20)
	c := Confidence(articlesOf(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), text)
	assert.LessOrEqual(t, c, 1.0)
	assert.Greater(t, c, 0.8)
}

func TestConfidence_MoreArticlesNeverLowers(t *testing.T) {
	text := "la loi est promulguée par le président de la république"
	prev := 0.0
	for n := 0; n <= 12; n++ {
		c := Confidence(articlesOf(seq(n)...), text)
		assert.GreaterOrEqual(t, c, prev, "articles=%d", n)
		prev = c
	}
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestConfidence_RecognizedTextScoresHigher(t *testing.T) {
	french := "la république garantit les dispositions de la constitution et de la loi"
	garbage := "xqzvw plorth grumbik snarfle vextrop quuxzle morpheme zanthic blorpt wizzle"

	assert.Greater(t, Confidence(articlesOf(1), french), Confidence(articlesOf(1), garbage))
}

func TestUnrecognizedWordRate(t *testing.T) {
	assert.Equal(t, 1.0, UnrecognizedWordRate(""))
	assert.Equal(t, 1.0, UnrecognizedWordRate("xx yy"), "short tokens ignored, nothing left counts as unrecognized")
	assert.Equal(t, 0.0, UnrecognizedWordRate("la loi est promulguée"))
	assert.Equal(t, 0.5, UnrecognizedWordRate("loi zorglub"))
}

func TestSequenceAnomalies(t *testing.T) {
	tests := []struct {
		name     string
		articles []types.Article
		want     []string
	}{
		{"clean", articlesOf(1, 2, 3), nil},
		{"empty", nil, nil},
		{"gap", articlesOf(1, 3), []string{"gap before article 3"}},
		{"duplicate", articlesOf(1, 2, 2), []string{"duplicate article 2"}},
		{"out of order", articlesOf(2, 1), []string{"gap before article 2", "out-of-order article 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SequenceAnomalies(tt.articles))
		})
	}
}
