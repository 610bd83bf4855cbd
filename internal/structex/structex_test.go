// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package structex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/legis-engine/pkg/types"
)

func TestExtract_TwoArticles(t *testing.T) {
	e := &Extractor{}
	result, err := e.Extract("loi-2024-1", "Article 1\nFoo.\n\nArticle 2\nBar.\n")
	require.NoError(t, err)

	require.Len(t, result.Articles, 2)
	assert.Equal(t, 1, result.Articles[0].Index)
	assert.Equal(t, "Foo.", result.Articles[0].Content)
	assert.Equal(t, 2, result.Articles[1].Index)
	assert.Equal(t, "Bar.", result.Articles[1].Content)

	assert.Equal(t, types.MethodRegex, result.Method)
	assert.Greater(t, result.Confidence, 0.0, "at least one legal term is present")
}

func TestExtract_SequenceValidation(t *testing.T) {
	text := "Article 1\nPremier texte.\nArticle 2\nDeuxième texte.\nArticle 3\nTroisième texte.\n"
	result, err := (&Extractor{}).Extract("loi-2024-2", text)
	require.NoError(t, err)

	require.Len(t, result.Articles, 3)
	for i, a := range result.Articles {
		assert.Equal(t, i+1, a.Index)
	}
}

func TestExtract_CitationIsNotANewArticle(t *testing.T) {
	text := strings.Join([]string{
		"Article 1",
		"Les dispositions générales s'appliquent.",
		"Article 2",
		"Par dérogation aux conditions prévues à l'",
		"Article 12", // citation: expected next is 3, not 12
		"du code civil, le délai est de deux mois.",
		"Article 3",
		"La présente loi entre en vigueur.",
	}, "\n")

	result, err := (&Extractor{}).Extract("loi-2024-3", text)
	require.NoError(t, err)

	require.Len(t, result.Articles, 3)
	assert.Contains(t, result.Articles[1].Content, "Article 12",
		"the citation stays inside article 2's body")
	assert.Equal(t, 3, result.Articles[2].Index)
}

func TestExtract_ArticlePremier(t *testing.T) {
	text := "Article premier\nLa République garantit.\nArticle 2\nSuite du texte.\n"
	result, err := (&Extractor{}).Extract("loi-2024-4", text)
	require.NoError(t, err)

	require.Len(t, result.Articles, 2)
	assert.Equal(t, 1, result.Articles[0].Index)
	assert.Contains(t, result.Articles[0].Content, "République")
}

func TestExtract_ShortSpansDiscardedAsNoise(t *testing.T) {
	e := &Extractor{MinArticleLength: 20}
	text := "Article 1\nX.\nArticle 2\nUn contenu suffisamment long pour être conservé.\n"
	result, err := e.Extract("loi-2024-5", text)
	require.NoError(t, err)

	require.Len(t, result.Articles, 1)
	// The counter advanced past the discarded span: the kept article keeps
	// the publisher's numbering.
	assert.Equal(t, 2, result.Articles[0].Index)
}

func TestExtract_NoArticles(t *testing.T) {
	result, err := (&Extractor{}).Extract("loi-2024-6", "Du texte sans aucune structure.")
	require.ErrorIs(t, err, ErrNoArticles)
	require.NotNil(t, result, "result still carries metadata and confidence for diagnostics")
	assert.Empty(t, result.Articles)
}

func TestExtract_EndPatternClosesLastArticle(t *testing.T) {
	text := strings.Join([]string{
		"Article 1",
		"Les dispositions entrent en vigueur immédiatement.",
		"Fait à Paris, le 1er janvier 2024.",
		"Le Président de la République,",
		"J. DUPONT",
	}, "\n")

	result, err := (&Extractor{}).Extract("loi-2024-7", text)
	require.NoError(t, err)
	require.Len(t, result.Articles, 1)
	assert.NotContains(t, result.Articles[0].Content, "Fait à",
		"the promulgation block is not article body")
}

func TestExtractMetadata(t *testing.T) {
	text := strings.Join([]string{
		"LOI n° 2024-13 relative à la simplification administrative",
		"",
		"Article 1",
		"Le texte de la loi.",
		"Fait à Paris, le 15 mars 2024.",
		"Le Président de la République,",
		"J. DUPONT",
		"Le Premier ministre,",
		"M. MARTIN (du 3 juillet 2020 au 16 mai 2022)",
	}, "\n")

	result, err := (&Extractor{}).Extract("loi-2024-13", text)
	require.NoError(t, err)

	md := result.Metadata
	assert.Equal(t, "LOI n° 2024-13 relative à la simplification administrative", md.Title)
	assert.Equal(t, "Paris", md.PromulgationCity)
	assert.Equal(t, "2024-03-15", md.PromulgationDate)

	require.Len(t, md.Signatories, 2)
	assert.Equal(t, "Le Président de la République", md.Signatories[0].Role)
	assert.Equal(t, "J. DUPONT", md.Signatories[0].Name)
	assert.Equal(t, "Le Premier ministre", md.Signatories[1].Role)
	assert.Equal(t, "M. MARTIN", md.Signatories[1].Name)
	assert.Equal(t, "2020-07-03", md.Signatories[1].MandateStart)
	assert.Equal(t, "2022-05-16", md.Signatories[1].MandateEnd)
}

func TestNormalizeFrenchDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1er janvier 2024", "2024-01-01"},
		{"15 mars 2024", "2024-03-15"},
		{"31 décembre 1999", "1999-12-31"},
		{"not a date", "not a date"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeFrenchDate(tt.in))
	}
}
