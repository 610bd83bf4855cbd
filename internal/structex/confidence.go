// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package structex

import (
	"strconv"
	"strings"

	"github.com/pdiddy/legis-engine/pkg/types"
)

// Confidence blend weights. Each term is clamped to [0,1] before
// weighting; the weights sum to 1 so the blend stays in [0,1].
const (
	weightArticleCount = 0.30
	weightTextLength   = 0.20
	weightDictionary   = 0.30
	weightLegalDensity = 0.20

	articleCountScale = 10
	textLengthScale   = 5000
	legalTermScale    = 8

	minTokenLength = 3
)

// legalTerms is the reference vocabulary for the density term. Distinct
// hits are counted, not occurrences.
var legalTerms = []string{
	"loi", "décret", "article", "république", "ministre", "président",
	"promulgue", "promulguée", "constitution", "vigueur", "disposition",
	"dispositions", "conseil", "gouvernement", "ordonnance", "abrogé",
	"alinéa", "exécution", "journal", "officiel",
}

// Confidence computes the extraction quality score for a set of articles
// found in the given source text.
func Confidence(articles []types.Article, text string) float64 {
	articleTerm := clamp01(float64(len(articles)) / articleCountScale)
	lengthTerm := clamp01(float64(len(text)) / textLengthScale)
	dictTerm := clamp01(1 - UnrecognizedWordRate(text))
	legalTerm := clamp01(float64(distinctLegalTerms(text)) / legalTermScale)

	return weightArticleCount*articleTerm +
		weightTextLength*lengthTerm +
		weightDictionary*dictTerm +
		weightLegalDensity*legalTerm
}

// UnrecognizedWordRate tokenizes on non-letter boundaries, lowercases,
// ignores tokens under three characters, and returns the fraction of
// remaining tokens absent from the reference word list. Empty input rates
// fully unrecognized: there is nothing to recognize.
func UnrecognizedWordRate(text string) float64 {
	total, unknown := 0, 0
	for _, tok := range tokenRe.FindAllString(text, -1) {
		if len([]rune(tok)) < minTokenLength {
			continue
		}
		total++
		if !dictionary[strings.ToLower(tok)] {
			unknown++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(unknown) / float64(total)
}

func distinctLegalTerms(text string) int {
	lower := strings.ToLower(text)
	found := 0
	for _, term := range legalTerms {
		if strings.Contains(lower, term) {
			found++
		}
	}
	return found
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SequenceAnomalies returns a description of gaps, duplicates, or
// out-of-order article indices, or an empty slice when the sequence is
// clean 1..n. The doctor's quality detector and the AI merge both rely on
// this check.
func SequenceAnomalies(articles []types.Article) []string {
	var anomalies []string
	seen := make(map[int]bool)
	prev := 0

	for _, a := range articles {
		switch {
		case seen[a.Index]:
			anomalies = append(anomalies, "duplicate article "+strconv.Itoa(a.Index))
		case a.Index <= prev:
			anomalies = append(anomalies, "out-of-order article "+strconv.Itoa(a.Index))
		case a.Index != prev+1:
			anomalies = append(anomalies, "gap before article "+strconv.Itoa(a.Index))
		}
		seen[a.Index] = true
		if a.Index > prev {
			prev = a.Index
		}
	}
	return anomalies
}
