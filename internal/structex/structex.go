// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package structex extracts articles, metadata, and signatories from
// corrected OCR text with regular expressions, and scores the result with
// a confidence blend so callers can decide whether a fallback path is
// needed.
package structex

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/legis-engine/pkg/types"
)

// ErrNoArticles reports that no article structure was found at all. It is
// an expected steady-state outcome: the caller routes the document to the
// fallback path instead of crashing the pass.
var ErrNoArticles = errors.New("no articles found")

// DefaultMinArticleLength discards article spans shorter than this many
// characters as noise.
const DefaultMinArticleLength = 3

// Extractor holds the extraction settings.
type Extractor struct {
	// MinArticleLength overrides DefaultMinArticleLength when positive.
	MinArticleLength int
}

// Extract parses corrected OCR text into articles and metadata. The
// returned result always has its confidence computed, even when
// ErrNoArticles is returned alongside it.
func (e *Extractor) Extract(documentID, text string) (*types.ExtractionResult, error) {
	minLen := e.MinArticleLength
	if minLen <= 0 {
		minLen = DefaultMinArticleLength
	}

	articles := scanArticles(text, minLen)

	result := &types.ExtractionResult{
		DocumentID: documentID,
		Articles:   articles,
		Metadata:   extractMetadata(text),
		Method:     types.MethodRegex,
		Timestamp:  time.Now().UTC(),
	}
	result.Confidence = Confidence(articles, text)

	if len(articles) == 0 {
		return result, ErrNoArticles
	}
	return result, nil
}

// scanArticles walks the text line by line. An article-start line whose
// number equals the expected next value opens a new span; a start line
// with any other number is a citation inside the current body, not a new
// article. Spans shorter than minLen are dropped as noise, but the
// expected counter still advances past them: the publisher's numbering
// continues whether or not we keep the span.
func scanArticles(text string, minLen int) []types.Article {
	var articles []types.Article
	expected := 1

	var current *types.Article
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if len(content) >= minLen {
			current.Content = content
			articles = append(articles, *current)
		}
		current = nil
		body = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if m := articleStartRe.FindStringSubmatch(line); m != nil {
			if number, ok := articleNumber(m[1]); ok && number == expected {
				flush()
				current = &types.Article{Index: number}
				expected++
				if rest := strings.TrimSpace(m[2]); rest != "" {
					body = append(body, rest)
				}
				continue
			}
			// Citation of another article ("as per Article 12" inside
			// Article 3): falls through into the current body.
		}

		if articleEndRe.MatchString(line) {
			flush()
			continue
		}

		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	return articles
}

// articleNumber parses the captured article designation. The publisher
// writes the first article as "premier" or "1er" as often as "1".
func articleNumber(s string) (int, bool) {
	switch strings.ToLower(s) {
	case "premier", "1er":
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// extractMetadata fills the fixed metadata slots from the full text. Every
// field is best effort; absence is not an error.
func extractMetadata(text string) types.DocumentMetadata {
	var md types.DocumentMetadata

	if m := titleRe.FindStringSubmatch(text); m != nil {
		md.Title = strings.TrimSpace(m[1])
	}

	if m := promulgationRe.FindStringSubmatch(text); m != nil {
		md.PromulgationCity = strings.TrimSpace(m[1])
		md.PromulgationDate = normalizeFrenchDate(m[2])
	}

	md.Signatories = extractSignatories(text)
	return md
}

// extractSignatories pairs each known role line with the name line that
// follows it, preserving publication order.
func extractSignatories(text string) []types.Signatory {
	lines := strings.Split(text, "\n")
	var sigs []types.Signatory

	for i, line := range lines {
		m := signatoryRoleRe.FindStringSubmatch(line)
		if m == nil || i+1 >= len(lines) {
			continue
		}

		nameLine := lines[i+1]
		var mandateStart, mandateEnd string
		if mm := mandateRe.FindStringSubmatch(nameLine); mm != nil {
			mandateStart = normalizeFrenchDate(strings.TrimSpace(mm[1]))
			mandateEnd = normalizeFrenchDate(strings.TrimSpace(mm[2]))
			nameLine = mandateRe.ReplaceAllString(nameLine, "")
		}

		nm := signatoryNameRe.FindStringSubmatch(nameLine)
		if nm == nil {
			continue
		}
		name := strings.TrimRight(strings.TrimSpace(nm[1]), ".,")
		if name == "" {
			continue
		}

		sigs = append(sigs, types.Signatory{
			Role:         strings.TrimSpace(strings.TrimRight(m[1], " ,:")),
			Name:         name,
			MandateStart: mandateStart,
			MandateEnd:   mandateEnd,
		})
	}
	return sigs
}

var frenchMonths = map[string]time.Month{
	"janvier": time.January, "février": time.February, "mars": time.March,
	"avril": time.April, "mai": time.May, "juin": time.June,
	"juillet": time.July, "août": time.August, "septembre": time.September,
	"octobre": time.October, "novembre": time.November, "décembre": time.December,
}

// normalizeFrenchDate converts "1er janvier 2024" to "2024-01-01". Input
// that does not parse is returned as matched, which is still useful to a
// reader.
func normalizeFrenchDate(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 3 {
		return s
	}

	dayStr := strings.TrimSuffix(strings.ToLower(fields[0]), "er")
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return s
	}

	month, ok := frenchMonths[strings.ToLower(fields[1])]
	if !ok {
		return s
	}

	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return s
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
