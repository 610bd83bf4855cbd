// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package correct applies a deterministic substitution table to raw OCR
// text before structural extraction. The table targets confusions OCR
// engines consistently make on French legal typography; applying it twice
// changes nothing.
package correct

import (
	"regexp"
	"strings"
)

// literal substitutions, applied in order. Later entries may rely on
// earlier ones having run.
var literals = [][2]string{
	{" ", " "},     // non-breaking space
	{"\uFEFF", ""}, // BOM fragments mid-stream
	{"ﬁ", "fi"},
	{"ﬂ", "fl"},
	{"œ", "oe"},
	{"Œ", "Oe"},
	{"’", "'"},
	{"‘", "'"},
	{"«", "\""},
	{"»", "\""},
	{"Artic1e", "Article"},
	{"ARTlCLE", "ARTICLE"},
	{"Artlcle", "Article"},
}

// patterns are regex substitutions for confusions that need context.
var patterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Digit one misread as the article "l'" before a vowel: "1'exécution".
	{regexp.MustCompile(`\b1'`), "l'"},
	// Letter O misread inside numbers: "2O24".
	{regexp.MustCompile(`(\d)O(\d)`), "${1}0${2}"},
	{regexp.MustCompile(`(\d)O\b`), "${1}0"},
	// Lone lowercase l misread for 1 in "Article l".
	{regexp.MustCompile(`\bArticle l\b`), "Article 1"},
	// Collapse runs of spaces and tabs left by column layouts.
	{regexp.MustCompile(`[ \t]{2,}`), " "},
	// Trim trailing whitespace per line.
	{regexp.MustCompile(`[ \t]+\n`), "\n"},
}

// Apply runs the substitution table over text and returns the corrected
// result.
func Apply(text string) string {
	for _, sub := range literals {
		text = strings.ReplaceAll(text, sub[0], sub[1])
	}
	for _, p := range patterns {
		text = p.re.ReplaceAllString(text, p.repl)
	}
	return text
}
