// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package structex

import "regexp"

// articleStartRe matches a line that opens an article: "Article 3",
// "Article premier", "Art. 12", optionally followed by separator and
// inline body. The number (or "premier") is captured for sequence
// validation.
var articleStartRe = regexp.MustCompile(
	`^\s*(?:Article|ARTICLE|Art\.)\s+(premier|Premier|1er|\d+)\s*(?:[.:–—-]\s*)?(.*)$`)

// articleEndRe matches lines that close the article body for the whole
// document: the promulgation block and the execution formula.
var articleEndRe = regexp.MustCompile(
	`^\s*(?:Fait à\s|La présente loi sera exécutée|Le présent décret sera publié)`)

// titleRe captures the document title line.
var titleRe = regexp.MustCompile(
	`(?m)^\s*((?:LOI|Loi|DÉCRET|Décret|ORDONNANCE|Ordonnance)\s+n[°o]?\s*[\d.-]+[^\n]*)$`)

// promulgationRe captures city and date from the "Fait à <city>, le
// <date>" formula.
var promulgationRe = regexp.MustCompile(
	`Fait à\s+([A-ZÀ-Ý][\p{L}' -]*?),?\s+le\s+(\d{1,2}(?:er)?\s+\p{L}+\s+\d{4})`)

// signatoryRoleRe matches the known signatory role lines, in the order
// the publisher prints them.
var signatoryRoleRe = regexp.MustCompile(
	`(?m)^\s*(Le Président de la République|Le Premier ministre|La Première ministre|` +
		`Le garde des sceaux[^,:\n]*|Le ministre[^,:\n]*|La ministre[^,:\n]*|` +
		`Le secrétaire d'État[^,:\n]*|La secrétaire d'État[^,:\n]*)\s*[,:]?\s*$`)

// signatoryNameRe matches a name line following a role: capitalized
// words, initials allowed.
var signatoryNameRe = regexp.MustCompile(
	`^\s*((?:[A-ZÀ-Ý][\p{L}'.-]*\s*)+)$`)

// mandateRe captures optional mandate bounds printed after a name,
// e.g. "(du 3 juillet 2020 au 16 mai 2022)".
var mandateRe = regexp.MustCompile(
	`\((?:en fonction )?du\s+([^)]+?)\s+au\s+([^)]+?)\)`)

// tokenRe splits text on non-letter boundaries for the dictionary check.
var tokenRe = regexp.MustCompile(`\p{L}+`)
