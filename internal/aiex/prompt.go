// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aiex

import (
	"bytes"
	"text/template"
)

// extractionPromptTmpl is the prompt sent for each chunk of OCR text. It
// instructs the model to return the document's structure as strict JSON.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`You are a legal document structuring system. The following text is OCR output from a French law or decree. Extract its structure.

Return a JSON object with these fields:
- title: the document's title line, or "" if not present in this text
- promulgation_date: the promulgation date in ISO format (YYYY-MM-DD), or "" if absent
- promulgation_city: the city from the "Fait à ..." formula, or "" if absent
- signatories: array of {"role", "name", "mandate_start", "mandate_end"} objects in publication order; mandate fields are ISO dates or ""
- articles: array of {"index", "content"} objects, where index is the article's published number (1-based, "Article premier" is 1) and content is the article's full body text verbatim

Rules:
- Preserve the original French text exactly; do not translate or paraphrase.
- A reference like "l'article 12 du code civil" inside an article's body is a citation, not a new article.
- Do not include any text outside the JSON object.

Example response:
{"title": "LOI n° 2024-1 relative aux exemples", "promulgation_date": "2024-01-15", "promulgation_city": "Paris", "signatories": [{"role": "Le Président de la République", "name": "J. DUPONT", "mandate_start": "", "mandate_end": ""}], "articles": [{"index": 1, "content": "La présente loi s'applique."}]}

Document text:
{{.Text}}
`))

func renderPrompt(text string) (string, error) {
	var buf bytes.Buffer
	if err := extractionPromptTmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
