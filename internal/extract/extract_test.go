// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/legis-engine/internal/aiex"
	"github.com/pdiddy/legis-engine/internal/files"
	"github.com/pdiddy/legis-engine/internal/structex"
	"github.com/pdiddy/legis-engine/pkg/types"
)

type memStore struct {
	mu   sync.Mutex
	docs map[string]*types.LegalDocument
}

func newMemStore(docs ...*types.LegalDocument) *memStore {
	m := &memStore{docs: make(map[string]*types.LegalDocument)}
	for _, d := range docs {
		m.docs[d.DocumentID] = d
	}
	return m
}

func (m *memStore) FindByStatus(_ context.Context, status types.DocumentStatus, limit int) ([]*types.LegalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.LegalDocument
	for _, d := range m.docs {
		if d.Status == status {
			out = append(out, d)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) Save(_ context.Context, doc *types.LegalDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.DocumentID] = doc
	return nil
}

// fakeFallback scripts the AI path.
type fakeFallback struct {
	result   *types.ExtractionResult
	warnings []string
	err      error
	calls    int
}

func (f *fakeFallback) Extract(_ context.Context, documentID, _ string) (*types.ExtractionResult, []string, error) {
	f.calls++
	if f.result != nil {
		f.result.DocumentID = documentID
	}
	return f.result, f.warnings, f.err
}

const lawText = "LOI n° 2024-1 relative aux essais\n" +
	"Article 1\nLa présente loi est promulguée et entre en vigueur.\n" +
	"Article 2\nLe décret d'application précise les dispositions.\n"

func ocredDoc(t *testing.T, fs *files.Store, id, text string) *types.LegalDocument {
	t.Helper()
	require.NoError(t, fs.EnsureDirs())

	ref, err := fs.Ref(files.KindOCR, id)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ref, []byte(text), 0o644))

	return &types.LegalDocument{
		DocumentID: id,
		Status:     types.StatusOCRed,
		OCRPath:    ref,
	}
}

func TestRunOne_RegexPath(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	doc := ocredDoc(t, fs, "loi-2024-1", lawText)

	r := &Runner{Store: newMemStore(doc), Files: fs, Structural: &structex.Extractor{}}
	status, method, warnings := r.RunOne(context.Background(), doc)

	assert.Equal(t, types.StatusExtracted, status)
	assert.Equal(t, types.MethodRegex, method)
	assert.Empty(t, warnings)
	assert.Empty(t, doc.ErrorMessage)
	require.NotEmpty(t, doc.JSONPath)

	result, err := ReadResult(doc.JSONPath)
	require.NoError(t, err)
	assert.Equal(t, "loi-2024-1", result.DocumentID)
	require.Len(t, result.Articles, 2)
}

func TestRunOne_FallbackWinsOnLowConfidence(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	doc := ocredDoc(t, fs, "loi-2024-2", lawText)

	fb := &fakeFallback{result: &types.ExtractionResult{
		Articles:   []types.Article{{Index: 1, Content: "Texte IA."}},
		Confidence: 0.95,
		Method:     types.MethodAI,
	}}
	r := &Runner{
		Store: newMemStore(doc), Files: fs,
		Structural: &structex.Extractor{}, Fallback: fb, MinConfidence: 0.99,
	}

	status, method, _ := r.RunOne(context.Background(), doc)
	assert.Equal(t, types.StatusExtracted, status)
	assert.Equal(t, types.MethodAI, method)
	assert.Equal(t, 1, fb.calls)

	result, err := ReadResult(doc.JSONPath)
	require.NoError(t, err)
	assert.Equal(t, "Texte IA.", result.Articles[0].Content)
}

func TestRunOne_RegexKeptWhenFallbackIsWeaker(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	doc := ocredDoc(t, fs, "loi-2024-3", lawText)

	fb := &fakeFallback{result: &types.ExtractionResult{
		Articles:   []types.Article{{Index: 1, Content: "Texte IA."}},
		Confidence: 0.01,
		Method:     types.MethodAI,
	}}
	r := &Runner{
		Store: newMemStore(doc), Files: fs,
		Structural: &structex.Extractor{}, Fallback: fb, MinConfidence: 0.99,
	}

	status, method, _ := r.RunOne(context.Background(), doc)
	assert.Equal(t, types.StatusExtracted, status)
	assert.Equal(t, types.MethodRegex, method)

	result, err := ReadResult(doc.JSONPath)
	require.NoError(t, err)
	assert.Len(t, result.Articles, 2)
}

func TestRunOne_ArticlelessFallbackNeverSupersedes(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	doc := ocredDoc(t, fs, "loi-2024-9", lawText)

	// Metadata and signatories alone can push the fallback's confidence
	// past a weak structural score while carrying zero articles.
	fb := &fakeFallback{result: &types.ExtractionResult{
		Metadata:   types.DocumentMetadata{Title: "LOI n° 2024-9", PromulgationCity: "Paris"},
		Confidence: 0.40,
		Method:     types.MethodAI,
	}}
	r := &Runner{
		Store: newMemStore(doc), Files: fs,
		Structural: &structex.Extractor{}, Fallback: fb, MinConfidence: 0.99,
	}

	status, method, warnings := r.RunOne(context.Background(), doc)
	assert.Equal(t, types.StatusExtracted, status)
	assert.Equal(t, types.MethodRegex, method)
	assert.Contains(t, warnings, "fallback returned no articles; keeping structural result")

	result, err := ReadResult(doc.JSONPath)
	require.NoError(t, err)
	assert.Len(t, result.Articles, 2)
}

func TestRunOne_ArticlelessFallbackAndArticlelessRegexFails(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	doc := ocredDoc(t, fs, "loi-2024-10", "Du texte sans structure d'articles.")

	fb := &fakeFallback{result: &types.ExtractionResult{
		Metadata:   types.DocumentMetadata{PromulgationCity: "Paris"},
		Confidence: 0.25,
		Method:     types.MethodAI,
	}}
	r := &Runner{
		Store: newMemStore(doc), Files: fs,
		Structural: &structex.Extractor{}, Fallback: fb, MinConfidence: 0.5,
	}

	status, _, _ := r.RunOne(context.Background(), doc)
	assert.Equal(t, types.StatusFailedExtraction, status)
	assert.Contains(t, doc.ErrorMessage, "no articles found")
}

func TestRunOne_NoArticlesAndNoProvider(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	doc := ocredDoc(t, fs, "loi-2024-4", "Du texte sans structure d'articles.")

	fb := &fakeFallback{err: aiex.ErrNoProvider}
	r := &Runner{
		Store: newMemStore(doc), Files: fs,
		Structural: &structex.Extractor{}, Fallback: fb, MinConfidence: 0.5,
	}

	status, _, _ := r.RunOne(context.Background(), doc)
	assert.Equal(t, types.StatusFailedExtraction, status)
	assert.Contains(t, doc.ErrorMessage, "no AI provider")
}

func TestRunOne_MissingOCRArtifact(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	doc := &types.LegalDocument{DocumentID: "loi-2024-5", Status: types.StatusOCRed}

	r := &Runner{Store: newMemStore(doc), Files: fs, Structural: &structex.Extractor{}}
	status, _, _ := r.RunOne(context.Background(), doc)

	assert.Equal(t, types.StatusFailedExtraction, status)
	assert.Contains(t, doc.ErrorMessage, "OCR artifact missing")
}

func TestRunOne_SkipsWrongStatus(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	doc := &types.LegalDocument{DocumentID: "loi-2024-6", Status: types.StatusConsolidated}

	r := &Runner{Store: newMemStore(doc), Files: fs, Structural: &structex.Extractor{}}
	status, _, _ := r.RunOne(context.Background(), doc)

	assert.Equal(t, types.StatusConsolidated, status)
}

func TestRunConcurrent(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	docs := []*types.LegalDocument{
		ocredDoc(t, fs, "loi-2024-10", lawText),
		ocredDoc(t, fs, "loi-2024-11", lawText),
		ocredDoc(t, fs, "loi-2024-12", lawText),
		{DocumentID: "loi-2024-13", Status: types.StatusOCRed},
	}

	r := &Runner{Store: newMemStore(docs...), Files: fs, Structural: &structex.Extractor{}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result, err := r.RunConcurrent(context.Background(), 0, 3, logger)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	for _, doc := range docs[:3] {
		assert.Equal(t, types.StatusExtracted, doc.Status)
	}
	assert.Equal(t, types.StatusFailedExtraction, docs[3].Status)
}

func TestRunAll_ContinuesPastFailures(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	good := ocredDoc(t, fs, "loi-2024-7", lawText)
	bad := &types.LegalDocument{DocumentID: "loi-2024-8", Status: types.StatusOCRed}

	r := &Runner{Store: newMemStore(good, bad), Files: fs, Structural: &structex.Extractor{}}

	var buf bytes.Buffer
	sum, err := r.RunAll(context.Background(), 0, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Regex)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 2, sum.Total())
	assert.Equal(t, types.StatusExtracted, good.Status)
	assert.Equal(t, types.StatusFailedExtraction, bad.Status)
}
