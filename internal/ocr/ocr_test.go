// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/legis-engine/internal/files"
	"github.com/pdiddy/legis-engine/pkg/types"
)

type memStore struct {
	docs map[string]*types.LegalDocument
}

func (m *memStore) FindByStatus(_ context.Context, status types.DocumentStatus, _ int) ([]*types.LegalDocument, error) {
	var out []*types.LegalDocument
	for _, d := range m.docs {
		if d.Status == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) Save(_ context.Context, doc *types.LegalDocument) error {
	m.docs[doc.DocumentID] = doc
	return nil
}

// fakeEngine returns scripted text per PDF path.
type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) ExtractText(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func downloadedDoc(t *testing.T, fs *files.Store, number int) *types.LegalDocument {
	t.Helper()
	doc := types.NewLegalDocument("loi", 2024, number)
	doc.Status = types.StatusDownloaded
	ref, err := fs.Ref(files.KindPDF, doc.DocumentID)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ref, []byte("%PDF-1.4"), 0o644))
	doc.PDFPath = ref
	return doc
}

func TestRunOne(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	require.NoError(t, fs.EnsureDirs())

	doc := downloadedDoc(t, fs, 1)
	engine := &fakeEngine{text: "Article 1\nLe texte.\n"}

	status := RunOne(context.Background(), doc, fs, engine)
	assert.Equal(t, types.StatusOCRed, status)
	require.NotEmpty(t, doc.OCRPath)

	data, err := os.ReadFile(doc.OCRPath)
	require.NoError(t, err)
	assert.Equal(t, engine.text, string(data))
}

func TestRunOne_MissingPDFFailsDocumentOnly(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	require.NoError(t, fs.EnsureDirs())

	doc := types.NewLegalDocument("loi", 2024, 2)
	doc.Status = types.StatusDownloaded // claims a PDF it does not have

	status := RunOne(context.Background(), doc, fs, &fakeEngine{text: "x"})
	assert.Equal(t, types.StatusFailed, status)
	assert.Contains(t, doc.ErrorMessage, "missing")
}

func TestRunOne_EngineErrorFailsSoft(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	require.NoError(t, fs.EnsureDirs())

	doc := downloadedDoc(t, fs, 3)
	status := RunOne(context.Background(), doc, fs, &fakeEngine{err: fmt.Errorf("tool crashed")})
	assert.Equal(t, types.StatusFailed, status)
	assert.Contains(t, doc.ErrorMessage, "tool crashed")
}

func TestRunAll_ContinuesPastFailures(t *testing.T) {
	fs := files.NewStore(t.TempDir())
	require.NoError(t, fs.EnsureDirs())

	st := &memStore{docs: map[string]*types.LegalDocument{}}
	good := downloadedDoc(t, fs, 1)
	st.docs[good.DocumentID] = good

	bad := types.NewLegalDocument("loi", 2024, 2)
	bad.Status = types.StatusDownloaded
	st.docs[bad.DocumentID] = bad

	sum, err := RunAll(context.Background(), st, fs, &fakeEngine{text: "Article 1\nTexte."}, 0, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Extracted)
	assert.Equal(t, 1, sum.Failed)
}

func TestTextQuality(t *testing.T) {
	assert.Equal(t, 0.0, TextQuality(""))
	assert.Equal(t, 1.0, TextQuality("la loi est promulguée"))
	assert.Less(t, TextQuality("@@ ## 123 456 %%"), 0.2)

	mixed := TextQuality("article 1 @@@@ texte ####")
	assert.Greater(t, mixed, 0.3)
	assert.Less(t, mixed, 0.9)
}
