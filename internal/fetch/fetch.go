// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads the PDF body for documents whose existence has
// been established by the prober.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/legis-engine/internal/files"
	"github.com/pdiddy/legis-engine/pkg/types"
)

// pdfMagic is the header every well-formed PDF starts with. Bodies
// without it are treated as corrupted downloads (interstitial HTML,
// truncated responses).
var pdfMagic = []byte("%PDF")

// DocumentStore is the slice of the storage layer the downloader needs.
type DocumentStore interface {
	FindByStatus(ctx context.Context, status types.DocumentStatus, limit int) ([]*types.LegalDocument, error)
	Save(ctx context.Context, doc *types.LegalDocument) error
}

// Summary holds the outcome counts of a download pass.
type Summary struct {
	Downloaded int
	Corrupted  int
	Failed     int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Downloaded + s.Corrupted + s.Failed
}

// DownloadAll fetches the PDF for every FETCHED document, advancing each
// to DOWNLOADED or to a failure status. Per-document failures never abort
// the pass. A delay separates consecutive downloads so the stage does not
// hammer the publisher.
func DownloadAll(ctx context.Context, st DocumentStore, fs *files.Store, client *http.Client, cfg types.FetchConfig, maxItems int, w io.Writer) (Summary, error) {
	if err := fs.EnsureDirs(); err != nil {
		return Summary{}, err
	}

	docs, err := st.FindByStatus(ctx, types.StatusFetched, maxItems)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for i, doc := range docs {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}

		switch DownloadOne(ctx, doc, fs, client, cfg) {
		case types.StatusDownloaded:
			fmt.Fprintf(w, "downloaded: %s\n", doc.DocumentID)
			sum.Downloaded++
		case types.StatusFailedCorrupted:
			fmt.Fprintf(w, "corrupted:  %s (%s)\n", doc.DocumentID, doc.ErrorMessage)
			sum.Corrupted++
		default:
			fmt.Fprintf(w, "failed:     %s (%s)\n", doc.DocumentID, doc.ErrorMessage)
			sum.Failed++
		}

		if err := st.Save(ctx, doc); err != nil {
			return sum, err
		}
	}

	fmt.Fprintf(w, "\nDownload summary: %d downloaded, %d corrupted, %d failed (total: %d)\n",
		sum.Downloaded, sum.Corrupted, sum.Failed, sum.Total())
	return sum, nil
}

// DownloadOne fetches a single document's PDF to a temporary file and
// renames it into place on success. The document's status and error
// message are updated in place; the returned status is doc.Status.
func DownloadOne(ctx context.Context, doc *types.LegalDocument, fs *files.Store, client *http.Client, cfg types.FetchConfig) types.DocumentStatus {
	if doc.Status != types.StatusFetched {
		return doc.Status
	}

	ref, err := fs.Ref(files.KindPDF, doc.DocumentID)
	if err != nil {
		return fail(doc, types.StatusFailed, err)
	}

	url := doc.SourceURL
	if url == "" {
		return fail(doc, types.StatusFailed, fmt.Errorf("document has no source URL"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(doc, types.StatusFailed, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return fail(doc, types.StatusFailed, fmt.Errorf("HTTP request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(doc, types.StatusFailed, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url))
	}

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(resp.Body, header); err != nil {
		return fail(doc, types.StatusFailedCorrupted, fmt.Errorf("empty or truncated body from %s", url))
	}
	if !bytes.Equal(header, pdfMagic) {
		return fail(doc, types.StatusFailedCorrupted, fmt.Errorf("body from %s is not a PDF", url))
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(ref), ".fetch-*.tmp")
	if err != nil {
		return fail(doc, types.StatusFailed, fmt.Errorf("creating temp file: %w", err))
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, io.MultiReader(bytes.NewReader(header), resp.Body))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fail(doc, types.StatusFailed, fmt.Errorf("writing download: %w", copyErr))
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fail(doc, types.StatusFailed, fmt.Errorf("closing temp file: %w", closeErr))
	}

	if err := os.Rename(tmpPath, ref); err != nil {
		os.Remove(tmpPath)
		return fail(doc, types.StatusFailed, fmt.Errorf("renaming temp file: %w", err))
	}

	doc.Status = types.StatusDownloaded
	doc.PDFPath = ref
	doc.ErrorMessage = ""
	return doc.Status
}

func fail(doc *types.LegalDocument, status types.DocumentStatus, err error) types.DocumentStatus {
	doc.Status = status
	doc.ErrorMessage = err.Error()
	return status
}
