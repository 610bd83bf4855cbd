// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package probe determines document existence against the publisher's
// deterministic URL scheme and drives the resumable scans that feed the
// rest of the pipeline.
package probe

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/legis-engine/internal/httputil"
	"github.com/pdiddy/legis-engine/pkg/types"
)

// Outcome classifies a single existence probe. All outcomes are ordinary
// values: a probe never surfaces an error to its caller, because every
// failure mode maps to a document status.
type Outcome int

const (
	// Found means a URL variant answered 200.
	Found Outcome = iota
	// NotFound means every URL variant answered 404.
	NotFound
	// RateLimited means 429 persisted through the bounded backoff.
	RateLimited
	// Failed means a transport error or an unexpected status code.
	Failed
)

// Result carries the outcome of one probe.
type Result struct {
	Outcome Outcome

	// URL is the variant that matched when Outcome is Found.
	URL string

	// Err describes the failure when Outcome is Failed.
	Err error
}

// Prober checks whether a document exists at the publisher.
type Prober interface {
	Probe(ctx context.Context, docType string, year, number int) Result
}

// HTTPProber probes with a single HEAD-equivalent request per URL variant,
// retrying 429s through the bounded backoff executor.
type HTTPProber struct {
	Client *http.Client
	Cfg    types.ProbeConfig
}

// DocumentURL formats the canonical URL for an identity triple.
func DocumentURL(baseURL, docType string, year, number int) string {
	return fmt.Sprintf("%s/%s-%d-%d", baseURL, docType, year, number)
}

// paddedDocumentURL formats the historical zero-padded variant, e.g.
// loi-2024-01. The publisher used both forms for single-digit numbers.
func paddedDocumentURL(baseURL, docType string, year, number int) string {
	return fmt.Sprintf("%s/%s-%d-%02d", baseURL, docType, year, number)
}

// Probe checks the canonical URL and, on 404 for single-digit numbers,
// the zero-padded variant. A matching padded variant is reported as the
// working URL so the caller can rewrite the canonical reference.
func (p *HTTPProber) Probe(ctx context.Context, docType string, year, number int) Result {
	url := DocumentURL(p.Cfg.BaseURL, docType, year, number)
	res := p.head(ctx, url)
	if res.Outcome != NotFound || number >= 10 {
		return res
	}

	padded := paddedDocumentURL(p.Cfg.BaseURL, docType, year, number)
	paddedRes := p.head(ctx, padded)
	if paddedRes.Outcome == Found {
		return paddedRes
	}
	// Keep the canonical 404 unless the padded variant said something
	// stronger (rate limit, transport failure).
	if paddedRes.Outcome == NotFound {
		return res
	}
	return paddedRes
}

func (p *HTTPProber) head(ctx context.Context, url string) Result {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return Result{Outcome: Failed, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", p.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, p.Cfg.MaxRetries)
	if err != nil {
		return Result{Outcome: Failed, Err: fmt.Errorf("probing %s: %w", url, err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Outcome: Found, URL: url}
	case http.StatusNotFound:
		return Result{Outcome: NotFound}
	case http.StatusTooManyRequests:
		return Result{Outcome: RateLimited}
	default:
		return Result{Outcome: Failed, Err: fmt.Errorf("probing %s: HTTP %d", url, resp.StatusCode)}
	}
}

// Apply folds a probe result into a document record. It returns the
// status the document ends the probe in.
func Apply(doc *types.LegalDocument, res Result) types.DocumentStatus {
	switch res.Outcome {
	case Found:
		doc.Status = types.StatusFetched
		doc.SourceURL = res.URL
		doc.ErrorMessage = ""
	case NotFound:
		doc.Status = types.StatusNotFound
		doc.ErrorMessage = ""
	case RateLimited:
		doc.Status = types.StatusRateLimited
		doc.ErrorMessage = ""
	case Failed:
		doc.Status = types.StatusFailed
		if res.Err != nil {
			doc.ErrorMessage = res.Err.Error()
		}
	}
	return doc.Status
}
