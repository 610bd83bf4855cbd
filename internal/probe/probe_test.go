// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/legis-engine/internal/httputil"
	"github.com/pdiddy/legis-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func testProber(ts *httptest.Server, maxRetries int) *HTTPProber {
	return &HTTPProber{
		Client: ts.Client(),
		Cfg: types.ProbeConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: "legis-engine/test"},
			BaseURL:    ts.URL,
			MaxRetries: maxRetries,
		},
	}
}

func TestProbe_Found(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/loi-2024-13" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	res := testProber(ts, 2).Probe(context.Background(), "loi", 2024, 13)
	assert.Equal(t, Found, res.Outcome)
	assert.Equal(t, ts.URL+"/loi-2024-13", res.URL)
}

func TestProbe_PaddedFallback(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		// Only the historical zero-padded form exists.
		if r.URL.Path == "/loi-2024-01" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	res := testProber(ts, 2).Probe(context.Background(), "loi", 2024, 1)
	require.Equal(t, Found, res.Outcome)
	assert.Equal(t, ts.URL+"/loi-2024-01", res.URL, "canonical reference rewritten to the working variant")
	assert.Equal(t, []string{"/loi-2024-1", "/loi-2024-01"}, paths)
}

func TestProbe_NoPaddedFallbackForTwoDigitNumbers(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	res := testProber(ts, 2).Probe(context.Background(), "loi", 2024, 42)
	assert.Equal(t, NotFound, res.Outcome)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestProbe_RateLimitBackoffThenSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	doc := types.NewLegalDocument("loi", 2024, 20)
	res := testProber(ts, 3).Probe(context.Background(), "loi", 2024, 20)
	assert.Equal(t, types.StatusFetched, Apply(doc, res))
}

func TestProbe_RateLimitExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	doc := types.NewLegalDocument("loi", 2024, 20)
	res := testProber(ts, 2).Probe(context.Background(), "loi", 2024, 20)

	// RATE_LIMITED, never FAILED, and never an escaping error.
	assert.Equal(t, RateLimited, res.Outcome)
	assert.Nil(t, res.Err)
	assert.Equal(t, types.StatusRateLimited, Apply(doc, res))
}

func TestProbe_TransportErrorFailsSoft(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	ts.Close() // refuse connections

	p := &HTTPProber{
		Client: &http.Client{Timeout: time.Second},
		Cfg: types.ProbeConfig{
			BaseURL:    ts.URL,
			MaxRetries: 1,
		},
	}

	doc := types.NewLegalDocument("loi", 2024, 30)
	res := p.Probe(context.Background(), "loi", 2024, 30)
	assert.Equal(t, Failed, res.Outcome)
	require.Error(t, res.Err)
	assert.Equal(t, types.StatusFailed, Apply(doc, res))
	assert.NotEmpty(t, doc.ErrorMessage)
}

func TestProbe_UnexpectedStatusFailsSoft(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	res := testProber(ts, 1).Probe(context.Background(), "loi", 2024, 30)
	assert.Equal(t, Failed, res.Outcome)
	require.Error(t, res.Err)
	assert.True(t, strings.Contains(res.Err.Error(), "500"))
}

func TestDocumentURL(t *testing.T) {
	assert.Equal(t, "https://pub.example/loi-2024-7",
		DocumentURL("https://pub.example", "loi", 2024, 7))
	assert.Equal(t, "https://pub.example/loi-2024-07",
		paddedDocumentURL("https://pub.example", "loi", 2024, 7))
}
