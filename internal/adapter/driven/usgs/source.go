// Package usgs implements the DatasetSource port against the USGS
// volcano GeoJSON endpoint.
package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"

	"github.com/mapops/volcsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DatasetSource = (*Source)(nil)

// Source fetches the source dataset with a single GET per run. The
// transport caches validators on disk so unchanged datasets are served as
// conditional requests on the next scheduled run.
type Source struct {
	httpClient *http.Client
	url        string
}

// NewSource creates a Source for the given URL with an on-disk
// conditional-request cache rooted at cacheDir.
func NewSource(url, cacheDir string) *Source {
	transport := httpcache.NewTransport(diskcache.New(cacheDir))

	return &Source{
		httpClient: &http.Client{Transport: transport},
		url:        url,
	}
}

// NewSourceWithHTTPClient creates a Source backed by a custom http.Client.
// This constructor is intended for testing against an httptest server.
func NewSourceWithHTTPClient(httpClient *http.Client, url string) *Source {
	return &Source{httpClient: httpClient, url: url}
}

// Fetch issues one GET against the configured URL, validates the body as
// JSON, and returns the re-serialized document. No retry at any layer:
// transport failures and non-2xx statuses both wrap driven.ErrRemoteFetch.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", s.url, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", driven.ErrRemoteFetch, s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &driven.StatusError{URL: s.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// Truncated or reset mid-body counts as a transport failure.
		return nil, fmt.Errorf("%w: reading response from %s: %v", driven.ErrRemoteFetch, s.url, err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", driven.ErrMalformedResponse, err)
	}

	// Re-serialize the parsed document. Go's sorted object keys make the
	// output deterministic, so an unchanged source yields identical bytes.
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing dataset: %w", err)
	}

	slog.Debug("source fetched",
		"url", s.url,
		"status", resp.StatusCode,
		"bytes", len(out),
		"from_cache", resp.Header.Get(httpcache.XFromCache) != "",
	)

	return out, nil
}
