package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultMaxArchiveSize bounds the download when no limit is configured (50MB).
const DefaultMaxArchiveSize = 50 * 1024 * 1024

// ArchiveFetcher retrieves the raw bytes of the catalog archive.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to ArchiveFetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// HTTPFetcher downloads archives with a plain GET. It never retries;
// the caller bounds it through ctx or the client's timeout.
type HTTPFetcher struct {
	Client    *http.Client
	MaxSize   int64
	UserAgent string
}

// NewHTTPFetcher creates a fetcher whose client gives up after timeout.
func NewHTTPFetcher(timeout time.Duration, maxSize int64) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		MaxSize:   maxSize,
		UserAgent: "catalogo/1.0",
	}
}

// Fetch issues a GET to url and returns the full body.
// Any transport failure or non-2xx status is returned as *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	limit := f.MaxSize
	if limit <= 0 {
		limit = DefaultMaxArchiveSize
	}

	// Read one byte past the limit to detect oversized bodies.
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > limit {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("archive exceeds %d bytes", limit)}
	}

	slog.Debug("archive fetched",
		"url", url,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return body, nil
}
