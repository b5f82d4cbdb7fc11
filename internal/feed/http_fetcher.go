package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPFetcher fetches a feed URL with optional conditional GET headers.
type HTTPFetcher interface {
	Fetch(ctx context.Context, url string, etag, lastModified *string) (*FetchResponse, error)
}

// FetchResponse is the result of one feed fetch.
type FetchResponse struct {
	StatusCode   int
	Body         string
	ETag         *string
	LastModified *string
}

// DefaultHTTPFetcher implements HTTPFetcher on net/http. Feed endpoints
// speak conditional GET, which the page transport has no notion of, so
// feeds get their own thin client.
type DefaultHTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher backed by the given client.
func NewHTTPFetcher(client *http.Client) *DefaultHTTPFetcher {
	return &DefaultHTTPFetcher{client: client}
}

// Fetch performs a GET with If-None-Match / If-Modified-Since when state
// is available, and returns the body plus any caching headers.
func (f *DefaultHTTPFetcher) Fetch(
	ctx context.Context,
	url string,
	etag, lastModified *string,
) (*FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("feed fetch new request: %w", err)
	}

	if etag != nil {
		req.Header.Set("If-None-Match", *etag)
	}
	if lastModified != nil {
		req.Header.Set("If-Modified-Since", *lastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch do request: %w", err)
	}
	defer resp.Body.Close()

	return buildFetchResponse(resp)
}

// buildFetchResponse reads the body and extracts caching headers. A 304
// carries no body worth reading.
func buildFetchResponse(resp *http.Response) (*FetchResponse, error) {
	var body string
	if resp.StatusCode != http.StatusNotModified {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("feed fetch read body: %w", err)
		}
		body = string(raw)
	}

	result := &FetchResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}

	if v := resp.Header.Get("ETag"); v != "" {
		result.ETag = &v
	}
	if v := resp.Header.Get("Last-Modified"); v != "" {
		result.LastModified = &v
	}
	return result, nil
}
