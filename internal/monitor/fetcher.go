package monitor

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/aleister1102/hashwatch/internal/httpclient"
)

// ContentFetcher downloads one URL. *httpclient.HTTPClient implements it.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (*httpclient.FetchContentResult, error)
}

// Fetcher handles fetching file content from URLs.
type Fetcher struct {
	client ContentFetcher
	logger zerolog.Logger
}

// NewFetcher creates a new Fetcher.
func NewFetcher(client ContentFetcher, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logger.With().Str("component", "Fetcher").Logger(),
	}
}

// FetchFileContentResult holds results from FetchFileContent.
type FetchFileContentResult struct {
	Content        []byte
	ContentType    string
	HTTPStatusCode int
	Attempts       int
}

// FetchFileContent downloads url. Failures are *httpclient.FetchError values carrying the
// attempt count.
func (f *Fetcher) FetchFileContent(ctx context.Context, url string) (*FetchFileContentResult, error) {
	result, err := f.client.FetchContent(ctx, url)
	if err != nil {
		f.logger.Warn().Err(err).Str("url", url).Int("attempts", fetchAttempts(err)).Msg("Failed to fetch file content")
		return nil, err
	}

	f.logger.Debug().
		Str("url", url).
		Str("content_type", result.ContentType).
		Int("size", len(result.Content)).
		Int("attempts", result.Attempts).
		Msg("File content fetched successfully")

	return &FetchFileContentResult{
		Content:        result.Content,
		ContentType:    result.ContentType,
		HTTPStatusCode: result.HTTPStatusCode,
		Attempts:       result.Attempts,
	}, nil
}

// fetchAttempts extracts the attempt count from a fetch failure, 1 when unknown.
func fetchAttempts(err error) int {
	var fetchErr *httpclient.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Attempts
	}
	return 1
}
