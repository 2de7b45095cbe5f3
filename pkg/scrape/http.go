package scrape

import (
	"context"
	"fmt"

	"github.com/thanhnhan2tn/package-updater/pkg/integrations"
)

// HTTPFetcher scrapes static HTML fetched with the shared registry client,
// so page loads get the same retry and instrumentation as API calls.
type HTTPFetcher struct {
	client *integrations.Client
}

// NewHTTPFetcher creates a fetcher. Pages are never cached.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: integrations.NewClient(nil, "scrape:", 0, map[string]string{
			"User-Agent": "pkgupdater",
			"Accept":     "text/html",
		}),
	}
}

// Client exposes the underlying HTTP client for configuration in tests.
func (f *HTTPFetcher) Client() *integrations.Client { return f.client }

func (f *HTTPFetcher) Fetch(ctx context.Context, url, selector string) ([]string, error) {
	body, err := f.client.GetBody(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	texts, err := Select(body, selector)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: %q on %s", ErrNoMatch, selector, url)
	}
	return texts, nil
}
