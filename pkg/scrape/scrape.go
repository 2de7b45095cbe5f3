// Package scrape fetches text from web pages by CSS selector.
//
// Two fetchers implement [Fetcher]:
//
//   - [HTTPFetcher] downloads the page and queries the static HTML with goquery.
//   - [BrowserFetcher] renders the page in headless Chrome (chromedp) first,
//     for release pages that build their content client-side.
//
// [Extract] applies a pattern to the fetched texts and returns the first
// capture. Version resolvers combine the two:
//
//	texts, err := fetcher.Fetch(ctx, url, "a.Link--primary")
//	version, ok := scrape.Extract(texts, pattern)
package scrape

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoMatch is returned when a selector or pattern matches nothing.
var ErrNoMatch = errors.New("no match")

// Fetcher returns the text content of every element matching selector on the
// page at url, in document order.
type Fetcher interface {
	Fetch(ctx context.Context, url, selector string) ([]string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url, selector string) ([]string, error)

func (f FetcherFunc) Fetch(ctx context.Context, url, selector string) ([]string, error) {
	return f(ctx, url, selector)
}

// Select parses an HTML document and returns the trimmed text of every
// element matching selector. Empty texts are skipped.
func Select(r io.Reader, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	var texts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			texts = append(texts, t)
		}
	})
	return texts, nil
}

// Extract returns the first capture group of pattern in the first text that
// matches. Patterns without a group yield the whole match.
func Extract(texts []string, pattern *regexp.Regexp) (string, bool) {
	for _, t := range texts {
		m := pattern.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return m[1], true
		}
		return m[0], true
	}
	return "", false
}
