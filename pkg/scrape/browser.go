package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome before selecting. Each
// Fetch starts a fresh tab in a shared browser allocator.
type BrowserFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewBrowserFetcher starts an allocator for a headless browser. Call Close to
// release it.
func NewBrowserFetcher(opts ...chromedp.ExecAllocatorOption) *BrowserFetcher {
	all := append(chromedp.DefaultExecAllocatorOptions[:], opts...)
	ctx, cancel := chromedp.NewExecAllocator(context.Background(), all...)
	return &BrowserFetcher{allocCtx: ctx, cancel: cancel}
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() error {
	f.cancel()
	return nil
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url, selector string) ([]string, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx)
	defer cancelTab()

	// Tie the tab's lifetime to the caller's deadline.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("render %s: %w", url, err)
	}

	texts, err := Select(strings.NewReader(html), selector)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: %q on %s", ErrNoMatch, selector, url)
	}
	return texts, nil
}
