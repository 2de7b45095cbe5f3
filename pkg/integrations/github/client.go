package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thanhnhan2tn/package-updater/pkg/cache"
	"github.com/thanhnhan2tn/package-updater/pkg/integrations"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// Release is the subset of a GitHub release the resolver needs.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	PublishedAt time.Time `json:"published_at"`
}

// Version returns the tag name with a leading "v" removed.
func (r Release) Version() string {
	return strings.TrimPrefix(r.TagName, "v")
}

// Client provides access to the GitHub releases API.
// It handles HTTP requests with caching, automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate limits).
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(backend, "github:", cacheTTL, headers),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another API root (GitHub Enterprise or a test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// LatestRelease returns the most recent non-prerelease release of owner/repo.
// If refresh is true, cached data is bypassed.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string, refresh bool) (*Release, error) {
	key := owner + "/" + repo

	var rel Release
	err := c.Cached(ctx, key, refresh, &rel, func() error {
		url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
		if err := c.Get(ctx, url, &rel); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: github release %s/%s", err, owner, repo)
			}
			return err
		}
		if rel.TagName == "" {
			return fmt.Errorf("github release %s/%s has no tag", owner, repo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rel, nil
}
