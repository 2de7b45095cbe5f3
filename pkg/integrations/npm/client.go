package npm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thanhnhan2tn/package-updater/pkg/cache"
	"github.com/thanhnhan2tn/package-updater/pkg/integrations"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

// PackageInfo holds the registry's view of a package's latest release.
type PackageInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Repository string `json:"repository,omitempty"`
	HomePage   string `json:"homepage,omitempty"`
}

type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an npm registry client caching responses in backend for cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "npm:", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another registry (a mirror or a test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// FetchPackage returns the version tagged "latest" in dist-tags.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = integrations.NormalizePkgName(pkg)

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.PathEscape(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	latest := data.DistTags.Latest
	if latest == "" {
		return fmt.Errorf("npm package %s has no latest dist-tag", pkg)
	}
	v := data.Versions[latest]

	*info = PackageInfo{
		Name:       data.Name,
		Version:    latest,
		Repository: integrations.NormalizeRepoURL(extractField(v.Repository, "url")),
		HomePage:   v.HomePage,
	}
	return nil
}

func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

type registryResponse struct {
	Name     string                    `json:"name"`
	DistTags distTags                  `json:"dist-tags"`
	Versions map[string]versionDetails `json:"versions"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Repository any    `json:"repository"`
	HomePage   string `json:"homepage"`
}
