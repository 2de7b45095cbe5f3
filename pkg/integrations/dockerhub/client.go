package dockerhub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thanhnhan2tn/package-updater/pkg/cache"
	"github.com/thanhnhan2tn/package-updater/pkg/integrations"
)

const (
	// DefaultBaseURL is the Docker Hub API root.
	DefaultBaseURL = "https://hub.docker.com"

	// PageSize is the number of tags requested per lookup.
	PageSize = 100

	// OfficialNamespace holds Docker's official images.
	OfficialNamespace = "library"
)

type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Docker Hub client. A zero cacheTTL with a nil backend
// disables response caching; callers that need a short-lived tag cache keep
// their own.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "dockerhub:", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another API root.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// SplitRepository splits "name" or "namespace/name" into its parts,
// defaulting the namespace to "library".
func SplitRepository(image string) (namespace, name string) {
	if ns, n, ok := strings.Cut(image, "/"); ok {
		return ns, n
	}
	return OfficialNamespace, image
}

// Tags lists tag names for namespace/name.
func (c *Client) Tags(ctx context.Context, namespace, name string) ([]string, error) {
	url := fmt.Sprintf("%s/v2/repositories/%s/%s/tags?page_size=%d",
		c.baseURL, integrations.PathEscape(namespace), integrations.PathEscape(name), PageSize)

	var data tagsResponse
	err := c.Cached(ctx, namespace+"/"+name, false, &data, func() error {
		if err := c.Get(ctx, url, &data); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: docker image %s/%s", err, namespace, name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(data.Results))
	for _, r := range data.Results {
		if r.Name != "" {
			tags = append(tags, r.Name)
		}
	}
	return tags, nil
}

type tagsResponse struct {
	Count   int `json:"count"`
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
}
