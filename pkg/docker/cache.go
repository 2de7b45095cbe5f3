package docker

import (
	"context"
	"time"

	"github.com/thanhnhan2tn/package-updater/pkg/cache"
)

// DefaultTagTTL is how long a resolved tag is trusted.
const DefaultTagTTL = 60 * time.Second

// TagCache remembers the newest tag per image for a fixed TTL.
type TagCache struct {
	backend cache.Cache
	ttl     time.Duration
}

// NewTagCache wraps backend. A nil backend uses an in-memory cache; a zero
// ttl uses DefaultTagTTL.
func NewTagCache(backend cache.Cache, ttl time.Duration) *TagCache {
	if backend == nil {
		backend = cache.NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = DefaultTagTTL
	}
	return &TagCache{backend: backend, ttl: ttl}
}

func key(image string) string { return "tag:" + image }

// Get returns the cached tag for image if it is still fresh.
func (c *TagCache) Get(ctx context.Context, image string) (string, bool) {
	data, ok, err := c.backend.Get(ctx, key(image))
	if err != nil || !ok {
		return "", false
	}
	return string(data), true
}

// Put stores tag for image.
func (c *TagCache) Put(ctx context.Context, image, tag string) error {
	return c.backend.Set(ctx, key(image), []byte(tag), c.ttl)
}

