package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/thanhnhan2tn/package-updater/pkg/integrations/dockerhub"
	"github.com/thanhnhan2tn/package-updater/pkg/observability"
	"github.com/thanhnhan2tn/package-updater/pkg/resolve"
)

// TagLister is satisfied by *dockerhub.Client.
type TagLister interface {
	Tags(ctx context.Context, namespace, name string) ([]string, error)
}

// Resolver finds the newest tag of a Docker Hub image.
type Resolver struct {
	tags   TagLister
	cache  *TagCache
	logger *log.Logger
}

func NewResolver(tags TagLister, tagCache *TagCache, logger *log.Logger) *Resolver {
	if tagCache == nil {
		tagCache = NewTagCache(nil, 0)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{tags: tags, cache: tagCache, logger: logger}
}

// Latest returns the newest tag of image, or resolve.Unknown when the image is
// not on Docker Hub or the lookup fails.
func (r *Resolver) Latest(ctx context.Context, image string) string {
	if !Supported(image) {
		r.logger.Debug("image registry not supported", "image", image)
		return resolve.Unknown
	}
	if tag, ok := r.cache.Get(ctx, image); ok {
		observability.Cache().OnCacheHit(ctx, "tag")
		return tag
	}
	observability.Cache().OnCacheMiss(ctx, "tag")

	tag, err := r.lookup(ctx, image)
	if err != nil {
		r.logger.Debug("tag lookup failed", "image", image, "err", err)
		observability.Resolve().OnResolved(ctx, image, true)
		return resolve.Unknown
	}
	if err := r.cache.Put(ctx, image, tag); err != nil {
		r.logger.Warn("tag cache write failed", "image", image, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "tag", len(tag))
	}
	observability.Resolve().OnResolved(ctx, image, false)
	return tag
}

func (r *Resolver) lookup(ctx context.Context, image string) (string, error) {
	ns, name := dockerhub.SplitRepository(image)
	tags, err := r.tags.Tags(ctx, ns, name)
	if err != nil {
		return "", err
	}
	candidates := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != DefaultTag {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no tags besides %q for %s", DefaultTag, image)
	}
	SortTags(candidates)
	return candidates[0], nil
}
