// Package resolve determines the latest published version of an npm package.
//
// Resolution is an ordered chain of [Strategy] values. [Chain.Resolve] tries
// each in turn under its own timeout and returns the first success. Failures
// are logged at debug level and never propagate: when every strategy fails the
// result is [Unknown].
//
// # Strategies
//
//   - "cli": the package manager's view/info command
//   - "custom": a configured page, CSS selector and pattern
//   - "github": the GitHub releases page of <pkg>/<pkg>
//   - "registry": the npm registry's dist-tags.latest
//   - "github-api": the GitHub releases API for <pkg>/<pkg>
//
// The default order is cli, custom, github.
package resolve

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/thanhnhan2tn/package-updater/pkg/cache"
	"github.com/thanhnhan2tn/package-updater/pkg/observability"
)

// Unknown is returned when no strategy could determine a version.
const Unknown = "unknown"

// DefaultTimeout bounds a single strategy attempt.
const DefaultTimeout = 20 * time.Second

// ErrSkipped is returned by a strategy that does not apply to a package.
var ErrSkipped = errors.New("strategy does not apply")

// Strategy is one step of the resolution chain.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, pkg string) (string, error)
}

// Resolver is what callers of the chain depend on.
type Resolver interface {
	Resolve(ctx context.Context, pkg string) string
}

// Chain tries strategies in order and short-circuits on the first success.
type Chain struct {
	strategies []Strategy
	timeout    time.Duration
	logger     *log.Logger

	cache    cache.Cache
	cacheTTL time.Duration
}

// NewChain creates a chain. A zero timeout uses DefaultTimeout; a nil logger
// discards output.
func NewChain(logger *log.Logger, timeout time.Duration, strategies ...Strategy) *Chain {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Chain{strategies: strategies, timeout: timeout, logger: logger}
}

// WithCache remembers resolved versions for ttl. Unknown results are not cached.
func (c *Chain) WithCache(backend cache.Cache, ttl time.Duration) *Chain {
	c.cache = backend
	c.cacheTTL = ttl
	return c
}

// Names lists the strategies in the order they are tried.
func (c *Chain) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the latest version of pkg, or Unknown.
func (c *Chain) Resolve(ctx context.Context, pkg string) string {
	key := "version:" + pkg
	if c.cache != nil {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "version")
			return string(data)
		}
		observability.Cache().OnCacheMiss(ctx, "version")
	}

	for _, s := range c.strategies {
		if ctx.Err() != nil {
			break
		}
		v, err := c.attempt(ctx, s, pkg)
		if err != nil {
			if !errors.Is(err, ErrSkipped) {
				c.logger.Debug("strategy failed", "strategy", s.Name(), "package", pkg, "err", err)
			}
			continue
		}
		c.logger.Debug("resolved", "strategy", s.Name(), "package", pkg, "version", v)
		observability.Resolve().OnResolved(ctx, pkg, false)
		if c.cache != nil {
			if c.cache.Set(ctx, key, []byte(v), c.cacheTTL) == nil {
				observability.Cache().OnCacheSet(ctx, "version", len(v))
			}
		}
		return v
	}

	c.logger.Debug("no strategy resolved package", "package", pkg)
	observability.Resolve().OnResolved(ctx, pkg, true)
	return Unknown
}

func (c *Chain) attempt(ctx context.Context, s Strategy, pkg string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	v, err := s.Resolve(ctx, pkg)
	if err == nil && v == "" {
		err = errors.New("empty version")
	}
	if !errors.Is(err, ErrSkipped) {
		observability.Resolve().OnStrategy(ctx, s.Name(), pkg, time.Since(start), err)
	}
	return v, err
}
