// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about version resolution, upgrades, cache operations, and
// registry calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so library packages never
// import a metrics backend. [Metrics] is the Prometheus implementation the
// server installs.
//
// # Usage
//
// Register hooks at application startup:
//
//	m := observability.NewMetrics()
//	m.MustRegister(prometheus.DefaultRegisterer)
//	m.Install()
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	v, err := s.Resolve(ctx, pkg)
//	observability.Resolve().OnStrategy(ctx, s.Name(), pkg, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Resolve Hooks
// =============================================================================

// ResolveHooks receives events from the version-resolution chain.
type ResolveHooks interface {
	// OnStrategy records one strategy attempt. err is nil on success.
	OnStrategy(ctx context.Context, strategy, pkg string, duration time.Duration, err error)

	// OnResolved records the final outcome of a chain; unknown is true when
	// every strategy failed.
	OnResolved(ctx context.Context, pkg string, unknown bool)
}

// =============================================================================
// Upgrade Hooks
// =============================================================================

// UpgradeHooks receives events from manifest and Dockerfile writers.
type UpgradeHooks interface {
	// OnUpgrade records a finished upgrade. kind is "npm" or "docker".
	OnUpgrade(ctx context.Context, kind, target string, changed bool, duration time.Duration, err error)

	// OnRestore records a manifest restored after a failed reinstall.
	OnRestore(ctx context.Context, path string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnStrategy(context.Context, string, string, time.Duration, error) {}
func (NoopResolveHooks) OnResolved(context.Context, string, bool)                         {}

// NoopUpgradeHooks is a no-op implementation of UpgradeHooks.
type NoopUpgradeHooks struct{}

func (NoopUpgradeHooks) OnUpgrade(context.Context, string, string, bool, time.Duration, error) {}
func (NoopUpgradeHooks) OnRestore(context.Context, string)                                     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	resolveHooks ResolveHooks = NoopResolveHooks{}
	upgradeHooks UpgradeHooks = NoopUpgradeHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetResolveHooks registers custom resolve hooks.
// This should be called once at application startup.
func SetResolveHooks(h ResolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolveHooks = h
	}
}

// SetUpgradeHooks registers custom upgrade hooks.
func SetUpgradeHooks(h UpgradeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		upgradeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Resolve returns the registered resolve hooks.
func Resolve() ResolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolveHooks
}

// Upgrade returns the registered upgrade hooks.
func Upgrade() UpgradeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return upgradeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	resolveHooks = NoopResolveHooks{}
	upgradeHooks = NoopUpgradeHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
