package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopResolveHooks{}
	r.OnStrategy(ctx, "cli", "react", time.Second, nil)
	r.OnResolved(ctx, "react", true)

	u := NoopUpgradeHooks{}
	u.OnUpgrade(ctx, "npm", "react", true, time.Second, nil)
	u.OnRestore(ctx, "package.json")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "npm:")
	c.OnCacheMiss(ctx, "npm:")
	c.OnCacheSet(ctx, "npm:", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/react")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/react", 200, time.Second)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/react", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Resolve() should return NoopResolveHooks by default")
	}
	if _, ok := Upgrade().(NoopUpgradeHooks); !ok {
		t.Error("Upgrade() should return NoopUpgradeHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	custom := &testResolveHooks{}
	SetResolveHooks(custom)
	if Resolve() != custom {
		t.Error("SetResolveHooks should set custom hooks")
	}

	Reset()
	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Reset() should restore NoopResolveHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testResolveHooks{}
	SetResolveHooks(custom)
	SetResolveHooks(nil)
	if Resolve() != custom {
		t.Error("SetResolveHooks(nil) should be ignored")
	}
}

func TestMetricsInstall(t *testing.T) {
	Reset()
	defer Reset()

	m := NewMetrics()
	reg := prometheus.NewRegistry()
	m.MustRegister(reg)
	m.Install()

	ctx := context.Background()
	Resolve().OnStrategy(ctx, "cli", "react", time.Millisecond, nil)
	Resolve().OnStrategy(ctx, "github", "react", time.Millisecond, errors.New("boom"))
	Resolve().OnResolved(ctx, "left-pad", true)
	Resolve().OnResolved(ctx, "react", false)
	Upgrade().OnUpgrade(ctx, "npm", "react", false, time.Millisecond, nil)
	Upgrade().OnRestore(ctx, "package.json")
	Cache().OnCacheHit(ctx, "npm:")
	HTTP().OnResponse(ctx, "GET", "hub.docker.com", "/v2", 200, time.Millisecond)

	if got := testutil.ToFloat64(m.strategyTotal.WithLabelValues("cli", "ok")); got != 1 {
		t.Errorf("cli ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.strategyTotal.WithLabelValues("github", "error")); got != 1 {
		t.Errorf("github error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.unknownTotal); got != 1 {
		t.Errorf("unknown = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.upgradeTotal.WithLabelValues("npm", "noop")); got != 1 {
		t.Errorf("npm noop = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.restoreTotal); got != 1 {
		t.Errorf("restores = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheTotal.WithLabelValues("npm:", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.httpTotal.WithLabelValues("hub.docker.com", "200")); got != 1 {
		t.Errorf("http 200 = %v, want 1", got)
	}
}

type testResolveHooks struct{ NoopResolveHooks }
