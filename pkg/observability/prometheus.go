package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	strategyTotal    *prometheus.CounterVec
	strategyDuration *prometheus.HistogramVec
	unknownTotal     prometheus.Counter
	upgradeTotal     *prometheus.CounterVec
	upgradeDuration  *prometheus.HistogramVec
	restoreTotal     prometheus.Counter
	cacheTotal       *prometheus.CounterVec
	httpTotal        *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpErrorTotal   *prometheus.CounterVec
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		strategyTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pkgupdater_resolve_strategy_total",
				Help: "Version-resolution strategy attempts by strategy and result.",
			},
			[]string{"strategy", "result"},
		),
		strategyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pkgupdater_resolve_strategy_duration_seconds",
				Help:    "Time taken by one version-resolution strategy.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"strategy"},
		),
		unknownTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pkgupdater_resolve_unknown_total",
				Help: "Packages for which every strategy failed.",
			},
		),
		upgradeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pkgupdater_upgrade_total",
				Help: "Upgrades by kind and result.",
			},
			[]string{"kind", "result"},
		),
		upgradeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pkgupdater_upgrade_duration_seconds",
				Help:    "Time taken to apply an upgrade, including reinstall.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		restoreTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pkgupdater_manifest_restore_total",
				Help: "Manifests restored after a failed reinstall.",
			},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pkgupdater_cache_events_total",
				Help: "Cache events by key type and event.",
			},
			[]string{"key_type", "event"},
		),
		httpTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pkgupdater_registry_requests_total",
				Help: "Outgoing registry requests by host and status code.",
			},
			[]string{"host", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pkgupdater_registry_request_duration_seconds",
				Help:    "Outgoing registry request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		httpErrorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pkgupdater_registry_request_errors_total",
				Help: "Outgoing registry requests that failed before a response.",
			},
			[]string{"host"},
		),
	}
}

// Collectors returns every collector owned by m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.strategyTotal,
		m.strategyDuration,
		m.unknownTotal,
		m.upgradeTotal,
		m.upgradeDuration,
		m.restoreTotal,
		m.cacheTotal,
		m.httpTotal,
		m.httpDuration,
		m.httpErrorTotal,
	}
}

// MustRegister registers all collectors with reg, panicking on conflict.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.Collectors()...)
}

// Install makes m the active implementation of every hook.
func (m *Metrics) Install() {
	SetResolveHooks(m)
	SetUpgradeHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnStrategy(_ context.Context, strategy, _ string, d time.Duration, err error) {
	m.strategyTotal.WithLabelValues(strategy, result(err)).Inc()
	m.strategyDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (m *Metrics) OnResolved(_ context.Context, _ string, unknown bool) {
	if unknown {
		m.unknownTotal.Inc()
	}
}

func (m *Metrics) OnUpgrade(_ context.Context, kind, _ string, changed bool, d time.Duration, err error) {
	res := result(err)
	if err == nil && !changed {
		res = "noop"
	}
	m.upgradeTotal.WithLabelValues(kind, res).Inc()
	m.upgradeDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) OnRestore(context.Context, string) { m.restoreTotal.Inc() }

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheTotal.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	m.httpTotal.WithLabelValues(host, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.httpErrorTotal.WithLabelValues(host).Inc()
}
