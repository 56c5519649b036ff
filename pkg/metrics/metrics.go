// Package metrics holds the Prometheus collectors of the cache gateway and the
// dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "f1tr"

type Manager struct {
	registry *prometheus.Registry

	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cacheFetchErrors *prometheus.CounterVec
	framesStreamed   prometheus.Counter
	figuresBuilt     prometheus.Counter
	loads            *prometheus.CounterVec
}

var defaultManager = NewManager(prometheus.NewRegistry()) //nolint:gochecknoglobals // process wide metrics

// NewManager registers all collectors on registry.
func NewManager(registry *prometheus.Registry) *Manager {
	auto := promauto.With(registry)
	return &Manager{
		registry: registry,
		cacheHits: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Sessions served from the cache",
		}),
		cacheMisses: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Sessions fetched from the telemetry API",
		}),
		cacheFetchErrors: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "fetch_errors_total",
			Help:      "Failed session resolutions by reason",
		}, []string{"reason"}),
		framesStreamed: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "frames_streamed_total",
			Help:      "Animation frames written to websocket clients",
		}),
		figuresBuilt: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "figures_built_total",
			Help:      "Figures built from a driver and lap selection",
		}),
		loads: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "loads_total",
			Help:      "Session loads by outcome",
		}, []string{"outcome"}),
	}
}

func Default() *Manager {
	return defaultManager
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors of m in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) CacheHit() {
	m.cacheHits.Inc()
}

func (m *Manager) CacheMiss() {
	m.cacheMisses.Inc()
}

func (m *Manager) CacheFetchError(reason string) {
	m.cacheFetchErrors.WithLabelValues(reason).Inc()
}

func (m *Manager) FrameStreamed() {
	m.framesStreamed.Inc()
}

func (m *Manager) FigureBuilt() {
	m.figuresBuilt.Inc()
}

func (m *Manager) Load(outcome string) {
	m.loads.WithLabelValues(outcome).Inc()
}
