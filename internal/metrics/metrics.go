// Package metrics exposes Prometheus counters for the config server
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "openshift_config_server"

// Modes reported on config requests.
const (
	ModeMock = "mock"
	ModeLive = "live"
)

type Metrics struct {
	registry *prometheus.Registry

	configRequests  *prometheus.CounterVec
	issuerDiscovery *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		configRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_requests_total",
			Help:      "Number of config.js responses by mode.",
		}, []string{"mode"}),
		issuerDiscovery: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issuer_discovery_total",
			Help:      "Issuer host determinations at startup by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.configRequests,
		m.issuerDiscovery,
	)

	return m
}

func (m *Metrics) ObserveConfigRequest(mode string) {
	m.configRequests.WithLabelValues(mode).Inc()
}

func (m *Metrics) ObserveIssuerDiscovery(outcome string) {
	m.issuerDiscovery.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
