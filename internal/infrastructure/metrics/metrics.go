// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service counters
type Metrics struct {
	registry *prometheus.Registry

	WidgetAuthRejections *prometheus.CounterVec
	ChatRelays           *prometheus.CounterVec
	RealtimeEvents       *prometheus.CounterVec
	BootstrapRequests    *prometheus.CounterVec
}

// New creates and registers the service collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		WidgetAuthRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quell_widget_auth_rejections_total",
			Help: "Domain-lock rejections by reason.",
		}, []string{"reason"}),
		ChatRelays: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quell_chat_relays_total",
			Help: "Chat turns relayed upstream by outcome.",
		}, []string{"status"}),
		RealtimeEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quell_realtime_events_total",
			Help: "Realtime events published to store rooms.",
		}, []string{"event"}),
		BootstrapRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quell_widget_bootstrap_requests_total",
			Help: "Widget bootstrap requests by outcome.",
		}, []string{"status"}),
	}
}

// Handler serves the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
