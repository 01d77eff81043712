// Package metrics declares the Prometheus collectors shared across the
// proxy. Collectors register themselves on the default registry at init so
// the admin /metrics endpoint only needs promhttp.Handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenantgate",
		Name:      "requests_total",
		Help:      "Requests handled, partitioned by outcome.",
	}, []string{"outcome"})

	RequestSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tenantgate",
		Name:      "request_seconds",
		Help:      "Time to relay a proxied request, head to final response byte.",
		Buckets:   prometheus.DefBuckets,
	})

	OpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tenantgate",
		Name:      "open_connections",
		Help:      "Client connections currently open.",
	})

	ActiveTunnels = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tenantgate",
		Name:      "active_tunnels",
		Help:      "Upgraded connections currently being bridged.",
	})

	TunnelBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenantgate",
		Name:      "tunnel_bytes_total",
		Help:      "Bytes relayed through upgraded tunnels, by direction.",
	}, []string{"direction"})

	BackendDialSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tenantgate",
		Name:      "backend_dial_seconds",
		Help:      "Time spent establishing backend connections.",
		Buckets:   prometheus.DefBuckets,
	})

	PolicyReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tenantgate",
		Name:      "policy_reloads_total",
		Help:      "Successful tenant policy reloads.",
	})

	PolicyReloadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tenantgate",
		Name:      "policy_reload_errors_total",
		Help:      "Failed tenant policy reloads.",
	})

	PolicyWatcherRestarts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tenantgate",
		Name:      "policy_watcher_restarts_total",
		Help:      "Times the policy file watcher had to be restarted.",
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
