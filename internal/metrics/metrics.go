// Package metrics holds Prometheus instruments used across the server.  All
// collectors register with the global registry, so importing this package in
// main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DBConnectionUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connection_up",
			Help: "1 while the supervised database handle is live, 0 while down.",
		})

	DBReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "db_reconnects_total",
			Help: "Cumulative number of successful database reconnects.",
		})

	DBReconnectFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "db_reconnect_failures_total",
			Help: "Cumulative number of failed reconnect attempts.",
		})

	CascadeInconsistenciesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cascade_delete_inconsistencies_total",
			Help: "Cascading deletes that removed children but left the parent.",
		})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern, method, and status class.",
		},
		[]string{"route", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		DBConnectionUp,
		DBReconnectsTotal,
		DBReconnectFailuresTotal,
		CascadeInconsistenciesTotal,
		HTTPRequestsTotal,
	)
}
