// Package metrics provides Prometheus metrics for the web tier.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "travisco"

var (
	// HTTPRequestsTotal counts served requests by matched route pattern.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// AuthOperationsTotal counts login/logout calls against the identity provider.
	AuthOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_operations_total",
			Help:      "Total number of login and logout operations",
		},
		[]string{"op", "outcome"},
	)

	// DataAPIRequestsTotal counts calls to the backend data API.
	DataAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_api_requests_total",
			Help:      "Total number of data API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// SessionsActive tracks browser sessions held in memory.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of browser sessions currently held in memory",
		},
	)
)

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordAuth records a login or logout outcome.
func RecordAuth(op string, err error) {
	AuthOperationsTotal.WithLabelValues(op, outcome(err)).Inc()
}

// RecordDataAPI records a data API call outcome.
func RecordDataAPI(endpoint string, err error) {
	DataAPIRequestsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
}

// RecordRequest records a served HTTP request.
func RecordRequest(method, route, status string) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
}
