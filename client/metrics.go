package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskdeck_client",
			Name:      "requests_total",
			Help:      "Backend requests by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
)

// observe records one completed backend call under a stable outcome label.
func observe(op string, err error) {
	switch {
	case err == nil:
		requestsTotal.WithLabelValues(op, "ok").Inc()
	case IsUnauthorized(err):
		requestsTotal.WithLabelValues(op, "unauthorized").Inc()
	default:
		requestsTotal.WithLabelValues(op, "error").Inc()
	}
}
