// internal/platform/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics counts saga state transitions and gateway failures.
type CheckoutMetrics struct {
	Transitions     *prometheus.CounterVec
	GatewayFailures *prometheus.CounterVec
}

func NewCheckoutMetrics() *CheckoutMetrics {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "saga_transitions_total",
		Help:      "Total number of saga state transitions.",
	}, []string{"from", "to"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "gateway_failures_total",
		Help:      "Total number of payment/carrier gateway failures.",
	}, []string{"gateway", "kind"})

	prometheus.MustRegister(transitions, failures)
	return &CheckoutMetrics{Transitions: transitions, GatewayFailures: failures}
}

// Transition records one saga step. Safe on a nil receiver so metrics stay
// optional in tests.
func (m *CheckoutMetrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

// GatewayFailure records one adapter failure (kind: "retryable"/"rejected").
func (m *CheckoutMetrics) GatewayFailure(gateway, kind string) {
	if m == nil {
		return
	}
	m.GatewayFailures.WithLabelValues(gateway, kind).Inc()
}

// Handler exposes the default registry (mounted on /metrics).
func Handler() http.Handler {
	return promhttp.Handler()
}
