package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics counts verified webhook events and their fulfillment
// outcomes so failed pipelines are visible without log spelunking.
type WebhookMetrics struct {
	received *prometheus.CounterVec
	outcomes *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Verified webhook events received, by event type.",
	}, []string{"type"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_outcomes_total",
		Help: "Fulfillment pipeline outcomes, by result and reason.",
	}, []string{"result", "reason"})
	reg.MustRegister(received, outcomes)
	return &WebhookMetrics{
		received: received,
		outcomes: outcomes,
	}
}

// IncReceived counts one verified event of the given type.
func (m *WebhookMetrics) IncReceived(eventType string) {
	if m == nil || m.received == nil {
		return
	}
	m.received.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFulfilled counts one fully processed checkout completion.
func (m *WebhookMetrics) IncFulfilled() {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues("fulfilled", "none").Inc()
}

// IncFailed counts one acknowledged-but-unfulfilled event.
func (m *WebhookMetrics) IncFailed(reason string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues("failed", normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
