package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWebhookMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWebhookMetrics(reg)

	metrics.IncReceived("checkout.session.completed")
	metrics.IncReceived("checkout.session.completed")
	metrics.IncFulfilled()
	metrics.IncFailed("no_fulfillable_items")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "webhook_events_total", map[string]string{"type": "checkout.session.completed"}); err != nil {
		t.Fatalf("fetch received: %v", err)
	} else if got != 2 {
		t.Fatalf("expected received=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "fulfillment_outcomes_total", map[string]string{"result": "fulfilled", "reason": "none"}); err != nil {
		t.Fatalf("fetch fulfilled: %v", err)
	} else if got != 1 {
		t.Fatalf("expected fulfilled=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "fulfillment_outcomes_total", map[string]string{"result": "failed", "reason": "no_fulfillable_items"}); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var metrics *WebhookMetrics
	metrics.IncReceived("x")
	metrics.IncFulfilled()
	metrics.IncFailed("y")

	empty := NewWebhookMetrics(nil)
	empty.IncReceived("x")
	empty.IncFailed("")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %q with labels %v not found", name, labels)
}

func matchesLabels(pairs []*dto.LabelPair, labels map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if want, ok := labels[pair.GetName()]; ok {
			if pair.GetValue() != want {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}
