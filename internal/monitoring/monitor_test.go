package monitoring

import (
	"testing"
	"time"

	"kitchenbot/internal/kitchen"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}

	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_RecordEvaluationResult(t *testing.T) {
	m := NewMonitor()

	testMetrics := map[string]interface{}{
		"score":         37,
		"delivery_rate": 0.75,
	}

	m.RecordEvaluationResult("burger_rush", "run-1", testMetrics)

	metrics := m.GetMetrics()

	value, exists := metrics["burger_rush_delivery_rate"]
	if !exists {
		t.Fatalf("Expected 'burger_rush_delivery_rate' to be present in metrics, but it was not")
	}

	if value != 0.75 {
		t.Errorf("Expected 'burger_rush_delivery_rate' to be 0.75, but got %v", value)
	}

	if metrics["burger_rush_last_run"] != "run-1" {
		t.Errorf("Expected 'burger_rush_last_run' to be run-1, but got %v", metrics["burger_rush_last_run"])
	}

	_, exists = metrics["burger_rush_last_evaluated"]
	if !exists {
		t.Errorf("Expected 'burger_rush_last_evaluated' to be present in metrics, but it was not")
	}

	if metrics["evaluation_runs"] != 1 {
		t.Errorf("Expected 'evaluation_runs' to be 1, but got %v", metrics["evaluation_runs"])
	}
}

func TestMonitor_RecordGame(t *testing.T) {
	m := NewMonitor()
	m.RecordGame(kitchen.Stats{OrdersDelivered: 2, OrdersExpired: 1}, 30, 90*time.Second, 3)

	metrics := m.GetMetrics()
	want := map[string]interface{}{
		"live_score":            30,
		"live_clock_seconds":    90.0,
		"live_open_orders":      3,
		"live_orders_delivered": 2,
		"live_orders_expired":   1,
		"live_items_burnt":      0,
	}
	for k, v := range want {
		if metrics[k] != v {
			t.Errorf("Expected %q to be %v, but got %v", k, v, metrics[k])
		}
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)
	m.RecordEvaluationResult("pizza_night", "run-2", nil)

	m.Reset()

	metrics := m.GetMetrics()

	_, exists := metrics["test_metric"]
	if exists {
		t.Errorf("Expected 'test_metric' to be removed after Reset(), but it was present")
	}

	if metrics["evaluation_runs"] != 0 {
		t.Errorf("Expected 'evaluation_runs' to be 0 after Reset(), but got %v", metrics["evaluation_runs"])
	}

	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}
