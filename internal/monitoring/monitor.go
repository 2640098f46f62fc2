package monitoring

import (
	"sync"
	"time"

	"kitchenbot/internal/kitchen"
)

// Monitor keeps the latest figures of evaluations and live games for the
// playground's metrics endpoint
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
	runs         int
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	metrics := make(map[string]interface{}, len(m.metrics)+2)
	for k, v := range m.metrics {
		metrics[k] = v
	}

	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()
	metrics["evaluation_runs"] = m.runs

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
	m.runs = 0
}

// RecordEvaluationResult stores the metrics of the latest run of a scenario
// under the scenario's prefix
func (m *Monitor) RecordEvaluationResult(scenario, runID string, metrics map[string]interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	prefix := scenario + "_"

	for k, v := range metrics {
		m.metrics[prefix+k] = v
	}

	m.metrics[prefix+"last_run"] = runID
	m.metrics[prefix+"last_evaluated"] = time.Now().Format(time.RFC3339)
	m.runs++
}

// RecordGame stores the running figures of a live game under "live_"
func (m *Monitor) RecordGame(stats kitchen.Stats, score int, now time.Duration, orders int) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	m.metrics["live_score"] = score
	m.metrics["live_clock_seconds"] = now.Seconds()
	m.metrics["live_open_orders"] = orders
	m.metrics["live_orders_delivered"] = stats.OrdersDelivered
	m.metrics["live_orders_expired"] = stats.OrdersExpired
	m.metrics["live_items_burnt"] = stats.ItemsBurnt
}
