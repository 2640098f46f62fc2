package evaluation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"kitchenbot/internal/agents"
	"kitchenbot/internal/kitchen"
)

// Metrics are the derived scores of one run
type Metrics struct {
	DeliveryRate     float64
	AvgDeliveryTime  time.Duration
	ScorePerMinute   float64
	WasteRate        float64
	RejectedActions  int
	Aborts           int
	Plans            int
	SkippedOrders    int
	DeliveriesPerBot float64
}

// MetricsCollector handles metrics collection and reporting. Each collector
// owns its registry so several can coexist in one process.
type MetricsCollector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	deliveryTime := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kitchen_order_delivery_seconds",
			Help:    "Simulated time from order placement to delivery",
			Buckets: prometheus.LinearBuckets(5, 5, 12),
		},
		[]string{"scenario", "dish"},
	)

	orders := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitchen_orders_total",
			Help: "Orders by outcome",
		},
		[]string{"scenario", "outcome"},
	)

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitchen_evaluation_runs_total",
			Help: "Completed evaluation runs",
		},
		[]string{"scenario"},
	)

	score := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kitchen_score",
			Help: "Final score of the latest run",
		},
		[]string{"scenario"},
	)

	deliveryRate := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kitchen_delivery_rate",
			Help: "Delivered orders over placed orders in the latest run",
		},
		[]string{"scenario"},
	)

	agentEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitchen_agent_events_total",
			Help: "Agent journal entries by type",
		},
		[]string{"scenario", "type"},
	)

	waste := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitchen_items_wasted_total",
			Help: "Burnt or discarded items",
		},
		[]string{"scenario", "reason"},
	)

	metrics := map[string]prometheus.Collector{
		"delivery_time": deliveryTime,
		"orders":        orders,
		"runs":          runs,
		"score":         score,
		"delivery_rate": deliveryRate,
		"agent_events":  agentEvents,
		"waste":         waste,
	}

	for _, metric := range metrics {
		registry.MustRegister(metric)
	}

	return &MetricsCollector{
		registry: registry,
		metrics:  metrics,
	}
}

// Registry exposes the collector's registry for an HTTP handler
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// RecordEvent records one kitchen event
func (mc *MetricsCollector) RecordEvent(scenario string, e kitchen.Event, placedAt time.Duration) {
	switch e.Type {
	case kitchen.EventOrderPlaced:
		mc.incOrders(scenario, "placed")
	case kitchen.EventOrderDelivered:
		mc.incOrders(scenario, "delivered")
		if h, ok := mc.metrics["delivery_time"].(*prometheus.HistogramVec); ok {
			h.WithLabelValues(scenario, string(e.Item)).Observe((e.At - placedAt).Seconds())
		}
	case kitchen.EventOrderExpired:
		mc.incOrders(scenario, "expired")
	case kitchen.EventItemBurnt:
		mc.incWaste(scenario, "burnt")
	case kitchen.EventItemDiscarded:
		mc.incWaste(scenario, "discarded")
	}
}

// RecordAgentEvents counts a bot's journal entries by type
func (mc *MetricsCollector) RecordAgentEvents(scenario string, memory *agents.Memory) {
	c, ok := mc.metrics["agent_events"].(*prometheus.CounterVec)
	if !ok {
		return
	}
	for _, t := range journalTypes {
		if n := memory.Count(t); n > 0 {
			c.WithLabelValues(scenario, t).Add(float64(n))
		}
	}
}

// RecordResult records the summary of a finished run
func (mc *MetricsCollector) RecordResult(result *EvaluationResult) {
	if c, ok := mc.metrics["runs"].(*prometheus.CounterVec); ok {
		c.WithLabelValues(result.Scenario).Inc()
	}
	if g, ok := mc.metrics["score"].(*prometheus.GaugeVec); ok {
		g.WithLabelValues(result.Scenario).Set(float64(result.Score))
	}
	if g, ok := mc.metrics["delivery_rate"].(*prometheus.GaugeVec); ok {
		rate, _ := result.Metrics["delivery_rate"].(float64)
		g.WithLabelValues(result.Scenario).Set(rate)
	}
}

func (mc *MetricsCollector) incOrders(scenario, outcome string) {
	if c, ok := mc.metrics["orders"].(*prometheus.CounterVec); ok {
		c.WithLabelValues(scenario, outcome).Inc()
	}
}

func (mc *MetricsCollector) incWaste(scenario, reason string) {
	if c, ok := mc.metrics["waste"].(*prometheus.CounterVec); ok {
		c.WithLabelValues(scenario, reason).Inc()
	}
}

var journalTypes = []string{
	agents.EventOrderCommitted,
	agents.EventOrderSkipped,
	agents.EventOrderAborted,
	agents.EventDelivering,
	agents.EventDelivered,
	agents.EventPlanned,
	agents.EventRejected,
	agents.EventChopSkipped,
}

// ComputeMetrics derives the scores of a run from the kitchen statistics
// and the bots' journals
func ComputeMetrics(stats kitchen.Stats, score int, elapsed time.Duration, memories []*agents.Memory) Metrics {
	m := Metrics{}

	if stats.OrdersPlaced > 0 {
		m.DeliveryRate = float64(stats.OrdersDelivered) / float64(stats.OrdersPlaced)
	}
	if stats.OrdersDelivered > 0 {
		m.AvgDeliveryTime = stats.DeliveryTime / time.Duration(stats.OrdersDelivered)
	}
	if elapsed > 0 {
		m.ScorePerMinute = float64(score) / elapsed.Minutes()
	}

	// Wasted items over everything that reached a dish or the bin
	if total := stats.ItemsBurnt + stats.ItemsDiscarded + stats.DishesAssembled; total > 0 {
		m.WasteRate = float64(stats.ItemsBurnt+stats.ItemsDiscarded) / float64(total)
	}

	for _, mem := range memories {
		m.RejectedActions += mem.Count(agents.EventRejected)
		m.Aborts += mem.Count(agents.EventOrderAborted)
		m.Plans += mem.Count(agents.EventPlanned)
		m.SkippedOrders += mem.Count(agents.EventOrderSkipped)
	}
	if len(memories) > 0 {
		m.DeliveriesPerBot = float64(stats.OrdersDelivered) / float64(len(memories))
	}
	return m
}

// Map flattens the metrics together with the raw counts for a result
func (m Metrics) Map(stats kitchen.Stats, score int) map[string]interface{} {
	return map[string]interface{}{
		"score":                score,
		"orders_placed":        stats.OrdersPlaced,
		"orders_delivered":     stats.OrdersDelivered,
		"orders_expired":       stats.OrdersExpired,
		"items_burnt":          stats.ItemsBurnt,
		"items_discarded":      stats.ItemsDiscarded,
		"dishes_assembled":     stats.DishesAssembled,
		"delivery_rate":        m.DeliveryRate,
		"avg_delivery_seconds": m.AvgDeliveryTime.Seconds(),
		"score_per_minute":     m.ScorePerMinute,
		"waste_rate":           m.WasteRate,
		"rejected_actions":     m.RejectedActions,
		"aborts":               m.Aborts,
		"plans":                m.Plans,
		"skipped_orders":       m.SkippedOrders,
		"deliveries_per_bot":   m.DeliveriesPerBot,
	}
}
