package evaluation

import (
	"time"

	"kitchenbot/internal/agents"
	"kitchenbot/internal/models"
)

// Scenario describes one headless evaluation game
type Scenario struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Difficulty  int               `json:"difficulty" yaml:"difficulty"`
	Menu        []models.ItemType `json:"menu" yaml:"menu"`
	Bots        int               `json:"bots" yaml:"bots"`
	Duration    time.Duration     `json:"duration" yaml:"duration"`

	// Zero values fall back to the kitchen defaults
	OrderLifetime time.Duration `json:"order_lifetime,omitempty" yaml:"order_lifetime"`
	MaxOrders     int           `json:"max_orders,omitempty" yaml:"max_orders"`
	Seed          int64         `json:"seed,omitempty" yaml:"seed"`
}

// EvaluationResult contains everything measured over one run
type EvaluationResult struct {
	RunID     string                 `json:"run_id"`
	Scenario  string                 `json:"scenario"`
	Seed      int64                  `json:"seed"`
	Bots      int                    `json:"bots"`
	Menu      []models.ItemType      `json:"menu"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Elapsed   time.Duration          `json:"elapsed"`
	Score     int                    `json:"score"`
	Metrics   map[string]interface{} `json:"metrics"`
	Events    []EventLog             `json:"events,omitempty"`
	Memories  map[int][]agents.Event `json:"memories,omitempty"`
	Debrief   string                 `json:"debrief,omitempty"`
}

// EventLog captures one kitchen event on the simulation clock
type EventLog struct {
	At   time.Duration          `json:"at"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// Record converts a result into its stored form
func (r *EvaluationResult) Record() *models.RunRecord {
	menu := make(models.StringSlice, len(r.Menu))
	for i, d := range r.Menu {
		menu[i] = string(d)
	}

	rec := &models.RunRecord{
		RunID:      r.RunID,
		Scenario:   r.Scenario,
		Seed:       r.Seed,
		Bots:       r.Bots,
		Menu:       menu,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		SimElapsed: r.Elapsed,
		Score:      r.Score,
		Debrief:    r.Debrief,
	}
	rec.OrdersPlaced = intMetric(r.Metrics, "orders_placed")
	rec.OrdersDelivered = intMetric(r.Metrics, "orders_delivered")
	rec.OrdersExpired = intMetric(r.Metrics, "orders_expired")
	rec.RejectedActions = intMetric(r.Metrics, "rejected_actions")
	rec.Aborts = intMetric(r.Metrics, "aborts")
	rec.DeliveryRate, _ = r.Metrics["delivery_rate"].(float64)
	rec.AvgDeliveryTime, _ = r.Metrics["avg_delivery_seconds"].(float64)

	for _, e := range r.Events {
		ev := models.RunEvent{At: e.At, Type: e.Type}
		ev.OrderID, _ = e.Data["order_id"].(string)
		ev.Item, _ = e.Data["item"].(string)
		ev.Points, _ = e.Data["points"].(int)
		rec.Events = append(rec.Events, ev)
	}
	for player, events := range r.Memories {
		for _, e := range events {
			rec.Actions = append(rec.Actions, models.AgentActionLog{
				Player:  player,
				At:      e.At,
				Kind:    e.Type,
				Details: e.Content,
			})
		}
	}
	return rec
}

func intMetric(m map[string]interface{}, key string) int {
	v, _ := m[key].(int)
	return v
}
