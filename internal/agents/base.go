package agents

import (
	"fmt"
	"time"
)

// Agent is anything that plays one player of a kitchen
type Agent interface {
	Player() int
	Update(sim Simulation)
	Memory() *Memory
}

// Memory event types
const (
	EventOrderCommitted  = "order_committed"
	EventOrderSkipped    = "order_skipped"
	EventOrderAborted    = "order_aborted"
	EventDelivering      = "delivering"
	EventDelivered       = "delivered"
	EventPlanned         = "planned"
	EventRejected        = "action_rejected"
	EventChopSkipped     = "chop_skipped"
	EventInteractSkipped = "interact_skipped"
)

// Memory is a bot's decision journal. ShortTerm keeps the most recent
// events; LongTerm keeps every significant one for the whole game.
type Memory struct {
	ShortTerm []Event
	LongTerm  []Event
	limit     int
	counts    map[string]int
}

// Event represents a single event in the bot's memory
type Event struct {
	At       time.Duration          `json:"at"`
	Type     string                 `json:"type"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (e Event) String() string {
	return fmt.Sprintf("[%7.2fs] %-16s %s", e.At.Seconds(), e.Type, e.Content)
}

// NewMemory creates a memory keeping at most limit short-term events
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = 64
	}
	return &Memory{
		ShortTerm: make([]Event, 0, limit),
		LongTerm:  make([]Event, 0),
		limit:     limit,
		counts:    make(map[string]int),
	}
}

// Add records an event
func (m *Memory) Add(event Event) {
	if len(m.ShortTerm) == m.limit {
		copy(m.ShortTerm, m.ShortTerm[1:])
		m.ShortTerm = m.ShortTerm[:m.limit-1]
	}
	m.ShortTerm = append(m.ShortTerm, event)
	m.counts[event.Type]++

	if isSignificant(event) {
		m.LongTerm = append(m.LongTerm, event)
	}
}

// Query returns up to k of the most recent significant events of a type,
// newest first. An empty type matches every event.
func (m *Memory) Query(eventType string, k int) []Event {
	var results []Event
	for i := len(m.LongTerm) - 1; i >= 0 && len(results) < k; i-- {
		if eventType == "" || m.LongTerm[i].Type == eventType {
			results = append(results, m.LongTerm[i])
		}
	}
	return results
}

// Count returns how many events of a type were ever recorded
func (m *Memory) Count(eventType string) int {
	return m.counts[eventType]
}

// isSignificant determines if an event should be kept in long-term memory
func isSignificant(event Event) bool {
	criticalTypes := map[string]bool{
		EventOrderCommitted: true,
		EventOrderSkipped:   true,
		EventOrderAborted:   true,
		EventDelivering:     true,
		EventDelivered:      true,
		EventRejected:       true,
	}
	if criticalTypes[event.Type] {
		return true
	}

	if important, ok := event.Metadata["important"].(bool); ok && important {
		return true
	}
	return false
}
