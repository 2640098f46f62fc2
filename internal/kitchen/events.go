package kitchen

import (
	"time"

	"kitchenbot/internal/models"
)

// EventType names something that happened in the kitchen
type EventType string

const (
	EventOrderPlaced    EventType = "order_placed"
	EventOrderDelivered EventType = "order_delivered"
	EventOrderExpired   EventType = "order_expired"
	EventItemCooked     EventType = "item_cooked"
	EventItemBurnt      EventType = "item_burnt"
	EventDishAssembled  EventType = "dish_assembled"
	EventItemDiscarded  EventType = "item_discarded"
	EventGameOver       EventType = "game_over"
)

// Event is emitted through Kitchen.OnEvent. Player and Station are -1 when
// not applicable.
type Event struct {
	At      time.Duration   `json:"at"`
	Type    EventType       `json:"type"`
	Player  int             `json:"player"`
	Station int             `json:"station"`
	OrderID string          `json:"order_id,omitempty"`
	Item    models.ItemType `json:"item,omitempty"`
	Points  int             `json:"points,omitempty"`
}

// Stats counts what happened over a game
type Stats struct {
	OrdersPlaced    int           `json:"orders_placed"`
	OrdersDelivered int           `json:"orders_delivered"`
	OrdersExpired   int           `json:"orders_expired"`
	ItemsBurnt      int           `json:"items_burnt"`
	ItemsDiscarded  int           `json:"items_discarded"`
	DishesAssembled int           `json:"dishes_assembled"`
	DeliveryTime    time.Duration `json:"delivery_time"`
}

func (k *Kitchen) emit(e Event) {
	e.At = k.now
	switch e.Type {
	case EventOrderPlaced:
		k.stats.OrdersPlaced++
	case EventOrderDelivered:
		k.stats.OrdersDelivered++
	case EventOrderExpired:
		k.stats.OrdersExpired++
	case EventItemBurnt:
		k.stats.ItemsBurnt++
	case EventItemDiscarded:
		k.stats.ItemsDiscarded++
	case EventDishAssembled:
		k.stats.DishesAssembled++
	}
	if k.OnEvent != nil {
		k.OnEvent(e)
	}
}
