package models

import "time"

// Order is a customer request for one dish. Orders belong to the kitchen;
// agents only read copies of them.
type Order struct {
	ID            string        `json:"id"`
	Dish          ItemType      `json:"dish"`
	TimeRemaining time.Duration `json:"time_remaining"`
	PlacedAt      time.Duration `json:"placed_at"`
}

// Expired reports whether the order ran out of time
func (o Order) Expired() bool {
	return o.TimeRemaining <= 0
}

// OrderStatus represents how an order left the kitchen
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusExpired   OrderStatus = "expired"
)
