package kitchen

import (
	"time"

	"github.com/google/uuid"

	"kitchenbot/internal/models"
)

// PlaceOrder adds an order for dish with the given lifetime, bypassing the
// order cap. A zero ttl uses the configured lifetime.
func (k *Kitchen) PlaceOrder(dish models.ItemType, ttl time.Duration) models.Order {
	if ttl <= 0 {
		ttl = k.cfg.OrderLifetime
	}
	o := models.Order{
		ID:            k.newOrderID(),
		Dish:          dish,
		TimeRemaining: ttl,
		PlacedAt:      k.now,
	}
	k.orders = append(k.orders, o)
	k.emit(Event{Type: EventOrderPlaced, Player: -1, Station: -1, OrderID: o.ID, Item: dish})
	return o
}

// CancelOrder removes an active order without scoring it
func (k *Kitchen) CancelOrder(id string) bool {
	for i, o := range k.orders {
		if o.ID == id {
			k.orders = append(k.orders[:i], k.orders[i+1:]...)
			return true
		}
	}
	return false
}

func (k *Kitchen) generateOrder() {
	if len(k.orders) >= k.cfg.MaxOrders {
		return
	}
	menu := k.cfg.Menu
	if len(menu) == 0 {
		menu = k.catalog.Dishes()
	}
	k.PlaceOrder(menu[k.rng.Intn(len(menu))], k.cfg.OrderLifetime)
}

func (k *Kitchen) updateOrders(dt time.Duration) {
	active := k.orders[:0]
	var expired []models.Order
	for _, o := range k.orders {
		o.TimeRemaining -= dt
		if o.Expired() {
			expired = append(expired, o)
			continue
		}
		active = append(active, o)
	}
	k.orders = active

	for _, o := range expired {
		k.score -= k.cfg.ExpiryPenalty
		k.emit(Event{Type: EventOrderExpired, Player: -1, Station: -1, OrderID: o.ID, Item: o.Dish, Points: -k.cfg.ExpiryPenalty})
	}

	if len(k.orders) < k.cfg.RefillBelow {
		k.generateOrder()
	}
}

// orderPoints is the recipe value plus one point for every full bonus
// interval left on the order.
func (k *Kitchen) orderPoints(o models.Order) int {
	points := 0
	if r, ok := k.catalog.RecipeFor(o.Dish); ok {
		points = r.Points
	}
	if k.cfg.BonusEvery > 0 && o.TimeRemaining > 0 {
		points += int(o.TimeRemaining / k.cfg.BonusEvery)
	}
	return points
}

// Order ids come from the kitchen's seeded source so that a replayed game
// yields the same ids.
func (k *Kitchen) newOrderID() string {
	id, err := uuid.NewRandomFromReader(k.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
