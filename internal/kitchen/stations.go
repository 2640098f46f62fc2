package kitchen

import (
	"fmt"

	"kitchenbot/internal/models"
)

type interactFn func(k *Kitchen, player int, p *models.Player, s *models.Station) error

// interactions dispatches Interact by station kind
var interactions = map[models.StationKind]interactFn{
	models.StationSpawn:    interactSpawn,
	models.StationBoard:    interactBoard,
	models.StationStove:    interactCooker,
	models.StationOven:     interactCooker,
	models.StationAssembly: interactAssembly,
	models.StationDelivery: interactDelivery,
	models.StationBin:      interactBin,
}

func interactSpawn(k *Kitchen, player int, p *models.Player, s *models.Station) error {
	if p.Held != nil {
		return fmt.Errorf("%w: hands full at %s source", ErrRejected, s.Spawns)
	}
	p.Held = models.NewItem(s.Spawns)
	return nil
}

// Boards are counter space for any item; only choppable items can be
// chopped there.
func interactBoard(k *Kitchen, player int, p *models.Player, s *models.Station) error {
	switch {
	case p.Held != nil && s.Item == nil:
		s.Item, p.Held = p.Held, nil
		return nil
	case p.Held == nil && s.Item != nil:
		p.Held, s.Item = s.Item, nil
		return nil
	case p.Held == nil:
		return fmt.Errorf("%w: board %d is empty", ErrRejected, s.ID)
	default:
		return fmt.Errorf("%w: board %d is occupied", ErrRejected, s.ID)
	}
}

func interactCooker(k *Kitchen, player int, p *models.Player, s *models.Station) error {
	if p.Held == nil {
		if s.Item == nil {
			return fmt.Errorf("%w: %s %d is empty", ErrRejected, s.Kind, s.ID)
		}
		p.Held, s.Item = s.Item, nil
		stopCooking(s)
		return nil
	}
	if s.Item != nil {
		return fmt.Errorf("%w: %s %d is occupied", ErrRejected, s.Kind, s.ID)
	}

	rule, ok := k.catalog.CookRule(p.Held.Type)
	if !ok || rule.Station != s.Kind || p.Held.Ruined() {
		return fmt.Errorf("%w: %s cannot be cooked on a %s", ErrRejected, p.Held, s.Kind)
	}
	s.Item, p.Held = p.Held, nil
	s.Cooking = true
	s.CookStart = k.now
	s.CookDuration = rule.Duration
	s.OvercookDuration = rule.Overcook
	return nil
}

// The assembly counter builds dishes from the catalog and doubles as the
// bin for ruined items. Empty hands take back the last item of a partial
// build.
func interactAssembly(k *Kitchen, player int, p *models.Player, s *models.Station) error {
	if p.Held != nil && p.Held.Ruined() {
		t := p.Held.Type
		p.Held = nil
		k.emit(Event{Type: EventItemDiscarded, Player: player, Station: s.ID, Item: t})
		return nil
	}
	if s.Item != nil {
		if p.Held != nil {
			return fmt.Errorf("%w: assembly %d holds a finished %s", ErrRejected, s.ID, s.Item)
		}
		p.Held, s.Item = s.Item, nil
		return nil
	}
	if p.Held == nil {
		n := len(s.Contents)
		if n == 0 {
			return fmt.Errorf("%w: nothing to take from assembly %d", ErrRejected, s.ID)
		}
		last := s.Contents[n-1]
		p.Held = &last
		s.Contents = s.Contents[:n-1:n-1]
		if len(s.Contents) == 0 {
			s.Contents = nil
		}
		return nil
	}

	held := *p.Held
	if len(s.Contents) == 0 && k.isDish(held.Type) {
		s.Item, p.Held = p.Held, nil
		return nil
	}
	if !k.catalog.Accepts(s.Contents, held) {
		return fmt.Errorf("%w: assembly %d does not take %s", ErrRejected, s.ID, held)
	}

	s.Contents = append(s.Contents, held)
	p.Held = nil
	if r, ok := k.catalog.Completes(s.Contents); ok {
		s.Item = models.NewItem(r.AssembledItem())
		s.Contents = nil
		k.emit(Event{Type: EventDishAssembled, Player: player, Station: s.ID, Item: s.Item.Type})
	}
	return nil
}

func interactDelivery(k *Kitchen, player int, p *models.Player, s *models.Station) error {
	if p.Held == nil {
		return fmt.Errorf("%w: nothing to deliver", ErrRejected)
	}
	if p.Held.Ruined() {
		return fmt.Errorf("%w: %s cannot be served", ErrRejected, p.Held)
	}
	for i, o := range k.orders {
		if o.Dish != p.Held.Type {
			continue
		}
		points := k.orderPoints(o)
		k.orders = append(k.orders[:i], k.orders[i+1:]...)
		k.score += points
		k.stats.DeliveryTime += k.now - o.PlacedAt
		p.Held = nil
		k.emit(Event{Type: EventOrderDelivered, Player: player, Station: s.ID, OrderID: o.ID, Item: o.Dish, Points: points})
		return nil
	}
	return fmt.Errorf("%w: no order for %s", ErrRejected, p.Held)
}

func interactBin(k *Kitchen, player int, p *models.Player, s *models.Station) error {
	if p.Held == nil {
		return fmt.Errorf("%w: nothing to throw away", ErrRejected)
	}
	t := p.Held.Type
	p.Held = nil
	k.emit(Event{Type: EventItemDiscarded, Player: player, Station: s.ID, Item: t})
	return nil
}

func (k *Kitchen) updateCooking() {
	for i := range k.stations {
		s := &k.stations[i]
		if !s.Cooking || s.Item == nil {
			continue
		}
		elapsed := s.CookElapsed(k.now)

		if rule, ok := k.catalog.CookRule(s.Item.Type); ok && elapsed >= s.CookDuration {
			s.Item = models.NewItem(rule.Cooked)
			k.emit(Event{Type: EventItemCooked, Player: -1, Station: s.ID, Item: rule.Cooked})
			if s.OvercookDuration <= 0 {
				stopCooking(s)
				continue
			}
		}

		if rule, ok := k.catalog.CooksInto(s.Item.Type); ok && !s.Item.Ruined() &&
			s.OvercookDuration > 0 && elapsed >= s.CookDuration+s.OvercookDuration {
			spoiled := rule.Spoil()
			s.Item = &spoiled
			stopCooking(s)
			k.emit(Event{Type: EventItemBurnt, Player: -1, Station: s.ID, Item: spoiled.Type})
		}
	}
}

func (k *Kitchen) isDish(t models.ItemType) bool {
	for _, r := range k.catalog.Recipes() {
		if r.Dish == t || r.AssembledItem() == t {
			return true
		}
	}
	return false
}

func stopCooking(s *models.Station) {
	s.Cooking = false
	s.CookStart = 0
	s.CookDuration = 0
	s.OvercookDuration = 0
}
