package kitchen

import (
	"fmt"
	"time"

	"kitchenbot/internal/models"
)

// The helpers below set up a kitchen state directly. Scenarios use them to
// start from a prepared kitchen; normal play goes through Move, Interact and
// Chop only.

// PutItem places an item in a station's slot
func (k *Kitchen) PutItem(station int, item models.Item) error {
	s, err := k.station(station)
	if err != nil {
		return err
	}
	if !s.Empty() {
		return fmt.Errorf("%w: station %d is occupied", ErrRejected, station)
	}
	s.Item = &item
	return nil
}

// PutContents replaces the in-progress stack of an assembly station
func (k *Kitchen) PutContents(station int, contents ...models.Item) error {
	s, err := k.station(station)
	if err != nil {
		return err
	}
	if s.Kind != models.StationAssembly || s.Item != nil {
		return fmt.Errorf("%w: station %d cannot hold contents", ErrRejected, station)
	}
	s.Contents = append([]models.Item(nil), contents...)
	return nil
}

// StartCooking puts a raw item on a cooker as if it had been dropped there
// the given duration ago.
func (k *Kitchen) StartCooking(station int, raw models.ItemType, ago time.Duration) error {
	s, err := k.station(station)
	if err != nil {
		return err
	}
	rule, ok := k.catalog.CookRule(raw)
	if !ok || rule.Station != s.Kind {
		return fmt.Errorf("%w: %s does not cook on station %d", ErrRejected, raw, station)
	}
	if !s.Empty() {
		return fmt.Errorf("%w: station %d is occupied", ErrRejected, station)
	}
	s.Item = models.NewItem(raw)
	s.Cooking = true
	s.CookStart = k.now - ago
	s.CookDuration = rule.Duration
	s.OvercookDuration = rule.Overcook
	return nil
}

// Give puts an item in a player's empty hands
func (k *Kitchen) Give(player int, item models.Item) error {
	p, err := k.player(player)
	if err != nil {
		return err
	}
	if p.Held != nil {
		return fmt.Errorf("%w: player %d already holds %s", ErrRejected, player, p.Held)
	}
	p.Held = &item
	return nil
}

// Teleport moves a player to a point, clamped to the floor
func (k *Kitchen) Teleport(player, x, y int) error {
	p, err := k.player(player)
	if err != nil {
		return err
	}
	p.X, p.Y = k.cfg.Bounds.Clamp(x, y)
	return nil
}

func (k *Kitchen) station(i int) (*models.Station, error) {
	if i < 0 || i >= len(k.stations) {
		return nil, fmt.Errorf("%w: %d", ErrNoStation, i)
	}
	return &k.stations[i], nil
}
