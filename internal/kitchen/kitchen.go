package kitchen

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"kitchenbot/internal/models"
	"kitchenbot/internal/recipes"
)

var (
	ErrNoPlayer       = errors.New("no such player")
	ErrNoStation      = errors.New("no such station")
	ErrNothingInRange = errors.New("no station in range")
	ErrRejected       = errors.New("station rejected the interaction")
	ErrNotChoppable   = errors.New("nothing to chop")
	ErrGameOver       = errors.New("game is over")
)

// Kitchen owns the stations, players and orders of one game and applies the
// station rules. It is not safe for concurrent use.
type Kitchen struct {
	cfg     Config
	catalog *recipes.Catalog
	rng     *rand.Rand

	now      time.Duration
	stations []models.Station
	players  []models.Player
	orders   []models.Order
	score    int
	finished bool
	stats    Stats

	// OnEvent, when set, receives every kitchen event synchronously
	OnEvent func(Event)
}

// New builds a kitchen from its configuration and recipe catalog
func New(cfg Config, catalog *recipes.Catalog) (*Kitchen, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kitchen config: %w", err)
	}
	if catalog == nil {
		catalog = recipes.Default()
	}
	for _, dish := range cfg.Menu {
		if _, ok := catalog.RecipeFor(dish); !ok {
			return nil, fmt.Errorf("menu dish %s has no recipe", dish)
		}
	}

	k := &Kitchen{
		cfg:     cfg,
		catalog: catalog,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}

	k.stations = make([]models.Station, len(cfg.Layout))
	for i, spec := range cfg.Layout {
		k.stations[i] = models.Station{
			ID:     i,
			Kind:   spec.Kind,
			X:      spec.X,
			Y:      spec.Y,
			Spawns: spec.Spawns,
		}
	}

	k.players = make([]models.Player, len(cfg.Players))
	for i, pos := range cfg.Players {
		x, y := cfg.Bounds.Clamp(pos.X, pos.Y)
		k.players[i] = models.Player{X: x, Y: y}
	}

	if cfg.RefillBelow > 0 {
		k.generateOrder()
	}
	return k, nil
}

// Update advances the simulation clock by dt: cooking progresses, orders
// count down and expire, new orders arrive.
func (k *Kitchen) Update(dt time.Duration) {
	if k.finished || dt <= 0 {
		return
	}
	k.now += dt

	k.updateCooking()
	k.updateOrders(dt)

	if k.cfg.GameLength > 0 && k.now >= k.cfg.GameLength {
		k.finished = true
		k.emit(Event{Type: EventGameOver, Player: -1, Station: -1, Points: k.score})
	}
}

// Move shifts a player by one grid step along each non-zero axis
func (k *Kitchen) Move(player, dx, dy int) error {
	if k.finished {
		return ErrGameOver
	}
	p, err := k.player(player)
	if err != nil {
		return err
	}
	step := k.cfg.Bounds.Step
	p.X, p.Y = k.cfg.Bounds.Clamp(p.X+sign(dx)*step, p.Y+sign(dy)*step)
	return nil
}

// Interact performs the context-sensitive action of the nearest station in
// range of the player.
func (k *Kitchen) Interact(player int) error {
	if k.finished {
		return ErrGameOver
	}
	p, err := k.player(player)
	if err != nil {
		return err
	}
	idx := k.nearest(p, "")
	if idx < 0 {
		return ErrNothingInRange
	}
	s := &k.stations[idx]
	interact, ok := interactions[s.Kind]
	if !ok {
		return fmt.Errorf("%w: %s stations have no interaction", ErrRejected, s.Kind)
	}
	return interact(k, player, p, s)
}

// Chop chops the item on the nearest cutting board in range
func (k *Kitchen) Chop(player int) error {
	if k.finished {
		return ErrGameOver
	}
	p, err := k.player(player)
	if err != nil {
		return err
	}
	idx := k.nearest(p, models.StationBoard)
	if idx < 0 {
		return ErrNothingInRange
	}
	s := &k.stations[idx]
	if s.Item == nil {
		return fmt.Errorf("%w: board %d is empty", ErrNotChoppable, s.ID)
	}
	if !k.catalog.Choppable(s.Item.Type) || s.Item.Chopped {
		return fmt.Errorf("%w: %s on board %d", ErrNotChoppable, s.Item, s.ID)
	}
	s.Item.Chopped = true
	return nil
}

// Now returns the simulation clock
func (k *Kitchen) Now() time.Duration {
	return k.now
}

// Bounds returns the floor size and grid step
func (k *Kitchen) Bounds() models.Bounds {
	return k.cfg.Bounds
}

// Stations returns a deep copy of every station, indexed by station ID
func (k *Kitchen) Stations() []models.Station {
	out := make([]models.Station, len(k.stations))
	for i, s := range k.stations {
		out[i] = s.Clone()
	}
	return out
}

// Players returns a copy of every player
func (k *Kitchen) Players() []models.Player {
	out := make([]models.Player, len(k.players))
	for i, p := range k.players {
		out[i] = p.Clone()
	}
	return out
}

// Orders returns a copy of the active orders in placement order
func (k *Kitchen) Orders() []models.Order {
	return append([]models.Order(nil), k.orders...)
}

// Score returns the current score
func (k *Kitchen) Score() int {
	return k.score
}

// Finished reports whether the game length has run out
func (k *Kitchen) Finished() bool {
	return k.finished
}

// Stats returns the running counters of the game
func (k *Kitchen) Stats() Stats {
	return k.stats
}

// Catalog returns the recipe catalog the kitchen plays with
func (k *Kitchen) Catalog() *recipes.Catalog {
	return k.catalog
}

// Config returns the kitchen configuration
func (k *Kitchen) Config() Config {
	return k.cfg
}

func (k *Kitchen) player(i int) (*models.Player, error) {
	if i < 0 || i >= len(k.players) {
		return nil, fmt.Errorf("%w: %d", ErrNoPlayer, i)
	}
	return &k.players[i], nil
}

// nearest returns the index of the closest station of the given kind (any
// kind when empty) within interact range, or -1.
func (k *Kitchen) nearest(p *models.Player, kind models.StationKind) int {
	best, bestDist := -1, 0
	for i, s := range k.stations {
		if kind != "" && s.Kind != kind {
			continue
		}
		d := p.Distance(s.X, s.Y)
		if d > k.cfg.InteractRange {
			continue
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
