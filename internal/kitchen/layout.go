package kitchen

import (
	"fmt"
	"time"

	"kitchenbot/internal/models"
)

// StationSpec places one station on the floor
type StationSpec struct {
	Kind   models.StationKind `yaml:"kind" json:"kind"`
	X      int                `yaml:"x" json:"x"`
	Y      int                `yaml:"y" json:"y"`
	Spawns models.ItemType    `yaml:"spawns,omitempty" json:"spawns,omitempty"`
}

// Position is a starting point for a player
type Position struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Config holds the kitchen rules and layout
type Config struct {
	Bounds        models.Bounds `yaml:"bounds"`
	InteractRange int           `yaml:"interact_range"`
	Players       []Position    `yaml:"players"`
	Layout        []StationSpec `yaml:"layout"`

	// Orders
	Menu          []models.ItemType `yaml:"menu"`
	MaxOrders     int               `yaml:"max_orders"`
	RefillBelow   int               `yaml:"refill_below"`
	OrderLifetime time.Duration     `yaml:"order_lifetime"`
	ExpiryPenalty int               `yaml:"expiry_penalty"`
	BonusEvery    time.Duration     `yaml:"bonus_every"`

	GameLength time.Duration `yaml:"game_length"`
	Seed       int64         `yaml:"seed"`
}

// DefaultConfig returns the standard two-player kitchen
func DefaultConfig() Config {
	return Config{
		Bounds:        models.Bounds{Width: 750, Height: 550, Step: 50},
		InteractRange: 70,
		Players: []Position{
			{X: 300, Y: 400},
			{X: 450, Y: 400},
		},
		Layout:        DefaultLayout(),
		MaxOrders:     3,
		RefillBelow:   2,
		OrderLifetime: 60 * time.Second,
		ExpiryPenalty: 5,
		BonusEvery:    10 * time.Second,
		GameLength:    300 * time.Second,
		Seed:          1,
	}
}

// DefaultLayout returns the fixed station layout: ingredient sources on the
// top row, boards and cookers in the middle, assembly and delivery below,
// and a bin in the bottom corner.
func DefaultLayout() []StationSpec {
	return []StationSpec{
		{Kind: models.StationSpawn, X: 100, Y: 100, Spawns: models.ItemTomato},
		{Kind: models.StationSpawn, X: 200, Y: 100, Spawns: models.ItemLettuce},
		{Kind: models.StationSpawn, X: 300, Y: 100, Spawns: models.ItemBread},
		{Kind: models.StationSpawn, X: 400, Y: 100, Spawns: models.ItemRawPatty},
		{Kind: models.StationSpawn, X: 500, Y: 100, Spawns: models.ItemDough},
		{Kind: models.StationSpawn, X: 600, Y: 100, Spawns: models.ItemCheese},

		{Kind: models.StationBoard, X: 150, Y: 200},
		{Kind: models.StationBoard, X: 250, Y: 200},
		{Kind: models.StationStove, X: 350, Y: 200},
		{Kind: models.StationStove, X: 450, Y: 200},
		{Kind: models.StationOven, X: 550, Y: 200},
		{Kind: models.StationOven, X: 650, Y: 200},

		{Kind: models.StationAssembly, X: 250, Y: 300},
		{Kind: models.StationDelivery, X: 400, Y: 300},
		{Kind: models.StationBin, X: 100, Y: 300},
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Bounds.Width <= 0 || c.Bounds.Height <= 0 || c.Bounds.Step <= 0 {
		return fmt.Errorf("invalid kitchen bounds %+v", c.Bounds)
	}
	if c.InteractRange <= 0 {
		return fmt.Errorf("interact range must be positive")
	}
	if len(c.Players) == 0 {
		return fmt.Errorf("kitchen needs at least one player")
	}
	for i, s := range c.Layout {
		if !s.Kind.Valid() {
			return fmt.Errorf("station %d has unknown kind %q", i, s.Kind)
		}
		if s.Kind == models.StationSpawn && !s.Spawns.Valid() {
			return fmt.Errorf("spawn station %d has unknown item %q", i, s.Spawns)
		}
	}
	for _, dish := range c.Menu {
		if !dish.Valid() {
			return fmt.Errorf("menu has unknown dish %q", dish)
		}
	}
	if c.RefillBelow > c.MaxOrders {
		return fmt.Errorf("refill_below (%d) exceeds max_orders (%d)", c.RefillBelow, c.MaxOrders)
	}
	if c.RefillBelow > 0 && c.OrderLifetime <= 0 {
		return fmt.Errorf("order lifetime must be positive")
	}
	return nil
}
