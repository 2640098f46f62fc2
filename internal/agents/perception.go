package agents

import (
	"time"

	"kitchenbot/internal/models"
)

// Simulation is the command and query surface a bot drives. It is
// implemented by *kitchen.Kitchen.
type Simulation interface {
	Now() time.Duration
	Bounds() models.Bounds
	Move(player, dx, dy int) error
	Interact(player int) error
	Chop(player int) error
	Stations() []models.Station
	Players() []models.Player
	Orders() []models.Order
	Score() int
}

// Layout caches station indices per kind. The station set of a kitchen is
// fixed after setup, so a layout is built once and reused every tick.
type Layout struct {
	byKind   map[models.StationKind][]int
	spawns   map[models.ItemType]int
	assembly int
	delivery int
	bin      int
	size     int
}

// NewLayout indexes a station list
func NewLayout(stations []models.Station) *Layout {
	l := &Layout{
		byKind:   make(map[models.StationKind][]int),
		spawns:   make(map[models.ItemType]int),
		assembly: -1,
		delivery: -1,
		bin:      -1,
		size:     len(stations),
	}
	for i, s := range stations {
		l.byKind[s.Kind] = append(l.byKind[s.Kind], i)
		switch s.Kind {
		case models.StationSpawn:
			if _, ok := l.spawns[s.Spawns]; !ok {
				l.spawns[s.Spawns] = i
			}
		case models.StationAssembly:
			if l.assembly < 0 {
				l.assembly = i
			}
		case models.StationDelivery:
			if l.delivery < 0 {
				l.delivery = i
			}
		case models.StationBin:
			if l.bin < 0 {
				l.bin = i
			}
		}
	}
	return l
}

// Snapshot is one tick's read-only view of the kitchen for one player
type Snapshot struct {
	Now      time.Duration
	Bounds   models.Bounds
	Index    int
	Player   models.Player
	Orders   []models.Order
	Stations []models.Station
	Score    int

	// CookElapsed maps a cooking station index to how long it has cooked
	CookElapsed map[int]time.Duration

	layout *Layout
}

// Perceive takes a snapshot of the simulation for a player
func Perceive(sim Simulation, player int) Snapshot {
	return perceive(sim, player, nil)
}

func perceive(sim Simulation, player int, layout *Layout) Snapshot {
	stations := sim.Stations()
	if layout == nil || layout.size != len(stations) {
		layout = NewLayout(stations)
	}

	snap := Snapshot{
		Now:         sim.Now(),
		Bounds:      sim.Bounds(),
		Index:       player,
		Orders:      sim.Orders(),
		Stations:    stations,
		Score:       sim.Score(),
		CookElapsed: make(map[int]time.Duration),
		layout:      layout,
	}
	if players := sim.Players(); player >= 0 && player < len(players) {
		snap.Player = players[player]
	}
	for i, s := range stations {
		if s.Cooking {
			snap.CookElapsed[i] = s.CookElapsed(snap.Now)
		}
	}
	return snap
}

// Held returns the item in the player's hands, or nil
func (s *Snapshot) Held() *models.Item {
	return s.Player.Held
}

// Assembly returns the assembly station index, or -1
func (s *Snapshot) Assembly() int {
	return s.layout.assembly
}

// Delivery returns the delivery station index, or -1
func (s *Snapshot) Delivery() int {
	return s.layout.delivery
}

// Bin returns the bin station index, or -1
func (s *Snapshot) Bin() int {
	return s.layout.bin
}

// SpawnFor returns the source station for an item type, or -1
func (s *Snapshot) SpawnFor(t models.ItemType) int {
	if i, ok := s.layout.spawns[t]; ok {
		return i
	}
	return -1
}

// Kind returns the indices of every station of a kind in layout order
func (s *Snapshot) Kind(kind models.StationKind) []int {
	return s.layout.byKind[kind]
}

// FreeStation returns the first empty station of a kind, or -1
func (s *Snapshot) FreeStation(kind models.StationKind) int {
	for _, i := range s.layout.byKind[kind] {
		if s.Stations[i].Empty() && !s.Stations[i].Cooking {
			return i
		}
	}
	return -1
}

// StationHolding returns the first station of a kind whose slot holds an
// item satisfying pred, or -1.
func (s *Snapshot) StationHolding(kind models.StationKind, pred func(models.Item) bool) int {
	for _, i := range s.layout.byKind[kind] {
		if item := s.Stations[i].Item; item != nil && pred(*item) {
			return i
		}
	}
	return -1
}

// StationCooking returns the first station of a kind that is cooking an
// item of type t, or -1.
func (s *Snapshot) StationCooking(kind models.StationKind, t models.ItemType) int {
	for _, i := range s.layout.byKind[kind] {
		st := s.Stations[i]
		if st.Cooking && st.Item != nil && st.Item.Type == t {
			return i
		}
	}
	return -1
}

// HasOrder reports whether an order is still active
func (s *Snapshot) HasOrder(id string) bool {
	_, ok := s.Order(id)
	return ok
}

// Order returns an active order by id
func (s *Snapshot) Order(id string) (models.Order, bool) {
	for _, o := range s.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

// AssemblyContents returns the in-progress stack of the assembly station
func (s *Snapshot) AssemblyContents() []models.Item {
	if s.layout.assembly < 0 {
		return nil
	}
	return s.Stations[s.layout.assembly].Contents
}

// Near reports whether the player stands within tol of a station's anchor
func (s *Snapshot) Near(station, tol int) bool {
	ax, ay := s.Stations[station].Anchor(s.Bounds)
	return abs(s.Player.X-ax) <= tol && abs(s.Player.Y-ay) <= tol
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
