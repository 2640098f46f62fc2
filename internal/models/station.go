package models

import "time"

// StationKind represents the kind of a kitchen work station
type StationKind string

const (
	StationSpawn    StationKind = "spawn"
	StationBoard    StationKind = "board"
	StationStove    StationKind = "stove"
	StationOven     StationKind = "oven"
	StationAssembly StationKind = "assembly"
	StationDelivery StationKind = "delivery"
	StationBin      StationKind = "bin"
)

// StationKinds lists every kind in a fixed order
var StationKinds = []StationKind{
	StationSpawn,
	StationBoard,
	StationStove,
	StationOven,
	StationAssembly,
	StationDelivery,
	StationBin,
}

// Valid reports whether k is a known station kind
func (k StationKind) Valid() bool {
	for _, kind := range StationKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Cooks reports whether stations of this kind run a cooking process
func (k StationKind) Cooks() bool {
	return k == StationStove || k == StationOven
}

// Station is a fixed-position work surface. Item holds a finished or slotted
// item; Contents is the ordered assembly stack and is only non-empty on an
// assembly station while Item is nil.
type Station struct {
	ID     int         `json:"id"`
	Kind   StationKind `json:"kind"`
	X      int         `json:"x"`
	Y      int         `json:"y"`
	Spawns ItemType    `json:"spawns,omitempty"`

	Item     *Item  `json:"item,omitempty"`
	Contents []Item `json:"contents,omitempty"`

	Cooking          bool          `json:"cooking,omitempty"`
	CookStart        time.Duration `json:"cook_start,omitempty"`
	CookDuration     time.Duration `json:"cook_duration,omitempty"`
	OvercookDuration time.Duration `json:"overcook_duration,omitempty"`
}

// Clone returns a deep copy of the station
func (s Station) Clone() Station {
	c := s
	c.Item = CloneItem(s.Item)
	if s.Contents != nil {
		c.Contents = append([]Item(nil), s.Contents...)
	}
	return c
}

// Empty reports whether the station has neither a slotted item nor contents
func (s Station) Empty() bool {
	return s.Item == nil && len(s.Contents) == 0
}

// CookElapsed returns how long the current cooking process has been running
func (s Station) CookElapsed(now time.Duration) time.Duration {
	if !s.Cooking {
		return 0
	}
	return now - s.CookStart
}

// CookRemaining returns the time left until the item is cooked
func (s Station) CookRemaining(now time.Duration) time.Duration {
	if !s.Cooking {
		return 0
	}
	return max(0, s.CookDuration-s.CookElapsed(now))
}

// Anchor returns the point a player stands on to use the station: one grid
// step below it, clamped to the map.
func (s Station) Anchor(b Bounds) (int, int) {
	return s.X, min(b.Height, s.Y+b.Step)
}
