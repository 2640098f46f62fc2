package models

// Bounds describes the kitchen floor grid
type Bounds struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
	Step   int `yaml:"step" json:"step"`
}

// Clamp restricts a point to the floor
func (b Bounds) Clamp(x, y int) (int, int) {
	return max(0, min(b.Width, x)), max(0, min(b.Height, y))
}

// Player is an avatar on the kitchen floor
type Player struct {
	X    int   `json:"x"`
	Y    int   `json:"y"`
	Held *Item `json:"held,omitempty"`
}

// Clone returns a deep copy of the player
func (p Player) Clone() Player {
	c := p
	c.Held = CloneItem(p.Held)
	return c
}

// Distance returns the manhattan distance between the player and a point
func (p Player) Distance(x, y int) int {
	return abs(p.X-x) + abs(p.Y-y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
