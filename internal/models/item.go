package models

import "fmt"

// ItemType identifies an ingredient or a dish
type ItemType string

const (
	ItemTomato      ItemType = "tomato"
	ItemLettuce     ItemType = "lettuce"
	ItemBread       ItemType = "bread"
	ItemDough       ItemType = "dough"
	ItemCheese      ItemType = "cheese"
	ItemRawPatty    ItemType = "raw_patty"
	ItemCookedPatty ItemType = "cooked_patty"
	ItemBurntPatty  ItemType = "burnt_patty"

	// Composite dishes are produced by assembly or cooking, never spawned.
	ItemBurger   ItemType = "burger"
	ItemRawPizza ItemType = "raw_pizza"
	ItemPizza    ItemType = "pizza"
	ItemSalad    ItemType = "salad"
)

var itemTypes = map[ItemType]bool{
	ItemTomato:      true,
	ItemLettuce:     true,
	ItemBread:       true,
	ItemDough:       true,
	ItemCheese:      true,
	ItemRawPatty:    true,
	ItemCookedPatty: true,
	ItemBurntPatty:  true,
	ItemBurger:      true,
	ItemRawPizza:    true,
	ItemPizza:       true,
	ItemSalad:       true,
}

// Valid reports whether t is a known item type
func (t ItemType) Valid() bool {
	return itemTypes[t]
}

// Burnt reports whether t is the burnt form of a cooked ingredient
func (t ItemType) Burnt() bool {
	return t == ItemBurntPatty
}

// ParseItemType converts a string to an ItemType, rejecting unknown values
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown item type: %q", s)
	}
	return t, nil
}

// Item is one instance of an ingredient or dish. Items are values; whoever
// holds the value owns the item.
type Item struct {
	Type       ItemType `json:"type"`
	Chopped    bool     `json:"chopped,omitempty"`
	Overcooked bool     `json:"overcooked,omitempty"`
}

// NewItem returns a fresh, unprepared item of type t
func NewItem(t ItemType) *Item {
	return &Item{Type: t}
}

// Ruined reports whether the item can no longer be served or used
func (i Item) Ruined() bool {
	return i.Overcooked || i.Type.Burnt()
}

// Matches reports whether the item satisfies the wanted form. A wanted
// Chopped flag requires a chopped item; Overcooked items never match.
func (i Item) Matches(want Item) bool {
	if i.Type != want.Type || i.Ruined() {
		return false
	}
	return !want.Chopped || i.Chopped
}

func (i Item) String() string {
	switch {
	case i.Overcooked:
		return "overcooked " + string(i.Type)
	case i.Chopped:
		return "chopped " + string(i.Type)
	default:
		return string(i.Type)
	}
}

// CloneItem copies an optional item
func CloneItem(i *Item) *Item {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
