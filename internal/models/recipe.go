package models

import (
	"errors"
	"fmt"
	"time"
)

// Ingredient is one entry of a recipe's ordered ingredient list
type Ingredient struct {
	Item ItemType `yaml:"item" json:"item"`
	Chop bool     `yaml:"chop,omitempty" json:"chop,omitempty"`
}

// Recipe maps a dish to the ingredients the assembly counter needs. The
// first ingredient is the structural base and must be placed first.
// Assembled is what the counter produces; when it differs from Dish the
// assembled item still has to be cooked.
type Recipe struct {
	Dish        ItemType     `yaml:"dish" json:"dish"`
	Assembled   ItemType     `yaml:"assembled,omitempty" json:"assembled,omitempty"`
	Ingredients []Ingredient `yaml:"ingredients" json:"ingredients"`
	Points      int          `yaml:"points" json:"points"`
}

// Base returns the structural base ingredient
func (r Recipe) Base() Ingredient {
	return r.Ingredients[0]
}

// NeedsBaking reports whether the assembled item must be cooked before delivery
func (r Recipe) NeedsBaking() bool {
	return r.Assembled != "" && r.Assembled != r.Dish
}

// AssembledItem returns what the assembly counter yields for this recipe
func (r Recipe) AssembledItem() ItemType {
	if r.Assembled == "" {
		return r.Dish
	}
	return r.Assembled
}

// Validate checks the recipe for structural problems
func (r Recipe) Validate() error {
	if !r.Dish.Valid() {
		return fmt.Errorf("recipe has unknown dish %q", r.Dish)
	}
	if r.Assembled != "" && !r.Assembled.Valid() {
		return fmt.Errorf("recipe %s has unknown assembled item %q", r.Dish, r.Assembled)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("recipe %s must have at least one ingredient", r.Dish)
	}
	seen := make(map[ItemType]bool, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if !ing.Item.Valid() {
			return fmt.Errorf("recipe %s has unknown ingredient %q", r.Dish, ing.Item)
		}
		if seen[ing.Item] {
			return fmt.Errorf("recipe %s lists %s twice", r.Dish, ing.Item)
		}
		seen[ing.Item] = true
	}
	if r.Points < 0 {
		return errors.New("recipe points must not be negative")
	}
	return nil
}

// CookRule describes how a cooking station transforms a raw item
type CookRule struct {
	Raw     ItemType    `yaml:"raw" json:"raw"`
	Cooked  ItemType    `yaml:"cooked" json:"cooked"`
	Burnt   ItemType    `yaml:"burnt,omitempty" json:"burnt,omitempty"`
	Station StationKind `yaml:"station" json:"station"`

	Duration time.Duration `yaml:"duration" json:"duration"`
	Overcook time.Duration `yaml:"overcook" json:"overcook"`
}

// Spoil returns the ruined form of the cooked item
func (c CookRule) Spoil() Item {
	if c.Burnt != "" {
		return Item{Type: c.Burnt}
	}
	return Item{Type: c.Cooked, Overcooked: true}
}

// Validate checks the cook rule
func (c CookRule) Validate() error {
	if !c.Raw.Valid() || !c.Cooked.Valid() {
		return fmt.Errorf("cook rule %s -> %s uses unknown items", c.Raw, c.Cooked)
	}
	if c.Burnt != "" && !c.Burnt.Valid() {
		return fmt.Errorf("cook rule for %s has unknown burnt item %q", c.Raw, c.Burnt)
	}
	if !c.Station.Cooks() {
		return fmt.Errorf("cook rule for %s needs a stove or oven, got %q", c.Raw, c.Station)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("cook rule for %s needs a positive duration", c.Raw)
	}
	return nil
}
