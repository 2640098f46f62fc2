package recipes

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"kitchenbot/internal/models"
)

//go:embed default.yaml
var defaultCatalog []byte

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// File is the on-disk catalog layout
type File struct {
	Recipes   []models.Recipe   `yaml:"recipes"`
	Cook      []models.CookRule `yaml:"cook"`
	Choppable []models.ItemType `yaml:"choppable"`
}

// Catalog is the static recipe book. It is never mutated after construction
// and is safe to share between bots and kitchens.
type Catalog struct {
	recipes   []models.Recipe
	byDish    map[models.ItemType]int
	cook      map[models.ItemType]models.CookRule
	cooksInto map[models.ItemType]models.CookRule
	choppable map[models.ItemType]bool
}

// Default returns the built-in catalog
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalog)
		if err != nil {
			panic(fmt.Sprintf("recipes: invalid built-in catalog: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Load reads a catalog from a YAML file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse recipe catalog: %w", err)
	}
	return New(f)
}

// New builds a catalog from its parts after validating them
func New(f File) (*Catalog, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	c := &Catalog{
		recipes:   append([]models.Recipe(nil), f.Recipes...),
		byDish:    make(map[models.ItemType]int, len(f.Recipes)),
		cook:      make(map[models.ItemType]models.CookRule, len(f.Cook)),
		cooksInto: make(map[models.ItemType]models.CookRule, len(f.Cook)),
		choppable: make(map[models.ItemType]bool, len(f.Choppable)),
	}
	for i, r := range c.recipes {
		c.byDish[r.Dish] = i
	}
	for _, rule := range f.Cook {
		c.cook[rule.Raw] = rule
		c.cooksInto[rule.Cooked] = rule
	}
	for _, t := range f.Choppable {
		c.choppable[t] = true
	}
	return c, nil
}

// Validate checks a catalog file for unknown items, empty or duplicate
// recipes, and chop flags on items that cannot be chopped.
func Validate(f File) error {
	if len(f.Recipes) == 0 {
		return fmt.Errorf("catalog has no recipes")
	}

	choppable := make(map[models.ItemType]bool, len(f.Choppable))
	for _, t := range f.Choppable {
		if !t.Valid() {
			return fmt.Errorf("unknown choppable item %q", t)
		}
		choppable[t] = true
	}

	raw := make(map[models.ItemType]bool, len(f.Cook))
	for _, rule := range f.Cook {
		if err := rule.Validate(); err != nil {
			return err
		}
		if raw[rule.Raw] {
			return fmt.Errorf("duplicate cook rule for %s", rule.Raw)
		}
		raw[rule.Raw] = true
	}

	dishes := make(map[models.ItemType]bool, len(f.Recipes))
	for _, r := range f.Recipes {
		if err := r.Validate(); err != nil {
			return err
		}
		if dishes[r.Dish] {
			return fmt.Errorf("duplicate recipe for %s", r.Dish)
		}
		dishes[r.Dish] = true

		for _, ing := range r.Ingredients {
			if ing.Chop && !choppable[ing.Item] {
				return fmt.Errorf("recipe %s chops %s, which is not choppable", r.Dish, ing.Item)
			}
		}
		if r.NeedsBaking() {
			if !raw[r.Assembled] {
				return fmt.Errorf("recipe %s assembles %s but no cook rule bakes it", r.Dish, r.Assembled)
			}
		}
	}
	return nil
}

// RecipeFor returns the recipe for a dish
func (c *Catalog) RecipeFor(dish models.ItemType) (models.Recipe, bool) {
	i, ok := c.byDish[dish]
	if !ok {
		return models.Recipe{}, false
	}
	return c.recipes[i], true
}

// Recipes returns every recipe in menu order
func (c *Catalog) Recipes() []models.Recipe {
	return append([]models.Recipe(nil), c.recipes...)
}

// Dishes returns the menu in a stable order
func (c *Catalog) Dishes() []models.ItemType {
	dishes := make([]models.ItemType, len(c.recipes))
	for i, r := range c.recipes {
		dishes[i] = r.Dish
	}
	return dishes
}

// CookRule returns how a raw item is cooked
func (c *Catalog) CookRule(raw models.ItemType) (models.CookRule, bool) {
	rule, ok := c.cook[raw]
	return rule, ok
}

// CooksInto returns the rule that produces the given cooked item
func (c *Catalog) CooksInto(cooked models.ItemType) (models.CookRule, bool) {
	rule, ok := c.cooksInto[cooked]
	return rule, ok
}

// Choppable reports whether items of type t can be chopped on a board
func (c *Catalog) Choppable(t models.ItemType) bool {
	return c.choppable[t]
}

// Effective returns the form an ingredient must have on the assembly
// counter: raw items that cook are wanted cooked, chopped ones chopped.
func (c *Catalog) Effective(ing models.Ingredient) models.Item {
	t := ing.Item
	if rule, ok := c.cook[t]; ok {
		t = rule.Cooked
	}
	return models.Item{Type: t, Chopped: ing.Chop}
}

// Fits reports whether contents is a valid partial build of r: the base
// first, then distinct ingredients of r in any order.
func (c *Catalog) Fits(r models.Recipe, contents []models.Item) bool {
	if len(contents) == 0 {
		return true
	}
	if len(contents) > len(r.Ingredients) {
		return false
	}
	if !contents[0].Matches(c.Effective(r.Base())) {
		return false
	}

	used := make([]bool, len(r.Ingredients))
	used[0] = true
	for _, it := range contents[1:] {
		found := false
		for i, ing := range r.Ingredients {
			if !used[i] && it.Matches(c.Effective(ing)) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Accepts reports whether an assembly counter holding contents takes item
func (c *Catalog) Accepts(contents []models.Item, item models.Item) bool {
	if item.Ruined() {
		return false
	}
	next := append(append(make([]models.Item, 0, len(contents)+1), contents...), item)
	for _, r := range c.recipes {
		if c.Fits(r, next) {
			return true
		}
	}
	return false
}

// Building returns the first recipe the contents are a partial build of
func (c *Catalog) Building(contents []models.Item) (models.Recipe, bool) {
	if len(contents) == 0 {
		return models.Recipe{}, false
	}
	for _, r := range c.recipes {
		if c.Fits(r, contents) {
			return r, true
		}
	}
	return models.Recipe{}, false
}

// Completes returns the recipe that contents finishes, if any
func (c *Catalog) Completes(contents []models.Item) (models.Recipe, bool) {
	for _, r := range c.recipes {
		if len(contents) == len(r.Ingredients) && c.Fits(r, contents) {
			return r, true
		}
	}
	return models.Recipe{}, false
}

// Missing returns the first ingredient of r whose effective form is not yet
// part of contents.
func (c *Catalog) Missing(r models.Recipe, contents []models.Item) (models.Ingredient, bool) {
	left := c.Remaining(r, contents)
	if len(left) == 0 {
		return models.Ingredient{}, false
	}
	return left[0], true
}

// Remaining returns the ingredients of r, in recipe order, that contents
// does not provide yet.
func (c *Catalog) Remaining(r models.Recipe, contents []models.Item) []models.Ingredient {
	var left []models.Ingredient
	used := make([]bool, len(contents))
	for _, ing := range r.Ingredients {
		want := c.Effective(ing)
		found := false
		for i, it := range contents {
			if !used[i] && it.Matches(want) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			left = append(left, ing)
		}
	}
	return left
}
