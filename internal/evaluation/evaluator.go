package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"kitchenbot/internal/agents"
	"kitchenbot/internal/kitchen"
	"kitchenbot/internal/models"
	"kitchenbot/internal/recipes"
)

// DefaultTick is the fixed simulation step of a headless run
const DefaultTick = 100 * time.Millisecond

// ErrUnknownScenario is returned for a scenario id that is not registered
var ErrUnknownScenario = errors.New("unknown scenario")

// Evaluator runs bots through predefined kitchen scenarios without a
// renderer and reports what they achieved.
type Evaluator struct {
	scenarios map[string]*Scenario
	catalog   *recipes.Catalog
	base      kitchen.Config
	agentCfg  agents.Config

	// Tick is the simulation step; zero means DefaultTick
	Tick time.Duration
	// Metrics, when set, receives every run
	Metrics *MetricsCollector
	// Debriefer, when set, adds a written summary to every run
	Debriefer *Debriefer
}

// NewEvaluator creates an evaluator with the built-in scenarios
func NewEvaluator(catalog *recipes.Catalog, base kitchen.Config, agentCfg agents.Config) *Evaluator {
	if catalog == nil {
		catalog = recipes.Default()
	}
	e := &Evaluator{
		scenarios: make(map[string]*Scenario),
		catalog:   catalog,
		base:      base,
		agentCfg:  agentCfg,
		Tick:      DefaultTick,
	}
	e.loadScenarios()
	return e
}

// loadScenarios registers the built-in scenarios. Dishes the catalog does
// not know are dropped from a scenario's menu.
func (e *Evaluator) loadScenarios() {
	builtin := []*Scenario{
		{
			ID:          "burger_rush",
			Name:        "Burger Rush",
			Description: "A single cook serving a steady stream of burgers.",
			Difficulty:  1,
			Menu:        []models.ItemType{models.ItemBurger},
			Bots:        1,
			Duration:    180 * time.Second,
		},
		{
			ID:          "mixed_menu",
			Name:        "Mixed Menu",
			Description: "Burgers, salads and pizzas from one cook.",
			Difficulty:  2,
			Menu:        []models.ItemType{models.ItemBurger, models.ItemSalad, models.ItemPizza},
			Bots:        1,
			Duration:    300 * time.Second,
		},
		{
			ID:            "tight_deadlines",
			Name:          "Tight Deadlines",
			Description:   "Short order lifetimes that punish slow plans.",
			Difficulty:    3,
			Menu:          []models.ItemType{models.ItemBurger, models.ItemSalad},
			Bots:          1,
			Duration:      180 * time.Second,
			OrderLifetime: 35 * time.Second,
		},
		{
			ID:          "pizza_night",
			Name:        "Pizza Night",
			Description: "Pizzas only: assemble raw, bake, serve before they overcook.",
			Difficulty:  2,
			Menu:        []models.ItemType{models.ItemPizza},
			Bots:        1,
			Duration:    240 * time.Second,
		},
		{
			ID:          "two_cooks",
			Name:        "Two Cooks",
			Description: "Two bots sharing one kitchen and one order board.",
			Difficulty:  3,
			Menu:        []models.ItemType{models.ItemBurger, models.ItemSalad, models.ItemPizza},
			Bots:        2,
			Duration:    300 * time.Second,
		},
	}

	for _, s := range builtin {
		if err := e.AddScenario(s); err != nil {
			log.Printf("Skipping scenario %s: %v", s.ID, err)
		}
	}
}

// AddScenario registers or replaces a scenario
func (e *Evaluator) AddScenario(s *Scenario) error {
	if s.ID == "" {
		return errors.New("scenario id is required")
	}
	if s.Bots < 1 || s.Bots > len(e.base.Players) {
		return fmt.Errorf("scenario %s: %d bots for %d players", s.ID, s.Bots, len(e.base.Players))
	}
	if s.Duration <= 0 {
		return fmt.Errorf("scenario %s: duration must be positive", s.ID)
	}

	menu := make([]models.ItemType, 0, len(s.Menu))
	for _, d := range s.Menu {
		if _, ok := e.catalog.RecipeFor(d); ok {
			menu = append(menu, d)
		}
	}
	if len(menu) == 0 {
		return fmt.Errorf("scenario %s: no dish on the menu has a recipe", s.ID)
	}
	s.Menu = menu

	e.scenarios[s.ID] = s
	return nil
}

// HasScenario checks if a scenario exists
func (e *Evaluator) HasScenario(id string) bool {
	_, exists := e.scenarios[id]
	return exists
}

// GetScenarios returns all scenarios ordered by id
func (e *Evaluator) GetScenarios() []*Scenario {
	scenarios := make([]*Scenario, 0, len(e.scenarios))
	for _, s := range e.scenarios {
		scenarios = append(scenarios, s)
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].ID < scenarios[j].ID })
	return scenarios
}

// KitchenConfig returns the kitchen configuration a scenario runs with.
// A zero seed keeps the scenario's or the base configuration's seed.
func (e *Evaluator) KitchenConfig(id string, seed int64) (kitchen.Config, error) {
	s, ok := e.scenarios[id]
	if !ok {
		return kitchen.Config{}, fmt.Errorf("%w: %s", ErrUnknownScenario, id)
	}

	cfg := e.base
	cfg.Menu = append([]models.ItemType(nil), s.Menu...)
	cfg.GameLength = s.Duration
	if s.OrderLifetime > 0 {
		cfg.OrderLifetime = s.OrderLifetime
	}
	if s.MaxOrders > 0 {
		cfg.MaxOrders = s.MaxOrders
	}
	switch {
	case seed != 0:
		cfg.Seed = seed
	case s.Seed != 0:
		cfg.Seed = s.Seed
	}
	return cfg, nil
}

// Run plays one scenario to the end and returns the result. The run stops
// early with the context's error when ctx is cancelled.
func (e *Evaluator) Run(ctx context.Context, id string, seed int64) (*EvaluationResult, error) {
	cfg, err := e.KitchenConfig(id, seed)
	if err != nil {
		return nil, err
	}
	scenario := e.scenarios[id]

	k, err := kitchen.New(cfg, e.catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build kitchen for %s: %w", id, err)
	}

	result := &EvaluationResult{
		RunID:     uuid.New().String(),
		Scenario:  id,
		Seed:      cfg.Seed,
		Bots:      scenario.Bots,
		Menu:      cfg.Menu,
		StartTime: time.Now(),
	}

	placed := make(map[string]time.Duration)
	record := func(ev kitchen.Event) {
		if ev.Type == kitchen.EventOrderPlaced {
			placed[ev.OrderID] = ev.At
		}
		result.Events = append(result.Events, eventLog(ev))
		if e.Metrics != nil {
			e.Metrics.RecordEvent(id, ev, placed[ev.OrderID])
		}
	}
	// Orders placed while the kitchen was being built
	for _, o := range k.Orders() {
		record(kitchen.Event{At: o.PlacedAt, Type: kitchen.EventOrderPlaced, Player: -1, Station: -1, OrderID: o.ID, Item: o.Dish})
	}
	k.OnEvent = record

	bots := make([]*agents.Bot, scenario.Bots)
	for i := range bots {
		bots[i] = agents.NewBot(i, e.catalog, e.agentCfg)
	}

	tick := e.Tick
	if tick <= 0 {
		tick = DefaultTick
	}

	log.Printf("Running scenario %s (seed %d, %d bots)", id, cfg.Seed, len(bots))
	for !k.Finished() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scenario %s interrupted at %s: %w", id, k.Now(), err)
		}
		k.Update(tick)
		for _, b := range bots {
			b.Update(k)
		}
	}

	memories := make([]*agents.Memory, len(bots))
	result.Memories = make(map[int][]agents.Event, len(bots))
	for i, b := range bots {
		memories[i] = b.Memory()
		result.Memories[b.Player()] = append([]agents.Event(nil), b.Memory().LongTerm...)
		if e.Metrics != nil {
			e.Metrics.RecordAgentEvents(id, b.Memory())
		}
	}

	stats := k.Stats()
	result.EndTime = time.Now()
	result.Elapsed = k.Now()
	result.Score = k.Score()
	result.Metrics = ComputeMetrics(stats, result.Score, result.Elapsed, memories).Map(stats, result.Score)

	if e.Metrics != nil {
		e.Metrics.RecordResult(result)
	}
	if e.Debriefer != nil {
		text, err := e.Debriefer.Debrief(ctx, result)
		if err != nil {
			log.Printf("Debrief for run %s failed: %v", result.RunID, err)
		} else {
			result.Debrief = text
		}
	}

	log.Printf("Scenario %s finished: score %d, %d/%d delivered",
		id, result.Score, stats.OrdersDelivered, stats.OrdersPlaced)
	return result, nil
}

func eventLog(ev kitchen.Event) EventLog {
	data := map[string]interface{}{}
	if ev.OrderID != "" {
		data["order_id"] = ev.OrderID
	}
	if ev.Item != "" {
		data["item"] = string(ev.Item)
	}
	if ev.Points != 0 {
		data["points"] = ev.Points
	}
	if ev.Player >= 0 {
		data["player"] = ev.Player
	}
	if ev.Station >= 0 {
		data["station"] = ev.Station
	}
	return EventLog{At: ev.At, Type: string(ev.Type), Data: data}
}
