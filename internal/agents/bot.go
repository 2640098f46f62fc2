package agents

import (
	"fmt"
	"time"

	"kitchenbot/internal/models"
	"kitchenbot/internal/recipes"
)

// Goal is the high-level state of a bot
type Goal string

const (
	GoalIdle            Goal = "idle"
	GoalExecutingRecipe Goal = "executing_recipe"
	GoalDelivering      Goal = "delivering"
)

// Config tunes the bot's pacing
type Config struct {
	StepGap   time.Duration `yaml:"step_gap"`
	Cooldown  time.Duration `yaml:"cooldown"`
	WaitCap   time.Duration `yaml:"wait_cap"`
	IdleWait  time.Duration `yaml:"idle_wait"`
	Tolerance int           `yaml:"tolerance"`
	MemSize   int           `yaml:"memory_size"`
}

// DefaultConfig returns the standard bot pacing
func DefaultConfig() Config {
	return Config{
		StepGap:   400 * time.Millisecond,
		Cooldown:  300 * time.Millisecond,
		WaitCap:   500 * time.Millisecond,
		IdleWait:  400 * time.Millisecond,
		Tolerance: 10,
		MemSize:   64,
	}
}

// Bot is an autonomous cook for one player. It commits to one order at a
// time, plans one unit of work whenever its queue runs dry and executes at
// most one atomic step per tick.
type Bot struct {
	player  int
	cfg     Config
	catalog *recipes.Catalog
	planner *Planner
	memory  *Memory
	layout  *Layout

	goal           Goal
	orderID        string
	recipe         models.Recipe
	queue          Queue
	deliveryQueued bool
	skipped        map[string]bool

	acted        bool
	lastAction   time.Duration
	interacted   bool
	lastInteract time.Duration
}

var _ Agent = (*Bot)(nil)

// NewBot creates a bot controlling the given player
func NewBot(player int, catalog *recipes.Catalog, cfg Config) *Bot {
	if catalog == nil {
		catalog = recipes.Default()
	}
	planner := NewPlanner(catalog)
	if cfg.WaitCap > 0 {
		planner.WaitCap = cfg.WaitCap
	}
	if cfg.IdleWait > 0 {
		planner.IdleWait = cfg.IdleWait
	}
	return &Bot{
		player:  player,
		cfg:     cfg,
		catalog: catalog,
		planner: planner,
		memory:  NewMemory(cfg.MemSize),
		goal:    GoalIdle,
		skipped: make(map[string]bool),
	}
}

// Player returns the index of the player the bot controls
func (b *Bot) Player() int {
	return b.player
}

// Memory returns the bot's decision journal
func (b *Bot) Memory() *Memory {
	return b.memory
}

// Goal returns the current goal
func (b *Bot) Goal() Goal {
	return b.goal
}

// OrderID returns the committed order id, or ""
func (b *Bot) OrderID() string {
	return b.orderID
}

// Recipe returns the recipe of the committed order
func (b *Bot) Recipe() (models.Recipe, bool) {
	return b.recipe, b.orderID != ""
}

// Queue returns a copy of the pending steps
func (b *Bot) Queue() []Step {
	return b.queue.Steps()
}

// Update runs one tick: perceive, decide, and execute at most one step
func (b *Bot) Update(sim Simulation) {
	now := sim.Now()
	if b.acted && now-b.lastAction < b.cfg.StepGap {
		return
	}

	snap := perceive(sim, b.player, b.layout)
	b.layout = snap.layout

	b.decide(&snap)
	b.execute(sim, &snap)
}

// decide runs the goal state machine and refills the queue when it is empty
func (b *Bot) decide(snap *Snapshot) {
	// A delivery plan that ended without an interaction, for example on a
	// skipped step, still releases the order.
	if b.goal == GoalDelivering && b.deliveryQueued && b.queue.Len() == 0 {
		b.release()
	}

	if b.orderID != "" && !snap.HasOrder(b.orderID) {
		b.abort(snap)
	}

	if b.goal == GoalIdle {
		b.commit(snap)
	}

	if b.goal == GoalExecutingRecipe {
		if station, ok := FindDish(snap, b.recipe.Dish); ok {
			b.startDelivery(snap, station)
		}
	}

	if b.goal == GoalExecutingRecipe && b.queue.Len() == 0 {
		steps := b.planner.Next(snap, b.recipe)
		if len(steps) > 0 {
			b.queue.Push(steps...)
			b.remember(snap.Now, EventPlanned, fmt.Sprintf("%v", steps), nil)
		}
	}
}

// commit picks the order with the least time remaining among those with a
// known recipe. Ties keep list order.
func (b *Bot) commit(snap *Snapshot) {
	best := -1
	for i, o := range snap.Orders {
		if _, ok := b.catalog.RecipeFor(o.Dish); !ok {
			if !b.skipped[o.ID] {
				b.skipped[o.ID] = true
				b.remember(snap.Now, EventOrderSkipped, fmt.Sprintf("no recipe for %s", o.Dish),
					map[string]interface{}{"order_id": o.ID, "dish": string(o.Dish)})
			}
			continue
		}
		if best < 0 || o.TimeRemaining < snap.Orders[best].TimeRemaining {
			best = i
		}
	}
	if best < 0 {
		return
	}

	o := snap.Orders[best]
	b.recipe, _ = b.catalog.RecipeFor(o.Dish)
	b.orderID = o.ID
	b.goal = GoalExecutingRecipe
	b.deliveryQueued = false
	b.remember(snap.Now, EventOrderCommitted, fmt.Sprintf("%s (%.1fs left)", o.Dish, o.TimeRemaining.Seconds()),
		map[string]interface{}{"order_id": o.ID, "dish": string(o.Dish)})
}

// startDelivery replaces the plan with pickup and delivery of the dish
func (b *Bot) startDelivery(snap *Snapshot, station int) {
	b.queue.Clear()
	if station >= 0 {
		if held := snap.Held(); held != nil {
			if t := b.planner.DepositTarget(snap, *held, &b.recipe); t >= 0 {
				b.queue.Push(GoTo(t), Interact(t))
			}
		}
		b.queue.Push(GoTo(station), Interact(station))
	}
	if d := snap.Delivery(); d >= 0 {
		b.queue.Push(GoTo(d), Interact(d))
	}

	b.goal = GoalDelivering
	b.deliveryQueued = true
	b.remember(snap.Now, EventDelivering, string(b.recipe.Dish),
		map[string]interface{}{"order_id": b.orderID, "station": station})
}

// abort drops the commitment to an order that is gone. The queue is
// discarded and a held item is put down at its natural station.
func (b *Bot) abort(snap *Snapshot) {
	b.remember(snap.Now, EventOrderAborted, fmt.Sprintf("%s vanished", b.recipe.Dish),
		map[string]interface{}{"order_id": b.orderID, "goal": string(b.goal)})

	b.queue.Clear()
	b.release()

	if held := snap.Held(); held != nil {
		if t := b.planner.DepositTarget(snap, *held, nil); t >= 0 {
			b.queue.Push(GoTo(t), Interact(t))
		}
	}
}

func (b *Bot) release() {
	b.goal = GoalIdle
	b.orderID = ""
	b.recipe = models.Recipe{}
	b.deliveryQueued = false
}

// execute runs the head of the queue for one tick
func (b *Bot) execute(sim Simulation, snap *Snapshot) {
	step, ok := b.queue.Peek()
	if !ok {
		return
	}
	now := snap.Now

	if step.Kind == StepWait {
		if now >= step.Deadline {
			b.queue.Pop()
			b.mark(now)
		}
		return
	}

	if step.Station < 0 || step.Station >= len(snap.Stations) {
		b.queue.Pop()
		return
	}

	if !snap.Near(step.Station, b.cfg.Tolerance) {
		ax, ay := snap.Stations[step.Station].Anchor(snap.Bounds)
		dx, dy := 0, 0
		switch {
		case abs(snap.Player.X-ax) > b.cfg.Tolerance:
			dx = sign(ax - snap.Player.X)
		default:
			dy = sign(ay - snap.Player.Y)
		}
		if err := sim.Move(b.player, dx, dy); err != nil {
			b.remember(now, EventRejected, fmt.Sprintf("move: %v", err), nil)
		}
		b.mark(now)
		return
	}

	if step.Kind == StepGoTo {
		b.queue.Pop()
		b.mark(now)
		return
	}

	if b.interacted && now-b.lastInteract < b.cfg.Cooldown {
		return
	}

	station := snap.Stations[step.Station]
	switch step.Kind {
	case StepChop:
		if station.Item == nil || station.Item.Chopped || !b.catalog.Choppable(station.Item.Type) {
			b.queue.Pop()
			b.remember(now, EventChopSkipped, fmt.Sprintf("board %d has nothing to chop", station.ID), nil)
			return
		}
		b.act(now, "chop", sim.Chop(b.player))
	case StepTake:
		if snap.Held() != nil || station.Item != nil || len(station.Contents) == 0 {
			b.queue.Pop()
			b.remember(now, EventInteractSkipped, fmt.Sprintf("nothing to take back from %s %d", station.Kind, station.ID), nil)
			return
		}
		b.act(now, "take", sim.Interact(b.player))
	case StepInteract:
		// Empty hands at a partial build would take its top item back.
		if station.Kind == models.StationAssembly && snap.Held() == nil && station.Item == nil && len(station.Contents) > 0 {
			b.queue.Pop()
			b.remember(now, EventInteractSkipped, fmt.Sprintf("hands empty at assembly %d", station.ID), nil)
			return
		}
		err := sim.Interact(b.player)
		b.act(now, "interact", err)
		if err == nil && station.Kind == models.StationDelivery && b.goal == GoalDelivering {
			b.remember(now, EventDelivered, string(b.recipe.Dish), map[string]interface{}{"order_id": b.orderID})
		}
		if b.goal == GoalDelivering && b.deliveryQueued && b.queue.Len() == 0 {
			b.release()
			return
		}
		if err != nil {
			return
		}
		if b.pickedUpBase(station, snap.Held()) {
			if asm := snap.Assembly(); asm >= 0 {
				b.queue.Reset(GoTo(asm), Interact(asm))
			}
		}
	}
}

// act finishes an action step. A rejected action is only
// journaled; the next plan starts from whatever the kitchen looks like then.
func (b *Bot) act(now time.Duration, what string, err error) {
	b.queue.Pop()
	b.mark(now)
	b.interacted = true
	b.lastInteract = now
	if err != nil {
		b.remember(now, EventRejected, fmt.Sprintf("%s: %v", what, err),
			map[string]interface{}{"goal": string(b.goal)})
	}
}

// pickedUpBase reports whether an interaction at station just took the
// committed recipe's base from its source. A base that needs no preparation
// goes straight to the assembly counter.
func (b *Bot) pickedUpBase(station models.Station, heldBefore *models.Item) bool {
	if b.goal != GoalExecutingRecipe || station.Kind != models.StationSpawn || heldBefore != nil {
		return false
	}
	base := b.recipe.Base()
	if station.Spawns != base.Item {
		return false
	}
	return b.catalog.Effective(base) == models.Item{Type: base.Item}
}

func (b *Bot) mark(now time.Duration) {
	b.acted = true
	b.lastAction = now
}

func (b *Bot) remember(now time.Duration, eventType, content string, meta map[string]interface{}) {
	b.memory.Add(Event{At: now, Type: eventType, Content: content, Metadata: meta})
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
