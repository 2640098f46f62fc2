package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenbot/internal/kitchen"
	"kitchenbot/internal/models"
	"kitchenbot/internal/recipes"
)

const tick = 100 * time.Millisecond

// Station indices of the default layout
const (
	tomatoSpawn = iota
	lettuceSpawn
	breadSpawn
	pattySpawn
	doughSpawn
	cheeseSpawn
	board1
	board2
	stove1
	stove2
	oven1
	oven2
	assembly
	delivery
	bin
)

func testKitchen(t *testing.T, mutate ...func(*kitchen.Config)) *kitchen.Kitchen {
	t.Helper()
	cfg := kitchen.DefaultConfig()
	cfg.RefillBelow = 0
	cfg.GameLength = 0
	for _, m := range mutate {
		m(&cfg)
	}
	k, err := kitchen.New(cfg, recipes.Default())
	require.NoError(t, err)
	return k
}

func recipeFor(t *testing.T, dish models.ItemType) models.Recipe {
	t.Helper()
	r, ok := recipes.Default().RecipeFor(dish)
	require.True(t, ok)
	return r
}

// runUntil ticks the kitchen and the bots until done returns true or the
// simulation clock passes limit.
func runUntil(k *kitchen.Kitchen, bots []*Bot, limit time.Duration, done func() bool) bool {
	for k.Now() < limit {
		k.Update(tick)
		for _, b := range bots {
			b.Update(k)
		}
		if done() {
			return true
		}
	}
	return false
}

func deliveredCounter(k *kitchen.Kitchen) *int {
	var n int
	k.OnEvent = func(e kitchen.Event) {
		if e.Type == kitchen.EventOrderDelivered {
			n++
		}
	}
	return &n
}

func TestScenarioBurgerFromScratch(t *testing.T) {
	k := testKitchen(t)
	order := k.PlaceOrder(models.ItemBurger, 10*time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())
	delivered := deliveredCounter(k)

	var built []models.Item
	var sawDish bool
	prev := 0

	for k.Now() < 5*time.Minute && *delivered == 0 {
		k.Update(tick)
		before := k.Stations()
		planned := len(bot.Queue()) == 0

		bot.Update(k)

		// A chop is only ever planned for a board that holds something to chop.
		if planned {
			for _, s := range bot.Queue() {
				if s.Kind != StepChop {
					continue
				}
				item := before[s.Station].Item
				require.NotNil(t, item, "chop planned on empty board %d", s.Station)
				assert.False(t, item.Chopped)
				assert.True(t, recipes.Default().Choppable(item.Type))
			}
		}

		asm := k.Stations()[assembly]
		switch {
		case len(asm.Contents) > prev:
			built = append(built, asm.Contents[len(asm.Contents)-1])
		case len(asm.Contents) < prev:
			require.Empty(t, asm.Contents, "contents are never cleared partially")
			require.NotNil(t, asm.Item)
			assert.Equal(t, models.ItemBurger, asm.Item.Type)
			sawDish = true
		}
		prev = len(asm.Contents)
	}

	require.Equal(t, 1, *delivered, "burger was not delivered")
	assert.True(t, sawDish)
	require.Len(t, built, 3)
	assert.Equal(t, models.Item{Type: models.ItemBread}, built[0])
	assert.Equal(t, models.Item{Type: models.ItemCookedPatty}, built[1])
	assert.Equal(t, models.Item{Type: models.ItemTomato, Chopped: true}, built[2])

	assert.Empty(t, k.Orders())
	assert.Equal(t, GoalIdle, bot.Goal())
	assert.Equal(t, 1, bot.Memory().Count(EventOrderCommitted))
	assert.Equal(t, 1, bot.Memory().Count(EventDelivered))
	assert.Zero(t, bot.Memory().Count(EventOrderAborted))

	events := bot.Memory().Query(EventOrderCommitted, 1)
	require.Len(t, events, 1)
	assert.Equal(t, order.ID, events[0].Metadata["order_id"])
}

func TestScenarioAbortOnExpiry(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutContents(assembly, models.Item{Type: models.ItemBread}, models.Item{Type: models.ItemCookedPatty}))
	require.NoError(t, k.Give(0, models.Item{Type: models.ItemTomato}))
	k.PlaceOrder(models.ItemBurger, 1500*time.Millisecond)

	bot := NewBot(0, recipes.Default(), DefaultConfig())
	bot.Update(k)
	require.Equal(t, GoalExecutingRecipe, bot.Goal())

	ok := runUntil(k, []*Bot{bot}, 5*time.Second, func() bool {
		return len(k.Orders()) == 0 && bot.Goal() == GoalIdle
	})
	require.True(t, ok)

	assert.Empty(t, bot.OrderID())
	_, committed := bot.Recipe()
	assert.False(t, committed)
	assert.Equal(t, 1, bot.Memory().Count(EventOrderAborted))
	assert.Equal(t, []Step{GoTo(board1), Interact(board1)}, bot.Queue(),
		"the stale plan is dropped and the held tomato is routed to a board")

	runUntil(k, []*Bot{bot}, 20*time.Second, func() bool { return false })
	assert.Nil(t, k.Players()[0].Held)
	board := k.Stations()[board1]
	require.NotNil(t, board.Item)
	assert.Equal(t, models.ItemTomato, board.Item.Type)
	assert.Equal(t, GoalIdle, bot.Goal())
}

func TestScenarioReuseLeftoverDish(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutItem(assembly, models.Item{Type: models.ItemBurger}))
	k.PlaceOrder(models.ItemBurger, time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())
	delivered := deliveredCounter(k)

	ok := runUntil(k, []*Bot{bot}, 30*time.Second, func() bool {
		if held := k.Players()[0].Held; held != nil {
			require.Equal(t, models.ItemBurger, held.Type, "nothing is re-prepared")
		}
		return *delivered == 1
	})
	require.True(t, ok)
	assert.Zero(t, k.Stats().DishesAssembled)
	assert.Equal(t, 1, bot.Memory().Count(EventDelivering))
}

func TestScenarioBurntPattyIsBinnedFirst(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutContents(assembly, models.Item{Type: models.ItemBread}))
	require.NoError(t, k.PutItem(stove1, models.Item{Type: models.ItemBurntPatty}))
	k.PlaceOrder(models.ItemBurger, 10*time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())

	bot.Update(k)
	assert.Equal(t, []Step{GoTo(stove1), Interact(stove1), GoTo(assembly), Interact(assembly)}, bot.Queue(),
		"cleared although stove2 is free")

	ok := runUntil(k, []*Bot{bot}, 2*time.Minute, func() bool {
		return len(k.Stations()[assembly].Contents) >= 2
	})
	require.True(t, ok)
	assert.Equal(t, models.Item{Type: models.ItemCookedPatty}, k.Stations()[assembly].Contents[1])
	assert.Equal(t, 1, k.Stats().ItemsDiscarded)
	for _, i := range []int{stove1, stove2} {
		if item := k.Stations()[i].Item; item != nil {
			assert.False(t, item.Ruined())
		}
	}
}

func TestRuinedOvenIsClearedForOtherRecipes(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutItem(oven2, models.Item{Type: models.ItemPizza, Overcooked: true}))
	planner := NewPlanner(recipes.Default())

	snap := Perceive(k, 0)
	steps := planner.Next(&snap, recipeFor(t, models.ItemSalad))
	assert.Equal(t, []Step{GoTo(oven2), Interact(oven2), GoTo(assembly), Interact(assembly)}, steps)

	// Full hands finish their own unit first.
	require.NoError(t, k.Give(0, models.Item{Type: models.ItemLettuce}))
	snap = Perceive(k, 0)
	steps = planner.Next(&snap, recipeFor(t, models.ItemSalad))
	assert.Equal(t, []Step{GoTo(board1), Interact(board1)}, steps)
}

func TestScenarioBurntPattiesBlockEveryStove(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutContents(assembly, models.Item{Type: models.ItemBread}))
	require.NoError(t, k.PutItem(stove1, models.Item{Type: models.ItemBurntPatty}))
	require.NoError(t, k.PutItem(stove2, models.Item{Type: models.ItemBurntPatty}))
	k.PlaceOrder(models.ItemBurger, 10*time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())

	bot.Update(k)
	assert.Equal(t, []Step{GoTo(stove1), Interact(stove1), GoTo(assembly), Interact(assembly)}, bot.Queue())

	ok := runUntil(k, []*Bot{bot}, 2*time.Minute, func() bool {
		return len(k.Stations()[assembly].Contents) >= 2
	})
	require.True(t, ok)
	assert.Equal(t, models.Item{Type: models.ItemCookedPatty}, k.Stations()[assembly].Contents[1])
	assert.Equal(t, 1, k.Stats().ItemsDiscarded)
}

func TestScenarioOneIngredientPerCycle(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutContents(assembly, models.Item{Type: models.ItemBread}))
	require.NoError(t, k.PutItem(board1, models.Item{Type: models.ItemTomato, Chopped: true}))
	require.NoError(t, k.PutItem(stove1, models.Item{Type: models.ItemCookedPatty}))

	planner := NewPlanner(recipes.Default())
	burger := recipeFor(t, models.ItemBurger)

	snap := Perceive(k, 0)
	steps := planner.Next(&snap, burger)
	assert.Equal(t, []Step{GoTo(stove1), Interact(stove1), GoTo(assembly), Interact(assembly)}, steps,
		"the patty comes first in the recipe")

	k = testKitchen(t)
	require.NoError(t, k.PutContents(assembly, models.Item{Type: models.ItemBread}, models.Item{Type: models.ItemCookedPatty}))
	require.NoError(t, k.PutItem(board1, models.Item{Type: models.ItemTomato, Chopped: true}))

	snap = Perceive(k, 0)
	steps = planner.Next(&snap, burger)
	assert.Equal(t, []Step{GoTo(board1), Interact(board1), GoTo(assembly), Interact(assembly)}, steps)
}

func TestPizzaIsAssembledThenBaked(t *testing.T) {
	k := testKitchen(t)
	k.PlaceOrder(models.ItemPizza, 10*time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())
	delivered := deliveredCounter(k)

	var baked bool
	ok := runUntil(k, []*Bot{bot}, 5*time.Minute, func() bool {
		for _, i := range []int{oven1, oven2} {
			if s := k.Stations()[i]; s.Cooking && s.Item != nil && s.Item.Type == models.ItemRawPizza {
				baked = true
			}
		}
		return *delivered == 1
	})
	require.True(t, ok)
	assert.True(t, baked)
	assert.Equal(t, 1, k.Stats().DishesAssembled)
}

func TestTwoBotsShareTheKitchen(t *testing.T) {
	k := testKitchen(t, func(c *kitchen.Config) {
		c.RefillBelow = 2
		c.Menu = []models.ItemType{models.ItemBurger}
		c.OrderLifetime = 2 * time.Minute
	})
	bots := []*Bot{
		NewBot(0, recipes.Default(), DefaultConfig()),
		NewBot(1, recipes.Default(), DefaultConfig()),
	}
	delivered := deliveredCounter(k)

	runUntil(k, bots, 4*time.Minute, func() bool {
		for _, s := range k.Stations() {
			if len(s.Contents) > 0 {
				require.Nil(t, s.Item)
			}
		}
		return false
	})
	assert.Greater(t, *delivered, 0)
	assert.Greater(t, k.Score(), 0)
}

func TestEarliestDeadlineFirst(t *testing.T) {
	k := testKitchen(t)
	k.PlaceOrder(models.ItemBurger, 30*time.Second)
	salad := k.PlaceOrder(models.ItemSalad, 10*time.Second)
	k.PlaceOrder(models.ItemBurger, 10*time.Second)

	bot := NewBot(0, recipes.Default(), DefaultConfig())
	bot.Update(k)

	assert.Equal(t, GoalExecutingRecipe, bot.Goal())
	assert.Equal(t, salad.ID, bot.OrderID(), "ties keep list order")
	r, ok := bot.Recipe()
	require.True(t, ok)
	assert.Equal(t, models.ItemSalad, r.Dish)
}

func TestFreeStationIsFirstInList(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.Teleport(0, 250, 250))

	snap := Perceive(k, 0)
	assert.Equal(t, board1, snap.FreeStation(models.StationBoard), "the nearer board does not win")

	require.NoError(t, k.PutItem(board1, models.Item{Type: models.ItemTomato}))
	snap = Perceive(k, 0)
	assert.Equal(t, board2, snap.FreeStation(models.StationBoard))
}

func TestUnknownDishIsSkippedForever(t *testing.T) {
	k := testKitchen(t)
	unknown := k.PlaceOrder(models.ItemCheese, 5*time.Second)
	bot := NewBot(0, recipes.Default(), DefaultConfig())

	runUntil(k, []*Bot{bot}, 3*time.Second, func() bool { return false })
	assert.Equal(t, GoalIdle, bot.Goal())
	assert.Empty(t, bot.Queue())
	assert.Equal(t, 1, bot.Memory().Count(EventOrderSkipped), "recorded once per order")

	burger := k.PlaceOrder(models.ItemBurger, time.Minute)
	runUntil(k, []*Bot{bot}, 4*time.Second, func() bool { return false })
	assert.Equal(t, burger.ID, bot.OrderID())
	assert.NotEqual(t, unknown.ID, bot.OrderID())
	assert.Equal(t, 1, bot.Memory().Count(EventOrderSkipped))
}

func TestPlanningIsIdempotentWithPendingSteps(t *testing.T) {
	k := testKitchen(t)
	k.PlaceOrder(models.ItemBurger, time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())

	snap := Perceive(k, 0)
	bot.decide(&snap)
	first := bot.Queue()
	require.NotEmpty(t, first)

	bot.decide(&snap)
	assert.Equal(t, first, bot.Queue())
}

func TestMissingStationYieldsNoSteps(t *testing.T) {
	k := testKitchen(t, func(c *kitchen.Config) {
		var layout []kitchen.StationSpec
		for _, s := range c.Layout {
			if s.Kind != models.StationBoard {
				layout = append(layout, s)
			}
		}
		c.Layout = layout
	})
	k.PlaceOrder(models.ItemSalad, time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())

	runUntil(k, []*Bot{bot}, 5*time.Second, func() bool { return false })
	assert.Equal(t, GoalExecutingRecipe, bot.Goal())
	assert.Empty(t, bot.Queue())
	assert.Nil(t, k.Players()[0].Held)
}

func TestChopIsRecheckedBeforeActing(t *testing.T) {
	k := testKitchen(t)
	bot := NewBot(0, recipes.Default(), DefaultConfig())
	x, y := k.Stations()[board1].Anchor(k.Bounds())
	require.NoError(t, k.Teleport(0, x, y))

	bot.queue.Reset(Chop(board1))
	bot.Update(k)

	assert.Empty(t, bot.Queue())
	assert.Equal(t, 1, bot.Memory().Count(EventChopSkipped))
	assert.Zero(t, bot.Memory().Count(EventRejected), "the kitchen was never asked to chop")
}

func TestBaseGoesStraightToAssembly(t *testing.T) {
	k := testKitchen(t)
	order := k.PlaceOrder(models.ItemBurger, time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())
	bot.goal = GoalExecutingRecipe
	bot.orderID = order.ID
	bot.recipe = recipeFor(t, models.ItemBurger)

	x, y := k.Stations()[breadSpawn].Anchor(k.Bounds())
	require.NoError(t, k.Teleport(0, x, y))
	bot.queue.Reset(Interact(breadSpawn), GoTo(board1), Interact(board1))

	bot.Update(k)
	require.NotNil(t, k.Players()[0].Held)
	assert.Equal(t, []Step{GoTo(assembly), Interact(assembly)}, bot.Queue())
}

func TestPreparedBaseIsNotRedirected(t *testing.T) {
	k := testKitchen(t)
	order := k.PlaceOrder(models.ItemSalad, time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())
	bot.goal = GoalExecutingRecipe
	bot.orderID = order.ID
	bot.recipe = recipeFor(t, models.ItemSalad)

	x, y := k.Stations()[lettuceSpawn].Anchor(k.Bounds())
	require.NoError(t, k.Teleport(0, x, y))
	bot.queue.Reset(Interact(lettuceSpawn), GoTo(board1), Interact(board1))

	bot.Update(k)
	assert.Equal(t, []Step{GoTo(board1), Interact(board1)}, bot.Queue(), "lettuce still needs chopping")
}

func TestMovementOneCellPerAction(t *testing.T) {
	k := testKitchen(t)
	bot := NewBot(0, recipes.Default(), DefaultConfig())
	require.NoError(t, k.Teleport(0, 300, 400))
	bot.queue.Reset(GoTo(board1))

	bot.Update(k)
	p := k.Players()[0]
	assert.Equal(t, 250, p.X, "x first")
	assert.Equal(t, 400, p.Y)

	// Within the inter-action gap nothing happens.
	k.Update(tick)
	bot.Update(k)
	assert.Equal(t, 250, k.Players()[0].X)

	var path [][2]int
	for i := 0; i < 10 && len(bot.Queue()) > 0; i++ {
		k.Update(400 * time.Millisecond)
		bot.Update(k)
		p := k.Players()[0]
		path = append(path, [2]int{p.X, p.Y})
	}
	assert.Equal(t, [][2]int{{200, 400}, {150, 400}, {150, 350}, {150, 300}, {150, 250}, {150, 250}}, path)
	assert.Empty(t, bot.Queue())
}

func TestCooldownHoldsBackInteractions(t *testing.T) {
	k := testKitchen(t)
	cfg := DefaultConfig()
	cfg.Cooldown = time.Second
	bot := NewBot(0, recipes.Default(), cfg)

	x, y := k.Stations()[tomatoSpawn].Anchor(k.Bounds())
	require.NoError(t, k.Teleport(0, x, y))
	bot.queue.Reset(Interact(tomatoSpawn), Interact(tomatoSpawn))

	bot.Update(k)
	require.Len(t, bot.Queue(), 1)

	k.Update(500 * time.Millisecond)
	bot.Update(k)
	assert.Len(t, bot.Queue(), 1, "cooldown not elapsed")

	k.Update(500 * time.Millisecond)
	bot.Update(k)
	assert.Empty(t, bot.Queue())
	assert.Equal(t, 1, bot.Memory().Count(EventRejected), "second pickup with full hands")
}

func TestFullBoardsAreClearedOfLeftovers(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutItem(board1, models.Item{Type: models.ItemBread}))
	require.NoError(t, k.PutItem(board2, models.Item{Type: models.ItemPizza}))
	k.PlaceOrder(models.ItemSalad, 10*time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())
	delivered := deliveredCounter(k)

	bot.Update(k)
	assert.Equal(t, []Step{GoTo(board1), Interact(board1), GoTo(bin), Interact(bin)}, bot.Queue())

	ok := runUntil(k, []*Bot{bot}, 2*time.Minute, func() bool { return *delivered == 1 })
	require.True(t, ok, "salad was not delivered")
	assert.Equal(t, 1, k.Stats().ItemsDiscarded, "one board was enough")
	assert.True(t, k.Stations()[board1].Empty())
	require.NotNil(t, k.Stations()[board2].Item)
	assert.Equal(t, models.ItemPizza, k.Stations()[board2].Item.Type)
}

func TestHeldItemIsBinnedWhenBoardsAreFull(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutItem(board1, models.Item{Type: models.ItemBread}))
	require.NoError(t, k.PutItem(board2, models.Item{Type: models.ItemTomato, Chopped: true}))
	require.NoError(t, k.Give(0, models.Item{Type: models.ItemLettuce}))
	k.PlaceOrder(models.ItemBurger, 10*time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())
	delivered := deliveredCounter(k)

	bot.Update(k)
	assert.Equal(t, []Step{GoTo(bin), Interact(bin)}, bot.Queue())

	ok := runUntil(k, []*Bot{bot}, 3*time.Minute, func() bool { return *delivered == 1 })
	require.True(t, ok, "burger was not delivered")
	assert.Equal(t, 1, k.Stats().ItemsDiscarded, "the bread and the tomato went into the burger")
}

func TestSpareBoardPrefersUnwantedItems(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutItem(board1, models.Item{Type: models.ItemCookedPatty}))
	require.NoError(t, k.PutItem(board2, models.Item{Type: models.ItemCheese}))
	k.PlaceOrder(models.ItemSalad, time.Minute)
	k.PlaceOrder(models.ItemBurger, time.Minute)
	planner := NewPlanner(recipes.Default())

	snap := Perceive(k, 0)
	steps := planner.Next(&snap, recipeFor(t, models.ItemSalad))
	assert.Equal(t, []Step{GoTo(board2), Interact(board2), GoTo(bin), Interact(bin)}, steps,
		"no order uses cheese, the burger order uses the patty")
}

func TestForeignDishLeavesTheAssembly(t *testing.T) {
	planner := NewPlanner(recipes.Default())
	salad := recipeFor(t, models.ItemSalad)

	k := testKitchen(t)
	require.NoError(t, k.PutItem(assembly, models.Item{Type: models.ItemBurger}))
	k.PlaceOrder(models.ItemSalad, time.Minute)
	k.PlaceOrder(models.ItemBurger, time.Minute)
	snap := Perceive(k, 0)
	assert.Equal(t, []Step{GoTo(assembly), Interact(assembly), GoTo(delivery), Interact(delivery)},
		planner.Next(&snap, salad), "an order asks for it")

	k = testKitchen(t)
	require.NoError(t, k.PutItem(assembly, models.Item{Type: models.ItemBurger}))
	k.PlaceOrder(models.ItemSalad, time.Minute)
	snap = Perceive(k, 0)
	assert.Equal(t, []Step{GoTo(assembly), Interact(assembly), GoTo(bin), Interact(bin)},
		planner.Next(&snap, salad), "never parked on a board")
}

func TestForeignBuildIsTakenApart(t *testing.T) {
	planner := NewPlanner(recipes.Default())
	salad := recipeFor(t, models.ItemSalad)

	k := testKitchen(t)
	require.NoError(t, k.PutContents(assembly, models.Item{Type: models.ItemBread}, models.Item{Type: models.ItemCookedPatty}))
	k.PlaceOrder(models.ItemSalad, time.Minute)
	snap := Perceive(k, 0)
	assert.Equal(t, []Step{GoTo(assembly), Take(assembly), GoTo(bin), Interact(bin)}, planner.Next(&snap, salad))

	// An open burger order keeps the build alive.
	k.PlaceOrder(models.ItemBurger, time.Minute)
	snap = Perceive(k, 0)
	assert.Equal(t, []Step{GoTo(tomatoSpawn), Interact(tomatoSpawn), GoTo(board1), Interact(board1)},
		planner.Next(&snap, salad))
}

func TestScenarioSaladOnLeftoverBread(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutContents(assembly, models.Item{Type: models.ItemBread}))
	k.PlaceOrder(models.ItemSalad, 10*time.Minute)
	bot := NewBot(0, recipes.Default(), DefaultConfig())

	var dishes []models.ItemType
	var delivered int
	k.OnEvent = func(e kitchen.Event) {
		switch e.Type {
		case kitchen.EventDishAssembled:
			dishes = append(dishes, e.Item)
		case kitchen.EventOrderDelivered:
			delivered++
		}
	}

	ok := runUntil(k, []*Bot{bot}, 2*time.Minute, func() bool { return delivered == 1 })
	require.True(t, ok, "salad was not delivered")
	assert.Equal(t, []models.ItemType{models.ItemSalad}, dishes, "no burger is finished for a salad order")
	assert.Equal(t, 1, k.Stats().ItemsDiscarded)
	assert.Nil(t, k.Stations()[board1].Item)
	assert.Nil(t, k.Stations()[board2].Item)
}

func TestEmptyHandsNeverTakeApartByAccident(t *testing.T) {
	k := testKitchen(t)
	require.NoError(t, k.PutContents(assembly, models.Item{Type: models.ItemBread}))
	bot := NewBot(0, recipes.Default(), DefaultConfig())
	x, y := k.Stations()[assembly].Anchor(k.Bounds())
	require.NoError(t, k.Teleport(0, x, y))

	bot.queue.Reset(Interact(assembly))
	bot.Update(k)
	assert.Empty(t, bot.Queue())
	assert.Nil(t, k.Players()[0].Held)
	assert.Len(t, k.Stations()[assembly].Contents, 1)
	assert.Equal(t, 1, bot.Memory().Count(EventInteractSkipped))

	bot.queue.Reset(Take(assembly))
	k.Update(time.Second)
	bot.Update(k)
	require.NotNil(t, k.Players()[0].Held)
	assert.Equal(t, models.ItemBread, k.Players()[0].Held.Type)
	assert.Empty(t, k.Stations()[assembly].Contents)
}

func TestDeliveryReleasesOnTheSameTick(t *testing.T) {
	k := testKitchen(t)
	order := k.PlaceOrder(models.ItemBurger, time.Minute)
	require.NoError(t, k.Give(0, models.Item{Type: models.ItemBurger}))
	x, y := k.Stations()[delivery].Anchor(k.Bounds())
	require.NoError(t, k.Teleport(0, x, y))

	bot := NewBot(0, recipes.Default(), DefaultConfig())
	bot.goal = GoalDelivering
	bot.deliveryQueued = true
	bot.orderID = order.ID
	bot.recipe = recipeFor(t, models.ItemBurger)
	bot.queue.Reset(Interact(delivery))

	bot.Update(k)
	assert.Empty(t, k.Orders())
	assert.Equal(t, GoalIdle, bot.Goal())
	assert.Empty(t, bot.OrderID())
	assert.Equal(t, 1, bot.Memory().Count(EventDelivered))
}
