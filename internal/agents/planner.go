package agents

import (
	"time"

	"kitchenbot/internal/models"
	"kitchenbot/internal/recipes"
)

// Planner produces the next unit of work toward a recipe. It reads nothing
// but the snapshot it is given and keeps no state between calls.
type Planner struct {
	catalog *recipes.Catalog

	// WaitCap bounds a wait next to a cooking station
	WaitCap time.Duration
	// IdleWait is the pause when every ingredient is already on the counter
	IdleWait time.Duration
}

// NewPlanner creates a planner over a recipe catalog
func NewPlanner(catalog *recipes.Catalog) *Planner {
	if catalog == nil {
		catalog = recipes.Default()
	}
	return &Planner{
		catalog:  catalog,
		WaitCap:  500 * time.Millisecond,
		IdleWait: 400 * time.Millisecond,
	}
}

// Next returns the steps of one coherent unit of work for recipe r, or
// nothing when a prerequisite is missing this cycle. Rules are evaluated
// in order and the first one that applies wins.
func (p *Planner) Next(snap *Snapshot, r models.Recipe) []Step {
	held := snap.Held()

	if held != nil && held.Type == r.Dish && !held.Ruined() {
		return p.deliver(snap)
	}

	asm := snap.Assembly()
	if asm < 0 {
		return nil
	}

	if r.NeedsBaking() && held != nil && held.Type == r.Assembled && !held.Ruined() {
		return p.bake(snap, r)
	}
	if held != nil && held.Ruined() {
		return []Step{GoTo(asm), Interact(asm)}
	}

	if item := snap.Stations[asm].Item; item != nil {
		if held != nil {
			return p.deposit(snap, *held, &r)
		}
		return p.clearAssembly(snap, r, *item)
	}

	// Ruined food never cooks again; it only blocks the cooker.
	if held == nil {
		if s := p.ruinedCooker(snap); s >= 0 {
			return []Step{GoTo(s), Interact(s), GoTo(asm), Interact(asm)}
		}
	}

	if r.NeedsBaking() {
		if steps, ok := p.baking(snap, r); ok {
			return steps
		}
	}

	// A partial build of another dish is finished first when an open order
	// asks for that dish, and taken apart otherwise.
	contents := snap.AssemblyContents()
	build := r
	if !p.catalog.Fits(r, contents) {
		other, ok := p.openBuild(snap, contents)
		if !ok {
			return p.unstack(snap, r)
		}
		build = other
	}

	if held != nil && p.catalog.Fits(build, appendItem(contents, *held)) {
		return []Step{GoTo(asm), Interact(asm)}
	}

	ing, missing := p.catalog.Missing(build, contents)
	if !missing {
		if held != nil {
			return p.deposit(snap, *held, &build)
		}
		return []Step{Wait(snap.Now + p.IdleWait)}
	}
	return p.prepare(snap, build, ing)
}

// prepare gets one ingredient onto the assembly counter, or moves it one
// stage closer.
func (p *Planner) prepare(snap *Snapshot, r models.Recipe, ing models.Ingredient) []Step {
	asm := snap.Assembly()
	want := p.catalog.Effective(ing)
	rule, cooks := p.catalog.CookRule(ing.Item)

	if held := snap.Held(); held != nil {
		if held.Matches(want) {
			return []Step{GoTo(asm), Interact(asm)}
		}
		if held.Type != ing.Item || held.Ruined() {
			return p.deposit(snap, *held, &r)
		}
		switch {
		case ing.Chop && !held.Chopped:
			if b := snap.FreeStation(models.StationBoard); b >= 0 {
				return []Step{GoTo(b), Interact(b)}
			}
			// A fresh one is a spawn away, a full board is not.
			return p.discard(snap)
		case cooks:
			if c := snap.FreeStation(rule.Station); c >= 0 {
				return []Step{GoTo(c), Interact(c)}
			}
			if b := snap.FreeStation(models.StationBoard); b >= 0 {
				return []Step{GoTo(b), Interact(b)}
			}
			return p.discard(snap)
		}
		return []Step{GoTo(asm), Interact(asm)}
	}

	if src := p.findPrepared(snap, want, rule, cooks); src >= 0 {
		return []Step{GoTo(src), Interact(src), GoTo(asm), Interact(asm)}
	}

	switch {
	case cooks:
		return p.prepareCooked(snap, ing, rule)
	case ing.Chop:
		unchopped := func(it models.Item) bool {
			return it.Type == ing.Item && !it.Chopped && !it.Ruined()
		}
		if b := snap.StationHolding(models.StationBoard, unchopped); b >= 0 {
			return []Step{GoTo(b), Chop(b), Interact(b), GoTo(asm), Interact(asm)}
		}
		spawn := snap.SpawnFor(ing.Item)
		if spawn < 0 {
			return nil
		}
		b := snap.FreeStation(models.StationBoard)
		if b < 0 {
			return p.clearBoard(snap, r)
		}
		// The chop itself is queued next cycle, once the board holds the item.
		return []Step{GoTo(spawn), Interact(spawn), GoTo(b), Interact(b)}
	default:
		spawn := snap.SpawnFor(ing.Item)
		if spawn < 0 {
			return nil
		}
		return []Step{GoTo(spawn), Interact(spawn), GoTo(asm), Interact(asm)}
	}
}

func (p *Planner) prepareCooked(snap *Snapshot, ing models.Ingredient, rule models.CookRule) []Step {
	if c := snap.StationCooking(rule.Station, ing.Item); c >= 0 {
		wait := min(snap.Stations[c].CookRemaining(snap.Now), p.WaitCap)
		if wait <= 0 {
			wait = p.WaitCap
		}
		return []Step{GoTo(c), Wait(snap.Now + wait)}
	}

	c := snap.FreeStation(rule.Station)
	if c < 0 {
		return nil
	}
	raw := func(it models.Item) bool { return it.Type == ing.Item && !it.Ruined() }
	if b := snap.StationHolding(models.StationBoard, raw); b >= 0 {
		return []Step{GoTo(b), Interact(b), GoTo(c), Interact(c)}
	}
	if spawn := snap.SpawnFor(ing.Item); spawn >= 0 {
		return []Step{GoTo(spawn), Interact(spawn), GoTo(c), Interact(c)}
	}
	return nil
}

// findPrepared looks for an already prepared instance of want: on its
// cooking station first, then on the boards.
func (p *Planner) findPrepared(snap *Snapshot, want models.Item, rule models.CookRule, cooks bool) int {
	match := func(it models.Item) bool { return it.Matches(want) }
	if cooks {
		if s := snap.StationHolding(rule.Station, match); s >= 0 {
			return s
		}
	}
	return snap.StationHolding(models.StationBoard, match)
}

// clearAssembly handles a finished item sitting on the assembly counter
// while the hands are free.
func (p *Planner) clearAssembly(snap *Snapshot, r models.Recipe, item models.Item) []Step {
	asm := snap.Assembly()
	switch {
	case item.Ruined():
		// pickup and put back; the counter bins ruined items
		return []Step{GoTo(asm), Interact(asm), Interact(asm)}
	case item.Type == r.Dish, r.NeedsBaking() && item.Type == r.Assembled:
		return []Step{GoTo(asm), Interact(asm)}
	}
	t := p.DepositTarget(snap, item, &r)
	if t < 0 || t == asm {
		return nil
	}
	return []Step{GoTo(asm), Interact(asm), GoTo(t), Interact(t)}
}

// unstack takes the top item off a partial build the recipe cannot extend
// and puts it where it belongs.
func (p *Planner) unstack(snap *Snapshot, r models.Recipe) []Step {
	if held := snap.Held(); held != nil {
		return p.deposit(snap, *held, &r)
	}
	asm := snap.Assembly()
	contents := snap.AssemblyContents()
	if len(contents) == 0 {
		return nil
	}
	t := p.DepositTarget(snap, contents[len(contents)-1], &r)
	if t < 0 || t == asm {
		return nil
	}
	return []Step{GoTo(asm), Take(asm), GoTo(t), Interact(t)}
}

// openBuild returns the recipe a foreign partial build belongs to when an
// open order asks for its dish.
func (p *Planner) openBuild(snap *Snapshot, contents []models.Item) (models.Recipe, bool) {
	for _, r := range p.catalog.Recipes() {
		if p.ordered(snap, r.Dish) && p.catalog.Fits(r, contents) {
			return r, true
		}
	}
	return models.Recipe{}, false
}

// baking covers the cook step of dishes that are assembled raw
func (p *Planner) baking(snap *Snapshot, r models.Recipe) ([]Step, bool) {
	rule, ok := p.catalog.CookRule(r.Assembled)
	if !ok {
		return nil, false
	}
	if c := snap.StationCooking(rule.Station, r.Assembled); c >= 0 {
		wait := min(snap.Stations[c].CookRemaining(snap.Now), p.WaitCap)
		if wait <= 0 {
			wait = p.WaitCap
		}
		return []Step{GoTo(c), Wait(snap.Now + wait)}, true
	}
	if snap.Held() != nil {
		return nil, false
	}

	c := snap.FreeStation(rule.Station)
	if c < 0 {
		return nil, false
	}
	assembled := func(it models.Item) bool { return it.Type == r.Assembled && !it.Ruined() }
	if b := snap.StationHolding(models.StationBoard, assembled); b >= 0 {
		return []Step{GoTo(b), Interact(b), GoTo(c), Interact(c)}, true
	}
	return nil, false
}

func (p *Planner) bake(snap *Snapshot, r models.Recipe) []Step {
	rule, ok := p.catalog.CookRule(r.Assembled)
	if !ok {
		return nil
	}
	if c := snap.FreeStation(rule.Station); c >= 0 {
		return []Step{GoTo(c), Interact(c)}
	}
	// Hands must be free to clear a ruined oven.
	if snap.StationHolding(rule.Station, models.Item.Ruined) >= 0 {
		if b := snap.FreeStation(models.StationBoard); b >= 0 {
			return []Step{GoTo(b), Interact(b)}
		}
		return p.discard(snap)
	}
	return nil
}

func (p *Planner) deliver(snap *Snapshot) []Step {
	d := snap.Delivery()
	if d < 0 {
		return nil
	}
	return []Step{GoTo(d), Interact(d)}
}

func (p *Planner) deposit(snap *Snapshot, item models.Item, r *models.Recipe) []Step {
	t := p.DepositTarget(snap, item, r)
	if t < 0 {
		return nil
	}
	return []Step{GoTo(t), Interact(t)}
}

// discard throws the held item in the bin
func (p *Planner) discard(snap *Snapshot) []Step {
	bin := snap.Bin()
	if bin < 0 {
		return nil
	}
	return []Step{GoTo(bin), Interact(bin)}
}

// ruinedCooker returns the first stove or oven holding ruined food, or -1
func (p *Planner) ruinedCooker(snap *Snapshot) int {
	for _, kind := range []models.StationKind{models.StationStove, models.StationOven} {
		if s := snap.StationHolding(kind, models.Item.Ruined); s >= 0 {
			return s
		}
	}
	return -1
}

// clearBoard frees a board whose item the recipe has no use for. The item
// goes where DepositTarget sends it: the delivery when an order asks for
// it, a cooker for raw food, the bin otherwise.
func (p *Planner) clearBoard(snap *Snapshot, r models.Recipe) []Step {
	b := p.spareBoard(snap, r)
	if b < 0 {
		return nil
	}
	t := p.DepositTarget(snap, *snap.Stations[b].Item, &r)
	if t < 0 || t == b {
		return nil
	}
	return []Step{GoTo(b), Interact(b), GoTo(t), Interact(t)}
}

// spareBoard returns a board holding an item that none of the recipe's
// remaining ingredients can use, or -1. Each remaining ingredient claims
// at most one board item. Boards holding something no open order wants
// are picked first.
func (p *Planner) spareBoard(snap *Snapshot, r models.Recipe) int {
	contents := snap.AssemblyContents()
	if !p.catalog.Fits(r, contents) {
		contents = nil
	}
	left := p.catalog.Remaining(r, contents)

	var spare []int
	for _, b := range snap.Kind(models.StationBoard) {
		item := snap.Stations[b].Item
		if item == nil {
			continue
		}
		if item.Type == r.AssembledItem() && !item.Ruined() {
			continue
		}
		claimed := -1
		for i, ing := range left {
			if p.serves(ing, *item) {
				claimed = i
				break
			}
		}
		if claimed >= 0 {
			left = append(left[:claimed:claimed], left[claimed+1:]...)
			continue
		}
		spare = append(spare, b)
	}

	for _, b := range spare {
		if !p.wanted(snap, *snap.Stations[b].Item) {
			return b
		}
	}
	if len(spare) > 0 {
		return spare[0]
	}
	return -1
}

// serves reports whether item is ing in its raw or prepared form
func (p *Planner) serves(ing models.Ingredient, item models.Item) bool {
	if item.Ruined() {
		return false
	}
	return item.Type == ing.Item || item.Matches(p.catalog.Effective(ing))
}

// wanted reports whether any open order's recipe uses item
func (p *Planner) wanted(snap *Snapshot, item models.Item) bool {
	if item.Ruined() {
		return false
	}
	for _, o := range snap.Orders {
		r, ok := p.catalog.RecipeFor(o.Dish)
		if !ok {
			continue
		}
		if item.Type == r.Dish || item.Type == r.AssembledItem() {
			return true
		}
		for _, ing := range r.Ingredients {
			if p.serves(ing, item) {
				return true
			}
		}
	}
	return false
}

// ordered reports whether an open order asks for dish
func (p *Planner) ordered(snap *Snapshot, dish models.ItemType) bool {
	for _, o := range snap.Orders {
		if o.Dish == dish {
			return true
		}
	}
	return false
}

// DepositTarget picks the natural station for an item the player should
// put down: ruined items go to the assembly bin, raw choppables to a board,
// raw cookables to their cooker, anything the counter would take to the
// assembly and a dish an order asks for to the delivery. Other items an
// order could use are parked on a free board; the rest go to the bin. r
// narrows what the counter should take; nil accepts any recipe. Returns -1
// when nothing fits this cycle.
func (p *Planner) DepositTarget(snap *Snapshot, item models.Item, r *models.Recipe) int {
	asm := snap.Assembly()
	if item.Ruined() {
		return asm
	}
	if p.catalog.Choppable(item.Type) && !item.Chopped {
		return p.counterSpace(snap)
	}
	if rule, ok := p.catalog.CookRule(item.Type); ok {
		if c := snap.FreeStation(rule.Station); c >= 0 {
			return c
		}
		return p.counterSpace(snap)
	}
	if asm >= 0 && snap.Stations[asm].Item == nil {
		contents := snap.Stations[asm].Contents
		if r != nil && p.catalog.Fits(*r, appendItem(contents, item)) {
			return asm
		}
		if r == nil && p.catalog.Accepts(contents, item) {
			return asm
		}
	}
	if d := snap.Delivery(); d >= 0 && p.ordered(snap, item.Type) {
		return d
	}
	if p.wanted(snap, item) {
		if b := snap.FreeStation(models.StationBoard); b >= 0 {
			return b
		}
	}
	if bin := snap.Bin(); bin >= 0 {
		return bin
	}
	return snap.FreeStation(models.StationBoard)
}

// counterSpace is a free board, or the bin when every board is taken
func (p *Planner) counterSpace(snap *Snapshot) int {
	if b := snap.FreeStation(models.StationBoard); b >= 0 {
		return b
	}
	return snap.Bin()
}

// FindDish locates a servable dish: in hand, on the assembly counter, on a
// board or on a cooker. station is -1 when the dish is in hand.
func FindDish(snap *Snapshot, dish models.ItemType) (station int, ok bool) {
	if held := snap.Held(); held != nil && held.Type == dish && !held.Ruined() {
		return -1, true
	}
	servable := func(it models.Item) bool { return it.Type == dish && !it.Ruined() }
	for _, kind := range []models.StationKind{
		models.StationAssembly,
		models.StationBoard,
		models.StationStove,
		models.StationOven,
	} {
		if s := snap.StationHolding(kind, servable); s >= 0 {
			return s, true
		}
	}
	return -1, false
}

func appendItem(items []models.Item, item models.Item) []models.Item {
	out := make([]models.Item, 0, len(items)+1)
	return append(append(out, items...), item)
}
