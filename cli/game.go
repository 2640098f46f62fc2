package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kitchenbot/internal/agents"
	"kitchenbot/internal/kitchen"
	"kitchenbot/internal/models"
	"kitchenbot/internal/recipes"
)

const (
	gameTick  = 100 * time.Millisecond
	cellWidth = 3
	maxEvents = 8
)

var (
	floorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	stationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#3a3a3c"))
	cookingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#ff9f0a"))
	humanStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#30d158"))
	botStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0a84ff"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(44)
)

var stationGlyphs = map[models.StationKind]string{
	models.StationBoard:    "B",
	models.StationStove:    "S",
	models.StationOven:     "O",
	models.StationAssembly: "A",
	models.StationDelivery: "D",
	models.StationBin:      "X",
}

// gameTickMsg advances the game that scheduled it. Ticks of a game the
// user already left are dropped.
type gameTickMsg struct {
	game *gameModel
}

// gameModel plays a local kitchen. Bots drive the first players; in watch
// mode they drive all of them, otherwise the last player is the human.
type gameModel struct {
	cfg      kitchen.Config
	catalog  *recipes.Catalog
	agentCfg agents.Config
	watch    bool
	games    int

	kitchen *kitchen.Kitchen
	bots    []*agents.Bot
	human   int
	events  []string
	status  string
}

func newGameModel(cfg kitchen.Config, catalog *recipes.Catalog, agentCfg agents.Config, watch bool) (*gameModel, error) {
	g := &gameModel{
		cfg:      cfg,
		catalog:  catalog,
		agentCfg: agentCfg,
		watch:    watch,
	}
	if err := g.reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// reset starts a new game on the next seed
func (g *gameModel) reset() error {
	cfg := g.cfg
	cfg.Seed += int64(g.games)
	k, err := kitchen.New(cfg, g.catalog)
	if err != nil {
		return err
	}
	g.games++
	g.kitchen = k
	g.events = nil
	g.status = ""
	k.OnEvent = g.logEvent

	bots := len(cfg.Players)
	g.human = -1
	if !g.watch {
		bots--
		g.human = len(cfg.Players) - 1
	}
	g.bots = make([]*agents.Bot, bots)
	for i := range g.bots {
		g.bots[i] = agents.NewBot(i, g.catalog, g.agentCfg)
	}
	return nil
}

func (g *gameModel) logEvent(e kitchen.Event) {
	line := fmt.Sprintf("%5.1fs %s", e.At.Seconds(), e.Type)
	if e.Item != "" {
		line += " " + string(e.Item)
	}
	if e.Points != 0 {
		line += fmt.Sprintf(" (%+d)", e.Points)
	}
	g.events = append(g.events, line)
	if len(g.events) > maxEvents {
		g.events = g.events[len(g.events)-maxEvents:]
	}
}

func (g *gameModel) tickCmd() tea.Cmd {
	return tea.Tick(gameTick, func(time.Time) tea.Msg {
		return gameTickMsg{game: g}
	})
}

// step advances the kitchen and lets every bot act once
func (g *gameModel) step(dt time.Duration) {
	if g.kitchen.Finished() {
		return
	}
	g.kitchen.Update(dt)
	for _, b := range g.bots {
		b.Update(g.kitchen)
	}
}

// handleKey applies one key press for the human player. It reports false
// for keys the game does not use.
func (g *gameModel) handleKey(key string) bool {
	if key == "r" {
		if err := g.reset(); err != nil {
			g.status = err.Error()
		}
		return true
	}
	if g.human < 0 || g.kitchen.Finished() {
		return false
	}

	var err error
	switch key {
	case "up", "k":
		err = g.kitchen.Move(g.human, 0, -1)
	case "down", "j":
		err = g.kitchen.Move(g.human, 0, 1)
	case "left", "h":
		err = g.kitchen.Move(g.human, -1, 0)
	case "right", "l":
		err = g.kitchen.Move(g.human, 1, 0)
	case " ":
		err = g.kitchen.Interact(g.human)
	case "c":
		err = g.kitchen.Chop(g.human)
	default:
		return false
	}

	g.status = ""
	if err != nil {
		g.status = err.Error()
	}
	return true
}

// grid renders the floor with one cell per grid step
func (g *gameModel) grid() string {
	b := g.kitchen.Bounds()
	cols, rows := b.Width/b.Step+1, b.Height/b.Step+1

	cells := make([][]string, rows)
	for y := range cells {
		cells[y] = make([]string, cols)
		for x := range cells[y] {
			cells[y][x] = floorStyle.Render(" · ")
		}
	}

	now := g.kitchen.Now()
	for _, s := range g.kitchen.Stations() {
		x, y := s.X/b.Step, s.Y/b.Step
		if y >= rows || x >= cols {
			continue
		}
		style := stationStyle
		if s.Cooking {
			style = cookingStyle
		}
		cells[y][x] = style.Render(stationCell(s, now))
	}

	for i, p := range g.kitchen.Players() {
		x, y := p.X/b.Step, p.Y/b.Step
		if y >= rows || x >= cols {
			continue
		}
		style := botStyle
		if i == g.human {
			style = humanStyle
		}
		cells[y][x] = style.Render(fmt.Sprintf(" %d ", i))
	}

	var sb strings.Builder
	for _, row := range cells {
		sb.WriteString(strings.Join(row, ""))
		sb.WriteString("\n")
	}
	return sb.String()
}

// stationCell is the cellWidth-wide label of a station
func stationCell(s models.Station, now time.Duration) string {
	glyph := stationGlyphs[s.Kind]
	if s.Kind == models.StationSpawn && s.Spawns != "" {
		glyph = strings.ToUpper(string(s.Spawns)[:1])
	}

	mark := " "
	switch {
	case s.Cooking && s.CookRemaining(now) <= 0:
		mark = "!"
	case s.Cooking:
		mark = "~"
	case s.Item != nil && s.Item.Ruined():
		mark = "x"
	case s.Item != nil:
		mark = "*"
	case len(s.Contents) > 0:
		mark = fmt.Sprint(min(len(s.Contents), 9))
	}
	return fmt.Sprintf("%-*s", cellWidth, glyph+mark)
}

// panel renders orders, players and recent events
func (g *gameModel) panel() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Time %5.1fs / %.0fs   Score %d\n", g.kitchen.Now().Seconds(), g.cfg.GameLength.Seconds(), g.kitchen.Score())
	if g.kitchen.Finished() {
		sb.WriteString(successStyle.Render("Game over") + "\n")
	}

	sb.WriteString("\nOrders\n")
	orders := g.kitchen.Orders()
	if len(orders) == 0 {
		sb.WriteString("  none\n")
	}
	for _, o := range orders {
		fmt.Fprintf(&sb, "  %-8s %-7s %4.0fs\n", o.ID, o.Dish, o.TimeRemaining.Seconds())
	}

	sb.WriteString("\nCooks\n")
	for i, p := range g.kitchen.Players() {
		held := "-"
		if p.Held != nil {
			held = p.Held.String()
		}
		who := "bot"
		if i == g.human {
			who = "you"
		}
		fmt.Fprintf(&sb, "  %d %-3s holding %s\n", i, who, held)
		if i < len(g.bots) {
			sb.WriteString("      " + g.botLine(g.bots[i]) + "\n")
		}
	}

	sb.WriteString("\nEvents\n")
	for _, e := range g.events {
		sb.WriteString("  " + e + "\n")
	}
	return panelStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

func (g *gameModel) botLine(b *agents.Bot) string {
	line := string(b.Goal())
	if r, ok := b.Recipe(); ok && b.OrderID() != "" {
		line += fmt.Sprintf(" %s for %s", r.Dish, b.OrderID())
	}
	if q := b.Queue(); len(q) > 0 {
		line += fmt.Sprintf(" next %s (+%d)", q[0], len(q)-1)
	}
	return line
}

func (g *gameModel) view() string {
	help := "arrows move · space interact · c chop · r restart · esc menu"
	if g.human < 0 {
		help = "r restart · esc menu"
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, g.grid(), "  ", g.panel())
	out := body + "\n" + help + "\n"
	if g.status != "" {
		out += errorStyle.Render(g.status) + "\n"
	}
	return out
}
