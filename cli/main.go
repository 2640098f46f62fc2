package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kitchenbot/internal/config"
	"kitchenbot/internal/playground"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	watch      = flag.Bool("watch", false, "Start watching bots play instead of showing the menu")
)

// Model defines the application state
type Model struct {
	cfg       *config.Config
	client    *ApiClient
	mainMenu  list.Model
	scenarios list.Model
	runsTable table.Model
	spinner   spinner.Model
	game      *gameModel
	result    *RunSummary

	loading     bool
	currentView string
	error       string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// scenarioItem is a scenario in the evaluation list
type scenarioItem struct {
	info playground.ScenarioInfo
}

func (i scenarioItem) Title() string { return i.info.Name }
func (i scenarioItem) Description() string {
	return fmt.Sprintf("%s · %s · %d bot(s) · %.0fs", i.info.ID, strings.Join(i.info.Menu, ", "), i.info.Bots, i.info.DurationSecs)
}
func (i scenarioItem) FilterValue() string { return i.info.ID }

// Initialize the model
func initialModel(cfg *config.Config, client *ApiClient) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := []list.Item{
		item{title: "Play with a bot", desc: "Cook alongside a bot in a local kitchen"},
		item{title: "Watch two bots", desc: "Let the bots run the local kitchen"},
		item{title: "Run evaluation", desc: "Score a scenario on the server"},
		item{title: "Recent runs", desc: "Browse the server's run log"},
		item{title: "Exit", desc: "Exit the application"},
	}
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "Kitchenbot"

	scenarios := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	scenarios.Title = "Scenarios"

	columns := []table.Column{
		{Title: "Run", Width: 10},
		{Title: "Scenario", Width: 16},
		{Title: "Seed", Width: 6},
		{Title: "Score", Width: 6},
		{Title: "Delivered", Width: 10},
		{Title: "Expired", Width: 8},
		{Title: "When", Width: 17},
	}
	runsTable := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return Model{
		cfg:         cfg,
		client:      client,
		mainMenu:    mainMenu,
		scenarios:   scenarios,
		runsTable:   runsTable,
		spinner:     s,
		currentView: "main",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.currentView == "game" {
		cmds = append(cmds, m.game.tickCmd())
	}
	return tea.Batch(cmds...)
}

// startGame switches to a local game, with or without a human player
func (m Model) startGame(watchOnly bool) (Model, tea.Cmd) {
	catalog, err := m.cfg.Catalog()
	if err != nil {
		m.error = err.Error()
		return m, nil
	}
	game, err := newGameModel(m.cfg.Kitchen, catalog, m.cfg.Agent, watchOnly)
	if err != nil {
		m.error = err.Error()
		return m, nil
	}
	m.error = ""
	m.game = game
	m.currentView = "game"
	return m, game.tickCmd()
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.mainMenu.SetSize(msg.Width-h, msg.Height-v)
		m.scenarios.SetSize(msg.Width-h, msg.Height-v)
		return m, nil
	case gameTickMsg:
		if m.currentView != "game" || msg.game != m.game {
			return m, nil
		}
		m.game.step(gameTick)
		return m, m.game.tickCmd()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == "game" {
			if msg.String() == "esc" {
				m.currentView = "main"
				m.game = nil
				return m, nil
			}
			m.game.handleKey(msg.String())
			return m, nil
		}
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "q":
			if m.currentView == "main" {
				return m, tea.Quit
			}
		case "enter":
			switch m.currentView {
			case "main":
				selected, ok := m.mainMenu.SelectedItem().(item)
				if !ok {
					break
				}
				switch selected.title {
				case "Exit":
					return m, tea.Quit
				case "Play with a bot":
					return m.startGame(false)
				case "Watch two bots":
					return m.startGame(true)
				case "Run evaluation":
					m.currentView = "scenarios"
					m.loading = true
					return m, fetchScenarios(m.client)
				case "Recent runs":
					m.currentView = "runs"
					m.loading = true
					return m, fetchRuns(m.client)
				}
			case "scenarios":
				if selected, ok := m.scenarios.SelectedItem().(scenarioItem); ok {
					m.currentView = "result"
					m.loading = true
					m.result = nil
					return m, runEvaluation(m.client, selected.info.ID, m.cfg.Kitchen.Seed)
				}
			case "result":
				m.currentView = "runs"
				m.loading = true
				return m, fetchRuns(m.client)
			}
		case "esc":
			if m.currentView != "main" {
				m.currentView = "main"
				m.error = ""
			}
			return m, nil
		}
	case scenariosMsg:
		m.loading = false
		m.error = ""
		items := make([]list.Item, 0, len(msg.scenarios))
		for _, sc := range msg.scenarios {
			items = append(items, scenarioItem{info: sc})
		}
		m.scenarios.SetItems(items)
		return m, nil
	case runsMsg:
		m.loading = false
		m.error = ""
		m.runsTable.SetRows(msg.rows)
		return m, nil
	case resultMsg:
		m.loading = false
		m.error = ""
		m.result = msg.result
		return m, nil
	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "scenarios":
		m.scenarios, cmd = m.scenarios.Update(msg)
	case "runs":
		m.runsTable, cmd = m.runsTable.Update(msg)
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	var out string
	switch m.currentView {
	case "main":
		out = m.mainMenu.View()
	case "game":
		title := "Kitchen · you are cook " + fmt.Sprint(m.game.human)
		if m.game.human < 0 {
			title = "Kitchen · watching"
		}
		out = titleStyle.Render(title) + "\n\n" + m.game.view()
	case "scenarios":
		if m.loading {
			out = titleStyle.Render("Scenarios") + "\n\n" + m.spinner.View() + " Loading scenarios..."
		} else {
			out = m.scenarios.View()
		}
	case "result":
		out = titleStyle.Render("Evaluation") + "\n\n"
		switch {
		case m.loading:
			out += m.spinner.View() + " Running scenario on the server..."
		case m.result != nil:
			out += resultView(m.result) + "\nPress 'enter' for recent runs, 'esc' to go back"
		}
	case "runs":
		out = titleStyle.Render("Recent runs") + "\n\n"
		if m.loading {
			out += m.spinner.View() + " Loading runs..."
		} else {
			out += m.runsTable.View() + "\n\nPress 'esc' to go back"
		}
	default:
		out = "Loading..."
	}

	if m.error != "" {
		out += "\n\n" + errorStyle.Render(m.error)
	}
	return docStyle.Render(out)
}

// resultView renders an evaluation result with its metrics sorted by name
func resultView(r *RunSummary) string {
	var sb strings.Builder
	sb.WriteString(successStyle.Render(fmt.Sprintf("%s scored %d", r.Scenario, r.Score)) + "\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("run %s · seed %d", r.RunID, r.Seed)) + "\n\n")

	keys := make([]string, 0, len(r.Metrics))
	for k := range r.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-22s %v\n", k, r.Metrics[k])
	}

	if r.Debrief != "" {
		sb.WriteString("\nDebrief\n" + r.Debrief + "\n")
	}
	return sb.String()
}

// Custom message types for the tea.Model
type scenariosMsg struct {
	scenarios []playground.ScenarioInfo
}

type runsMsg struct {
	rows []table.Row
}

type resultMsg struct {
	result *RunSummary
}

type errorMsg struct {
	err string
}

// fetchScenarios retrieves the server's scenarios
func fetchScenarios(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		scenarios, err := client.GetScenarios()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching scenarios: %v", err)}
		}
		return scenariosMsg{scenarios: scenarios}
	}
}

// fetchRuns retrieves the latest stored runs
func fetchRuns(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		runs, err := client.GetRuns("", 20)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching runs: %v", err)}
		}
		rows := make([]table.Row, 0, len(runs))
		for _, r := range runs {
			id := r.RunID
			if len(id) > 8 {
				id = id[:8]
			}
			rows = append(rows, table.Row{
				id,
				r.Scenario,
				fmt.Sprint(r.Seed),
				fmt.Sprint(r.Score),
				fmt.Sprintf("%d/%d", r.OrdersDelivered, r.OrdersPlaced),
				fmt.Sprint(r.OrdersExpired),
				r.StartTime.Format("2006-01-02 15:04"),
			})
		}
		return runsMsg{rows: rows}
	}
}

// runEvaluation asks the server to run a scenario and waits for the result
func runEvaluation(client *ApiClient, scenario string, seed int64) tea.Cmd {
	return func() tea.Msg {
		result, err := client.Evaluate(scenario, seed)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error running %s: %v", scenario, err)}
		}
		return resultMsg{result: result}
	}
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	m := initialModel(cfg, NewApiClient())
	if *watch {
		m, _ = m.startGame(true)
		if m.error != "" {
			fmt.Printf("Error starting game: %v\n", m.error)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
