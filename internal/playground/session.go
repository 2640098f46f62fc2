package playground

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"kitchenbot/internal/agents"
	"kitchenbot/internal/kitchen"
	"kitchenbot/internal/models"
	"kitchenbot/internal/monitoring"
	"kitchenbot/internal/recipes"
)

// Frame is one broadcast picture of the live kitchen
type Frame struct {
	Type     string           `json:"type"`
	Session  string           `json:"session"`
	Clock    float64          `json:"clock"`
	Score    int              `json:"score"`
	Finished bool             `json:"finished"`
	Stations []models.Station `json:"stations"`
	Players  []models.Player  `json:"players"`
	Orders   []models.Order   `json:"orders"`
	Bots     []BotState       `json:"bots"`
	Events   []kitchen.Event  `json:"events,omitempty"`
}

// BotState is what a spectator sees of a bot
type BotState struct {
	Player  int      `json:"player"`
	Goal    string   `json:"goal"`
	OrderID string   `json:"order_id,omitempty"`
	Dish    string   `json:"dish,omitempty"`
	Queue   []string `json:"queue"`
}

// Session is a live kitchen played by bots. The kitchen is not safe for
// concurrent use, so every access goes through the session's lock.
type Session struct {
	mu       sync.Mutex
	id       string
	cfg      kitchen.Config
	catalog  *recipes.Catalog
	agentCfg agents.Config
	botCount int
	games    int

	kitchen *kitchen.Kitchen
	bots    []*agents.Bot
	pending []kitchen.Event

	monitor *monitoring.Monitor

	subMu sync.Mutex
	subs  map[chan []byte]struct{}
}

// NewSession starts a live game with the given number of bots
func NewSession(cfg kitchen.Config, catalog *recipes.Catalog, agentCfg agents.Config, bots int, monitor *monitoring.Monitor) (*Session, error) {
	if bots < 0 || bots > len(cfg.Players) {
		return nil, fmt.Errorf("%d bots for %d players", bots, len(cfg.Players))
	}
	s := &Session{
		cfg:      cfg,
		catalog:  catalog,
		agentCfg: agentCfg,
		botCount: bots,
		monitor:  monitor,
		subs:     make(map[chan []byte]struct{}),
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset replaces the game with a fresh one. Every new game advances the
// seed so consecutive games differ.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg
	cfg.Seed += int64(s.games)
	k, err := kitchen.New(cfg, s.catalog)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	s.games++
	s.id = uuid.New().String()
	s.kitchen = k
	s.pending = nil
	k.OnEvent = func(e kitchen.Event) {
		s.pending = append(s.pending, e)
	}

	s.bots = make([]*agents.Bot, s.botCount)
	for i := range s.bots {
		s.bots[i] = agents.NewBot(i, s.catalog, s.agentCfg)
	}
	return nil
}

// Step advances the game by dt and returns the resulting frame
func (s *Session) Step(dt time.Duration) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kitchen.Update(dt)
	for _, b := range s.bots {
		b.Update(s.kitchen)
	}

	if s.monitor != nil {
		s.monitor.RecordGame(s.kitchen.Stats(), s.kitchen.Score(), s.kitchen.Now(), len(s.kitchen.Orders()))
	}

	f := s.frame()
	s.pending = nil
	return f
}

// Frame returns the current frame without advancing the game
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame()
}

// Interact lets a human drive a player that has no bot
func (s *Session) Interact(player int, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if player < s.botCount {
		return fmt.Errorf("player %d is played by a bot", player)
	}
	switch action {
	case "up":
		return s.kitchen.Move(player, 0, -1)
	case "down":
		return s.kitchen.Move(player, 0, 1)
	case "left":
		return s.kitchen.Move(player, -1, 0)
	case "right":
		return s.kitchen.Move(player, 1, 0)
	case "interact":
		return s.kitchen.Interact(player)
	case "chop":
		return s.kitchen.Chop(player)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func (s *Session) frame() Frame {
	f := Frame{
		Type:     "frame",
		Session:  s.id,
		Clock:    s.kitchen.Now().Seconds(),
		Score:    s.kitchen.Score(),
		Finished: s.kitchen.Finished(),
		Stations: s.kitchen.Stations(),
		Players:  s.kitchen.Players(),
		Orders:   s.kitchen.Orders(),
		Events:   append([]kitchen.Event(nil), s.pending...),
	}
	for _, b := range s.bots {
		st := BotState{Player: b.Player(), Goal: string(b.Goal()), OrderID: b.OrderID()}
		if r, ok := b.Recipe(); ok {
			st.Dish = string(r.Dish)
		}
		for _, step := range b.Queue() {
			st.Queue = append(st.Queue, step.String())
		}
		f.Bots = append(f.Bots, st)
	}
	return f
}

// Subscribe registers a listener for broadcast messages. The returned
// function unregisters it and closes the channel.
func (s *Session) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 64)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// Broadcast sends a JSON message to every subscriber. Slow subscribers
// miss messages rather than block the game.
func (s *Session) Broadcast(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling broadcast: %v", err)
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- data:
		default:
		}
	}
}

// Run plays the game in real time until ctx is done. A finished game is
// shown for a few seconds and then replaced.
func (s *Session) Run(ctx context.Context, tick time.Duration, pause time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var finishedAt time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !finishedAt.IsZero() {
				if now.Sub(finishedAt) < pause {
					continue
				}
				finishedAt = time.Time{}
				if err := s.Reset(); err != nil {
					log.Printf("Live session reset failed: %v", err)
					return
				}
			}

			f := s.Step(tick)
			s.Broadcast(f)
			if f.Finished {
				log.Printf("Live game %s finished with score %d", f.Session, f.Score)
				finishedAt = now
			}
		}
	}
}
