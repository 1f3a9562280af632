package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"catamaze/server/agent"
	"catamaze/server/engine"
	"catamaze/server/messages"
	"catamaze/server/models"
	"catamaze/server/persistence"
)

// Options configures a GameService.
type Options struct {
	Grid               *models.Grid
	Store              persistence.Storage
	Rules              engine.Rules
	PersonaDir         string
	Personas           []string // engine.DefaultPersonas when nil
	MaxConcurrentGames int
	Seed               int64 // time based when zero
	Logger             *log.Logger
}

// GameService is the session boundary: it loads, advances and persists
// games on behalf of clients.
type GameService struct {
	grid     *models.Grid
	store    persistence.Storage
	engine   *engine.Engine
	cache    *GameCache
	agents   *AgentPool
	personas []string
	maxGames int
	logger   *log.Logger

	rng         *rand.Rand
	createMutex sync.Mutex
}

// NewGameService creates a game service
func NewGameService(opts Options) (*GameService, error) {
	if opts.Grid == nil {
		return nil, errors.New("game service needs a grid")
	}
	if opts.Store == nil {
		return nil, errors.New("game service needs a store")
	}
	if opts.Rules == (engine.Rules{}) {
		opts.Rules = engine.DefaultRules()
	}
	if opts.MaxConcurrentGames <= 0 {
		opts.MaxConcurrentGames = models.MaxConcurrentGames
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	return &GameService{
		grid:     opts.Grid,
		store:    opts.Store,
		engine:   engine.New(opts.Rules, opts.Logger),
		cache:    NewGameCache(opts.Store),
		agents:   NewAgentPool(opts.PersonaDir, opts.Grid.Width(), opts.Grid.Height(), rng.Int63(), opts.Logger),
		personas: opts.Personas,
		maxGames: opts.MaxConcurrentGames,
		logger:   opts.Logger,
		rng:      rng,
	}, nil
}

// NewGame creates and stores a game, refusing when too many are active.
func (gs *GameService) NewGame() (*messages.GameStateMessage, error) {
	gs.createMutex.Lock()
	defer gs.createMutex.Unlock()

	active, err := gs.store.CountActiveGames()
	if err != nil {
		return nil, classify("count active games", err)
	}
	if active >= gs.maxGames {
		return nil, classify("create game", fmt.Errorf("%w (%d concurrent games)", ErrAtCapacity, gs.maxGames))
	}

	w, err := engine.NewWorld(gs.grid, engine.WorldOptions{
		Personas: gs.personas,
		Rand:     rand.New(rand.NewSource(gs.rng.Int63())),
	})
	if err != nil {
		return nil, classify("create game", err)
	}
	if err := gs.store.SaveGame(w.Snapshot()); err != nil {
		return nil, classify("save new game", err)
	}
	gs.cache.put(w)

	obs, err := gs.engine.Observe(w, models.PlayerID)
	if err != nil {
		return nil, classify("observe new game", err)
	}
	gs.logger.Printf("Created game %s with %d agents", w.GameID, len(w.Entities())-1)
	return &messages.GameStateMessage{GameID: w.GameID, Observation: obs}, nil
}

// QueueAction validates token and appends it to the player's queue.
func (gs *GameService) QueueAction(gameID, token string) (*messages.GameStateMessage, error) {
	action, err := models.ParseAction(token)
	if err != nil {
		return nil, classify("queue action", err)
	}

	var out *messages.GameStateMessage
	err = gs.cache.With(gameID, func(w *models.World) error {
		if err := w.Enqueue(models.PlayerID, action); err != nil {
			return err
		}
		if err := gs.persist(w); err != nil {
			gs.cache.Evict(gameID)
			return err
		}
		p, _ := w.Player()
		out = &messages.GameStateMessage{GameID: gameID, QueueSize: p.QueueLen(), Message: "Action queued"}
		return nil
	})
	if err != nil {
		return nil, classify("queue action", err)
	}
	return out, nil
}

// ClearQueue drops every pending player action.
func (gs *GameService) ClearQueue(gameID string) (*messages.GameStateMessage, error) {
	err := gs.cache.With(gameID, func(w *models.World) error {
		if err := w.ClearQueue(models.PlayerID); err != nil {
			return err
		}
		if err := gs.persist(w); err != nil {
			gs.cache.Evict(gameID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, classify("clear queue", err)
	}
	return &messages.GameStateMessage{GameID: gameID, Message: "Queue cleared"}, nil
}

// Tick advances gameID by one tick, stores the result and appends the tick's
// events and agent rewards to the game log.
func (gs *GameService) Tick(gameID string) (*messages.TickResultMessage, error) {
	var out *messages.TickResultMessage
	err := gs.cache.With(gameID, func(w *models.World) error {
		agents := gs.agents.Deciders(w)
		res, err := gs.engine.Advance(w, asDeciders(agents))
		if err != nil {
			if !errors.Is(err, models.ErrGameOver) {
				gs.cache.Evict(gameID)
			}
			return err
		}
		if err := gs.persist(w); err != nil {
			gs.cache.Evict(gameID)
			return err
		}

		entries := gs.eventEntries(gameID, res)
		entries = append(entries, gs.rewardEntries(w, res, agents)...)
		if err := gs.store.AppendLogs(entries); err != nil {
			gs.logger.Printf("Warning: failed to save logs of game %s: %v", gameID, err)
		}

		obs, ok := res.Observations[models.PlayerID]
		if !ok {
			if obs, err = gs.engine.Observe(w, models.PlayerID); err != nil {
				return err
			}
		}
		p, _ := w.Player()
		out = &messages.TickResultMessage{
			GameID:      gameID,
			Tick:        res.Tick,
			Observation: obs,
			Events:      eventMessages(res.Events),
			QueueSize:   p.QueueLen(),
			GameOver:    w.GameOver,
			WinnerID:    w.WinnerID,
		}
		if w.GameOver {
			gs.agents.Release(gameID)
			gs.logger.Printf("Game %s over at tick %d (winner: %q)", gameID, res.Tick, w.WinnerID)
		}
		return nil
	})
	if err != nil {
		return nil, classify("execute tick", err)
	}
	return out, nil
}

// Observe returns the player's current observation.
func (gs *GameService) Observe(gameID string) (*messages.ObservationMessage, error) {
	var out *messages.ObservationMessage
	err := gs.cache.With(gameID, func(w *models.World) error {
		obs, err := gs.engine.Observe(w, models.PlayerID)
		if err != nil {
			return err
		}
		out = &messages.ObservationMessage{GameID: gameID, Observation: obs}
		return nil
	})
	if err != nil {
		return nil, classify("get observation", err)
	}
	return out, nil
}

// Resume reopens a stored game.
func (gs *GameService) Resume(gameID string) (*messages.GameStateMessage, error) {
	var out *messages.GameStateMessage
	err := gs.cache.With(gameID, func(w *models.World) error {
		obs, err := gs.engine.Observe(w, models.PlayerID)
		if err != nil {
			return err
		}
		p, _ := w.Player()
		out = &messages.GameStateMessage{GameID: gameID, Observation: obs, QueueSize: p.QueueLen(), Message: "Game resumed"}
		return nil
	})
	if err != nil {
		return nil, classify("resume game", err)
	}
	return out, nil
}

// Watch returns the full map and roster of gameID without fog of war.
func (gs *GameService) Watch(gameID string) (*messages.WatchUpdateMessage, error) {
	var out *messages.WatchUpdateMessage
	err := gs.cache.With(gameID, func(w *models.World) error {
		snap := w.Snapshot()
		out = &messages.WatchUpdateMessage{
			GameID:   gameID,
			Tick:     snap.Tick,
			Map:      snap.Map,
			Entities: snap.Entities,
			GameOver: snap.GameOver,
			WinnerID: snap.WinnerID,
		}
		return nil
	})
	if err != nil {
		return nil, classify("watch game", err)
	}
	return out, nil
}

// Logs reads a page of a game's log.
func (gs *GameService) Logs(req messages.LogsRequest) (*messages.LogEntriesMessage, error) {
	if req.Limit < 0 || req.Offset < 0 {
		return nil, &Error{
			Code:    CodeBadRequest,
			Message: fmt.Sprintf("limit and offset must not be negative (limit %d, offset %d)", req.Limit, req.Offset),
		}
	}
	if _, err := gs.cache.get(req.GameID); err != nil {
		return nil, classify("read logs", err)
	}

	filter := persistence.LogFilter{
		EntityID:  req.EntityID,
		EventType: req.EventType,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}
	entries, err := gs.store.ReadLogs(req.GameID, filter)
	if err != nil {
		return nil, classify("read logs", err)
	}
	total, err := gs.store.CountLogs(req.GameID, filter)
	if err != nil {
		return nil, classify("count logs", err)
	}
	return &messages.LogEntriesMessage{GameID: req.GameID, Total: total, Entries: entries}, nil
}

func (gs *GameService) persist(w *models.World) error {
	if err := gs.store.SaveGame(w.Snapshot()); err != nil {
		return fmt.Errorf("failed to save game %s: %w", w.GameID, err)
	}
	return nil
}

func (gs *GameService) eventEntries(gameID string, res *engine.TickResult) []persistence.LogEntry {
	entries := make([]persistence.LogEntry, 0, len(res.Events))
	for _, ev := range res.Events {
		entries = append(entries, persistence.LogEntry{
			GameID:    gameID,
			Tick:      res.Tick,
			EntityID:  ev.EntityID,
			EventType: persistence.LogGameEvent,
			Message:   ev.Message,
			ExtraData: map[string]any{"type": string(ev.Type)},
		})
	}
	return entries
}

// rewardEntries scores the tick for every agent that decided in it.
func (gs *GameService) rewardEntries(w *models.World, res *engine.TickResult, agents map[string]*agent.Heuristic) []persistence.LogEntry {
	var entries []persistence.LogEntry
	for _, e := range w.Entities() {
		h, ok := agents[e.ID]
		if !ok {
			continue
		}
		reward, _ := h.Observe(res.Observations[e.ID], res.Events, agent.OutcomeFor(w, e.ID))

		kind := persistence.LogReward
		if reward < 0 {
			kind = persistence.LogPenalty
		}
		entries = append(entries, persistence.LogEntry{
			GameID:    w.GameID,
			Tick:      res.Tick,
			EntityID:  e.ID,
			EventType: kind,
			Message:   fmt.Sprintf("%s %s %.2f (episode %.2f)", e.ID, kind, reward, h.EpisodeReward()),
			ExtraData: map[string]any{
				"reward":         reward,
				"episode_reward": h.EpisodeReward(),
				"action":         string(h.LastAction()),
			},
		})
	}
	return entries
}

func eventMessages(events []models.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.String())
	}
	return out
}
