// Package engine is the authoritative simulation: it advances a World one
// tick at a time and produces per-entity observations.
package engine

import (
	"fmt"
	"io"
	"log"

	"catamaze/server/models"
)

// Decider chooses the next action of an autonomous entity. A non-nil error
// means the entity queues nothing this tick.
type Decider interface {
	Decide(obs *models.Observation) (models.Action, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(obs *models.Observation) (models.Action, error)

func (f DeciderFunc) Decide(obs *models.Observation) (models.Action, error) { return f(obs) }

// TickResult is what one call to Advance produces.
type TickResult struct {
	Tick         int                            `json:"tick"`
	Events       []models.Event                 `json:"events"`
	Observations map[string]*models.Observation `json:"observations"`
}

// Engine applies the game rules to worlds handed to it. It keeps no per-game
// state, so one Engine may serve any number of games.
type Engine struct {
	rules  Rules
	logger *log.Logger
}

// New creates an engine. A nil logger discards output.
func New(rules Rules, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{rules: rules, logger: logger}
}

func (en *Engine) Rules() Rules { return en.rules }

// Observe returns the current observation of entity id, without sound.
func (en *Engine) Observe(w *models.World, id string) (*models.Observation, error) {
	return en.observe(w, id, nil)
}

// tick carries the bookkeeping of one Advance call.
type tick struct {
	world  *models.World
	events []models.Event
	shots  []Shot
}

func (t *tick) record(ev models.Event) {
	ev.Tick = t.world.Tick
	t.events = append(t.events, ev)
}

// Advance runs one full tick on w. agents maps entity ids to the deciders of
// autonomous entities. A returned error other than models.ErrGameOver wraps
// ErrInconsistentState and leaves w in an undefined state.
func (en *Engine) Advance(w *models.World, agents map[string]Decider) (*TickResult, error) {
	if w.GameOver {
		return nil, models.ErrGameOver
	}
	t := &tick{world: w}

	en.decide(t, agents)
	actions := en.drain(w)
	for _, e := range w.Entities() {
		a, ok := actions[e.ID]
		if !ok || !e.Alive {
			continue
		}
		if err := en.execute(t, e, a); err != nil {
			return nil, err
		}
	}
	en.regenerate(t)
	en.checkTerminal(t)

	w.Tick++

	result := &TickResult{
		Tick:         w.Tick,
		Events:       t.events,
		Observations: make(map[string]*models.Observation),
	}
	for _, e := range w.LiveEntities() {
		obs, err := en.observe(w, e.ID, t.shots)
		if err != nil {
			return nil, err
		}
		result.Observations[e.ID] = obs
	}
	return result, nil
}

func (en *Engine) decide(t *tick, agents map[string]Decider) {
	for _, e := range t.world.LiveEntities() {
		if e.IsPlayer() {
			continue
		}
		agent, ok := agents[e.ID]
		if !ok {
			continue
		}

		obs, err := en.observe(t.world, e.ID, nil)
		if err == nil {
			var a models.Action
			a, err = agent.Decide(obs)
			if err == nil {
				err = t.world.Enqueue(e.ID, a)
			}
		}
		if err != nil {
			en.logger.Printf("Agent %s failed to decide an action: %v", e.ID, err)
			t.record(models.Event{
				Type:     models.EventDecisionFailed,
				EntityID: e.ID,
				Position: e.Pos,
				Message:  fmt.Sprintf("%s failed to decide an action: %v", e.ID, err),
			})
		}
	}
}

func (en *Engine) drain(w *models.World) map[string]models.Action {
	actions := make(map[string]models.Action)
	for _, e := range w.LiveEntities() {
		a, ok := e.PopAction()
		if !ok {
			a = models.Wait
		}
		actions[e.ID] = a
	}
	return actions
}

func (en *Engine) execute(t *tick, e *models.Entity, a models.Action) error {
	switch {
	case a.IsMove():
		return en.move(t, e, a)
	case a.IsShoot():
		return en.shoot(t, e, a)
	}
	return nil
}

func (en *Engine) move(t *tick, e *models.Entity, a models.Action) error {
	dir, _ := a.Direction()
	next, moved, err := ResolveMove(t.world.Grid, e.Pos, dir)
	if err != nil {
		return fmt.Errorf("failed to move %s: %w", e.ID, err)
	}
	if !moved {
		t.record(models.Event{
			Type:     models.EventBlocked,
			EntityID: e.ID,
			Position: e.Pos,
			Message:  fmt.Sprintf("%s tried to move but hit a wall", e.ID),
		})
		return nil
	}

	e.Pos = next
	t.record(models.Event{
		Type:     models.EventMoved,
		EntityID: e.ID,
		Position: next,
		NewCell:  e.Visit(next),
		Message:  fmt.Sprintf("%s moved to (%d, %d)", e.ID, next.X, next.Y),
	})
	return nil
}

func (en *Engine) shoot(t *tick, e *models.Entity, a models.Action) error {
	dir, _ := a.Direction()
	// Every trigger pull is audible, loaded or not.
	shot := Shot{ShooterID: e.ID, Origin: e.Pos, Direction: dir, Tick: t.world.Tick}
	t.shots = append(t.shots, shot)

	if !CanShoot(e.Ammo) {
		t.record(models.Event{
			Type:     models.EventOutOfAmmo,
			EntityID: e.ID,
			Position: e.Pos,
			Message:  fmt.Sprintf("%s tried to shoot but out of ammo", e.ID),
		})
		return nil
	}

	e.Ammo = ConsumeAmmo(e.Ammo)
	e.LastShotTick = t.world.Tick

	var candidates []models.Position
	for _, o := range t.world.LiveEntities() {
		if o.ID != e.ID {
			candidates = append(candidates, o.Pos)
		}
	}
	hitPos, hit, err := shot.Resolve(t.world.Grid, en.rules.BulletRange, candidates)
	if err != nil {
		return fmt.Errorf("failed to resolve shot by %s: %w", e.ID, err)
	}
	if !hit {
		t.record(models.Event{
			Type:     models.EventShotMiss,
			EntityID: e.ID,
			Position: e.Pos,
			Message:  fmt.Sprintf("%s shot %s but missed", e.ID, dir.Name()),
		})
		return nil
	}

	target, ok := t.world.EntityAt(hitPos)
	if !ok {
		return fmt.Errorf("%w: shot by %s hit an empty cell (%d, %d)", ErrInconsistentState, e.ID, hitPos.X, hitPos.Y)
	}
	target.HP = en.rules.ApplyDamage(target.HP, en.rules.BulletDamage)
	t.record(models.Event{
		Type:     models.EventShotHit,
		EntityID: e.ID,
		OtherID:  target.ID,
		Position: hitPos,
		Value:    target.HP,
		Message:  fmt.Sprintf("%s shot %s at (%d, %d). %s HP: %d", e.ID, target.ID, hitPos.X, hitPos.Y, target.ID, target.HP),
	})

	if !IsAlive(target.HP) {
		target.Alive = false
		t.record(models.Event{
			Type:     models.EventDied,
			EntityID: target.ID,
			OtherID:  e.ID,
			Position: hitPos,
			Message:  fmt.Sprintf("%s died", target.ID),
		})
	}
	return nil
}

func (en *Engine) regenerate(t *tick) {
	for _, e := range t.world.LiveEntities() {
		ammo, last := en.rules.RecoverAmmo(e.Ammo, t.world.Tick, e.LastShotTick)
		if ammo <= e.Ammo {
			continue
		}
		e.Ammo, e.LastShotTick = ammo, last
		t.record(models.Event{
			Type:     models.EventAmmoRecovered,
			EntityID: e.ID,
			Position: e.Pos,
			Value:    e.Ammo,
			Message:  fmt.Sprintf("%s recovered 1 ammo (total: %d)", e.ID, e.Ammo),
		})
	}
}

func (en *Engine) checkTerminal(t *tick) {
	w := t.world
	p, ok := w.Player()
	if !ok {
		return
	}
	switch {
	case p.Alive && p.Pos == w.Exit:
		p.Won = true
		w.EndGame(p.ID)
		t.record(models.Event{
			Type:     models.EventPlayerWon,
			EntityID: p.ID,
			Position: p.Pos,
			Message:  "Player reached the exit and won!",
		})
	case !p.Alive:
		w.EndGame("")
		t.record(models.Event{
			Type:     models.EventPlayerDied,
			EntityID: p.ID,
			Position: p.Pos,
			Message:  "Player died. Game over.",
		})
	}
}
