package engine

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catamaze/server/models"
)

func TestAdvance_PlayerMoves(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("a", openGrid(t, 50))
	p := addEntity(t, w, models.PlayerID, models.KindPlayer, 1, 0)

	require.NoError(t, w.Enqueue(p.ID, models.MoveRight))
	require.NoError(t, w.Enqueue(p.ID, models.MoveDown))

	var moved []models.Event
	for i := 0; i < 2; i++ {
		res := advance(t, en, w, nil)
		moved = append(moved, eventsOf(res.Events, models.EventMoved)...)
	}

	assert.Equal(t, models.Position{X: 2, Y: 1}, p.Pos)
	assert.Len(t, moved, 2)
	assert.False(t, w.GameOver)
	assert.Equal(t, 2, w.Tick)
}

func TestAdvance_ShotKillsTarget(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("b", openGrid(t, 20))
	shooter := addEntity(t, w, models.PlayerID, models.KindPlayer, 10, 10)
	target := addEntity(t, w, "agent_aggressive_1", models.KindAgent, 13, 10)
	target.HP = 1

	require.NoError(t, w.Enqueue(shooter.ID, models.ShootRight))
	res := advance(t, en, w, nil)

	assert.Equal(t, 0, target.HP)
	assert.False(t, target.Alive)
	assert.Equal(t, models.MaxAmmo-1, shooter.Ammo)

	died := eventsOf(res.Events, models.EventDied)
	require.Len(t, died, 1)
	assert.Equal(t, target.ID, died[0].EntityID)
	assert.Equal(t, shooter.ID, died[0].OtherID)

	hits := eventsOf(res.Events, models.EventShotHit)
	require.Len(t, hits, 1)
	assert.Equal(t, target.ID, hits[0].OtherID)

	_, observed := res.Observations[target.ID]
	assert.False(t, observed)
	assert.Equal(t, models.SoundClick, res.Observations[shooter.ID].LastSound)
	assert.Empty(t, res.Observations[shooter.ID].Sounds)
}

func TestAdvance_AmmoRegeneration(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("c", openGrid(t, 10))
	e := addEntity(t, w, models.PlayerID, models.KindPlayer, 4, 4)
	e.Ammo = 0
	e.LastShotTick = 0

	byTick := map[int]int{}
	for i := 0; i < 10; i++ {
		tick := w.Tick
		advance(t, en, w, nil)
		byTick[tick] = e.Ammo
	}

	assert.Equal(t, 0, byTick[1])
	assert.Equal(t, 1, byTick[2])
	assert.Equal(t, 1, byTick[3])
	assert.Equal(t, 2, byTick[4])
	assert.Equal(t, 3, byTick[6])
	assert.Equal(t, 3, byTick[9])
}

func TestAdvance_PlayerReachesExit(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("d", openGrid(t, 10))
	p := addEntity(t, w, models.PlayerID, models.KindPlayer, 8, 9)

	require.NoError(t, w.Enqueue(p.ID, models.MoveRight))
	res := advance(t, en, w, nil)

	assert.True(t, p.Won)
	assert.True(t, w.GameOver)
	assert.Equal(t, p.ID, w.WinnerID)
	assert.Len(t, eventsOf(res.Events, models.EventPlayerWon), 1)
	assert.True(t, res.Observations[p.ID].GameOver)

	_, err := en.Advance(w, nil)
	assert.ErrorIs(t, err, models.ErrGameOver)
	assert.Equal(t, 1, w.Tick)
}

func TestAdvance_PlayerDeathEndsGame(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("e", openGrid(t, 10))
	p := addEntity(t, w, models.PlayerID, models.KindPlayer, 2, 2)
	p.HP = 1
	addEntity(t, w, "agent_aggressive_1", models.KindAgent, 2, 5)

	agents := map[string]Decider{
		"agent_aggressive_1": DeciderFunc(func(*models.Observation) (models.Action, error) {
			return models.ShootUp, nil
		}),
	}
	res := advance(t, en, w, agents)

	assert.False(t, p.Alive)
	assert.True(t, w.GameOver)
	assert.Empty(t, w.WinnerID)
	assert.Len(t, eventsOf(res.Events, models.EventPlayerDied), 1)
}

func TestAdvance_DecisionFailureIsWait(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("f", openGrid(t, 10))
	addEntity(t, w, models.PlayerID, models.KindPlayer, 1, 1)
	a := addEntity(t, w, "agent_cautious_1", models.KindAgent, 5, 5)
	b := addEntity(t, w, "agent_explorer_2", models.KindAgent, 7, 7)

	agents := map[string]Decider{
		a.ID: DeciderFunc(func(*models.Observation) (models.Action, error) {
			return "", errors.New("boom")
		}),
		b.ID: DeciderFunc(func(*models.Observation) (models.Action, error) {
			return models.Action("TELEPORT"), nil
		}),
	}
	res := advance(t, en, w, agents)

	assert.Equal(t, models.Position{X: 5, Y: 5}, a.Pos)
	assert.Equal(t, models.Position{X: 7, Y: 7}, b.Pos)
	failed := eventsOf(res.Events, models.EventDecisionFailed)
	require.Len(t, failed, 2)
	assert.Equal(t, a.ID, failed[0].EntityID)
	assert.Equal(t, b.ID, failed[1].EntityID)
	assert.Equal(t, 1, w.Tick)
}

func TestAdvance_BlockedMoveAndEmptyMagazine(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("g", gridFrom(t, "S#.", "...", "..E"))
	p := addEntity(t, w, models.PlayerID, models.KindPlayer, 0, 1)
	p.Ammo = 0
	p.LastShotTick = 0

	require.NoError(t, w.Enqueue(p.ID, models.MoveLeft))
	require.NoError(t, w.Enqueue(p.ID, models.ShootRight))
	first := advance(t, en, w, nil)
	second := advance(t, en, w, nil)

	assert.Equal(t, models.Position{X: 0, Y: 1}, p.Pos)
	assert.Len(t, eventsOf(first.Events, models.EventBlocked), 1)
	assert.Len(t, eventsOf(second.Events, models.EventOutOfAmmo), 1)
}

// Actions resolve in roster order, so an entity earlier in the roster can step
// out of a line of fire before a later entity shoots along it.
func TestAdvance_ExecutionOrder(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("h", openGrid(t, 10))
	p := addEntity(t, w, models.PlayerID, models.KindPlayer, 2, 2)
	shooter := addEntity(t, w, "agent_aggressive_1", models.KindAgent, 6, 2)

	require.NoError(t, w.Enqueue(p.ID, models.MoveDown))
	agents := map[string]Decider{
		shooter.ID: DeciderFunc(func(*models.Observation) (models.Action, error) {
			return models.ShootLeft, nil
		}),
	}
	res := advance(t, en, w, agents)

	assert.Equal(t, models.MaxHP, p.HP)
	assert.Len(t, eventsOf(res.Events, models.EventShotMiss), 1)
}

func TestAdvance_DeadEntityNeverActs(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("i", openGrid(t, 10))
	p := addEntity(t, w, models.PlayerID, models.KindPlayer, 1, 1)
	victim := addEntity(t, w, "agent_cautious_1", models.KindAgent, 1, 4)
	victim.HP = 1

	calls := 0
	agents := map[string]Decider{
		victim.ID: DeciderFunc(func(*models.Observation) (models.Action, error) {
			calls++
			return models.ShootUp, nil
		}),
	}

	require.NoError(t, w.Enqueue(p.ID, models.ShootDown))
	res := advance(t, en, w, agents)

	// The victim decided before dying but its queued shot never fired.
	assert.Equal(t, 1, calls)
	assert.False(t, victim.Alive)
	assert.Equal(t, models.MaxHP, p.HP)
	assert.Equal(t, models.MaxAmmo, victim.Ammo)
	assert.Empty(t, eventsOf(res.Events, models.EventShotMiss))

	advance(t, en, w, agents)
	assert.Equal(t, 1, calls)
	assert.Equal(t, models.Position{X: 1, Y: 4}, victim.Pos)
}

func TestAdvance_ObservationsCarrySound(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("j", openGrid(t, 12))
	p := addEntity(t, w, models.PlayerID, models.KindPlayer, 5, 5)
	near := addEntity(t, w, "agent_cautious_1", models.KindAgent, 7, 5)
	far := addEntity(t, w, "agent_explorer_2", models.KindAgent, 10, 10)

	require.NoError(t, w.Enqueue(p.ID, models.ShootUp))
	res := advance(t, en, w, nil)

	nearObs := res.Observations[near.ID]
	assert.Equal(t, models.SoundClick, nearObs.LastSound)
	require.Len(t, nearObs.Sounds, 1)
	assert.Equal(t, "west", nearObs.Sounds[0].Direction)
	assert.Empty(t, res.Observations[far.ID].LastSound)
	assert.Equal(t, 1, nearObs.Tick)
}

func TestAdvance_EmptyMagazineIsAudible(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("k", openGrid(t, 12))
	p := addEntity(t, w, models.PlayerID, models.KindPlayer, 5, 5)
	p.Ammo = 0
	p.LastShotTick = 0
	near := addEntity(t, w, "agent_cautious_1", models.KindAgent, 6, 5)

	require.NoError(t, w.Enqueue(p.ID, models.ShootRight))
	res := advance(t, en, w, nil)

	require.Len(t, eventsOf(res.Events, models.EventOutOfAmmo), 1)
	assert.Empty(t, eventsOf(res.Events, models.EventShotHit))
	assert.Equal(t, models.MaxHP, near.HP)
	assert.Equal(t, models.SoundClick, res.Observations[near.ID].LastSound)
	require.Len(t, res.Observations[near.ID].Sounds, 1)
	assert.Equal(t, "west", res.Observations[near.ID].Sounds[0].Direction)
}

func TestAdvance_ShotStopsAtFirstEntity(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("k", openGrid(t, 10))
	p := addEntity(t, w, models.PlayerID, models.KindPlayer, 1, 3)
	front := addEntity(t, w, "agent_aggressive_1", models.KindAgent, 4, 3)
	back := addEntity(t, w, "agent_aggressive_2", models.KindAgent, 6, 3)

	require.NoError(t, w.Enqueue(p.ID, models.ShootRight))
	advance(t, en, w, nil)

	assert.Equal(t, models.MaxHP-1, front.HP)
	assert.Equal(t, models.MaxHP, back.HP)
}

func TestObserve(t *testing.T) {
	en := New(DefaultRules(), nil)
	w := models.NewWorld("l", openGrid(t, 10))
	addEntity(t, w, models.PlayerID, models.KindPlayer, 3, 3)

	obs, err := en.Observe(w, models.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, models.VisionSize, obs.Vision.Size())
	assert.Equal(t, models.MarkSelf, obs.Vision.At(0, 0))
	assert.Empty(t, obs.LastSound)

	_, err = en.Observe(w, "ghost")
	assert.ErrorIs(t, err, models.ErrUnknownEntity)
}

func TestNewWorld_Placement(t *testing.T) {
	g := openGrid(t, 12)
	w, err := NewWorld(g, WorldOptions{Rand: rand.New(rand.NewSource(7))})
	require.NoError(t, err)

	assert.NotEmpty(t, w.GameID)
	ids := []string{}
	seen := map[models.Position]bool{}
	for _, e := range w.Entities() {
		ids = append(ids, e.ID)
		assert.True(t, g.IsWalkable(e.Pos))
		assert.NotEqual(t, g.Start(), e.Pos)
		assert.NotEqual(t, g.Exit(), e.Pos)
		assert.False(t, seen[e.Pos])
		seen[e.Pos] = true
	}
	assert.Equal(t, []string{models.PlayerID, "agent_aggressive_1", "agent_cautious_2", "agent_explorer_3"}, ids)

	again, err := NewWorld(g, WorldOptions{GameID: "fixed", Rand: rand.New(rand.NewSource(7))})
	require.NoError(t, err)
	assert.Equal(t, "fixed", again.GameID)
	for i, e := range again.Entities() {
		assert.Equal(t, w.Entities()[i].Pos, e.Pos)
	}
}

func TestNewWorld_NoRoom(t *testing.T) {
	g := gridFrom(t, "S#", "#E")
	_, err := NewWorld(g, WorldOptions{Rand: rand.New(rand.NewSource(1))})
	assert.ErrorIs(t, err, ErrNoPlacement)
}
