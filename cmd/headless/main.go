package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sort"

	"catamaze/server/agent"
	"catamaze/server/engine"
	"catamaze/server/maps"
	"catamaze/server/models"
)

type gameStats struct {
	index    int
	seed     int64
	ticks    int
	winnerID string
	over     bool
	deaths   []string
	hits     int
	misses   int
	rewards  map[string]float64 // persona to episode reward
}

func main() {
	var games int
	var ticks int
	var seedBase int64
	var mapFile string
	var mapSize int
	var personaDir string
	var randomPlayer bool

	flag.IntVar(&games, "games", 10, "number of simulated games")
	flag.IntVar(&ticks, "ticks", 500, "tick limit per game")
	flag.Int64Var(&seedBase, "seed", 42, "RNG seed of game 1, incremented per game")
	flag.StringVar(&mapFile, "map", "maps/map1.txt", "maze file")
	flag.IntVar(&mapSize, "size", models.MapSize, "maze side length")
	flag.StringVar(&personaDir, "personas", "personas", "persona directory")
	flag.BoolVar(&randomPlayer, "random-player", true, "player moves at random instead of waiting")
	flag.Parse()

	if games <= 0 || ticks <= 0 {
		fmt.Println("error: -games and -ticks must be > 0")
		return
	}

	grid, err := maps.LoadFile(mapFile, mapSize)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless CataMaze Report ===\n")
	fmt.Printf("map=%s games=%d ticks=%d seed=%d random_player=%t\n\n", mapFile, games, ticks, seedBase, randomPlayer)

	all := make([]gameStats, 0, games)
	for i := 0; i < games; i++ {
		stats, err := runGame(i+1, seedBase+int64(i), grid, ticks, personaDir, randomPlayer)
		if err != nil {
			fmt.Printf("game %d: error: %v\n", i+1, err)
			continue
		}
		all = append(all, stats)
		printGame(stats)
	}
	printAggregate(all)
}

func runGame(index int, seed int64, grid *models.Grid, maxTicks int, personaDir string, randomPlayer bool) (gameStats, error) {
	rng := rand.New(rand.NewSource(seed))
	w, err := engine.NewWorld(grid, engine.WorldOptions{Rand: rand.New(rand.NewSource(rng.Int63()))})
	if err != nil {
		return gameStats{}, err
	}
	en := engine.New(engine.DefaultRules(), nil)

	agents := make(map[string]*agent.Heuristic)
	deciders := make(map[string]engine.Decider)
	for _, e := range w.Entities() {
		if e.IsPlayer() {
			continue
		}
		persona, err := agent.LoadPersona(personaDir, e.Persona)
		if err != nil {
			fmt.Printf("persona %s unusable, using defaults: %v\n", e.Persona, err)
			persona = agent.DefaultPersona()
			persona.Name = e.Persona
		}
		h := agent.NewHeuristic(e.ID, persona, agent.Options{
			Width:  grid.Width(),
			Height: grid.Height(),
			Rand:   rand.New(rand.NewSource(rng.Int63())),
		})
		agents[e.ID] = h
		deciders[e.ID] = h
	}

	stats := gameStats{index: index, seed: seed, rewards: make(map[string]float64)}
	moves := []models.Action{models.MoveUp, models.MoveDown, models.MoveLeft, models.MoveRight}
	for !w.GameOver && w.Tick < maxTicks {
		if randomPlayer {
			if err := w.Enqueue(models.PlayerID, moves[rng.Intn(len(moves))]); err != nil {
				return stats, err
			}
		}
		res, err := en.Advance(w, deciders)
		if err != nil {
			return stats, err
		}
		for _, ev := range res.Events {
			switch ev.Type {
			case models.EventShotHit:
				stats.hits++
			case models.EventShotMiss:
				stats.misses++
			case models.EventDied:
				stats.deaths = append(stats.deaths, ev.EntityID)
			}
		}
		for id, h := range agents {
			h.Observe(res.Observations[id], res.Events, agent.OutcomeFor(w, id))
		}
	}

	stats.ticks = w.Tick
	stats.over = w.GameOver
	stats.winnerID = w.WinnerID
	for _, h := range agents {
		stats.rewards[h.Persona().Name] += h.EpisodeReward()
	}
	return stats, nil
}

func outcome(s gameStats) string {
	switch {
	case !s.over:
		return "timeout"
	case s.winnerID == models.PlayerID:
		return "player_won"
	default:
		return "player_died"
	}
}

func printGame(s gameStats) {
	fmt.Printf("game %d seed=%d outcome=%s ticks=%d hits=%d misses=%d deaths=%v\n",
		s.index, s.seed, outcome(s), s.ticks, s.hits, s.misses, s.deaths)
}

func printAggregate(all []gameStats) {
	if len(all) == 0 {
		fmt.Println("\nno completed games")
		return
	}

	outcomes := make(map[string]int)
	rewards := make(map[string]float64)
	totalTicks := 0
	for _, s := range all {
		outcomes[outcome(s)]++
		totalTicks += s.ticks
		for persona, r := range s.rewards {
			rewards[persona] += r
		}
	}

	fmt.Printf("\n=== Aggregate (%d games) ===\n", len(all))
	fmt.Printf("player_won=%d player_died=%d timeout=%d avg_ticks=%.1f\n",
		outcomes["player_won"], outcomes["player_died"], outcomes["timeout"], float64(totalTicks)/float64(len(all)))

	personas := make([]string, 0, len(rewards))
	for p := range rewards {
		personas = append(personas, p)
	}
	sort.Strings(personas)
	for _, p := range personas {
		fmt.Printf("  %-12s avg_episode_reward=%.2f\n", p, rewards[p]/float64(len(all)))
	}
}
