package services

import (
	"log"
	"math/rand"
	"sync"

	"catamaze/server/agent"
	"catamaze/server/engine"
	"catamaze/server/models"
)

// AgentPool holds the heuristic agents of every loaded game. Personas are
// resolved once per name and shared.
type AgentPool struct {
	personaDir string
	width      int
	height     int
	logger     *log.Logger

	personas map[string]agent.Persona
	games    map[string]map[string]*agent.Heuristic
	rng      *rand.Rand
	mutex    sync.Mutex
}

func NewAgentPool(personaDir string, width, height int, seed int64, logger *log.Logger) *AgentPool {
	return &AgentPool{
		personaDir: personaDir,
		width:      width,
		height:     height,
		logger:     logger,
		personas:   make(map[string]agent.Persona),
		games:      make(map[string]map[string]*agent.Heuristic),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// GetOrCreate returns the agent driving entity e of gameID.
func (ap *AgentPool) GetOrCreate(gameID string, e *models.Entity) *agent.Heuristic {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	game, exists := ap.games[gameID]
	if !exists {
		game = make(map[string]*agent.Heuristic)
		ap.games[gameID] = game
	}
	if h, exists := game[e.ID]; exists {
		return h
	}

	h := agent.NewHeuristic(e.ID, ap.persona(e.Persona), agent.Options{
		Width:  ap.width,
		Height: ap.height,
		Rand:   rand.New(rand.NewSource(ap.rng.Int63())),
	})
	game[e.ID] = h
	return h
}

// persona resolves name, falling back to the default persona when its file
// is unusable. Callers hold the mutex.
func (ap *AgentPool) persona(name string) agent.Persona {
	if p, exists := ap.personas[name]; exists {
		return p
	}
	p, err := agent.LoadPersona(ap.personaDir, name)
	if err != nil {
		ap.logger.Printf("Persona %s unusable, using defaults: %v", name, err)
		p = agent.DefaultPersona()
		p.Name = name
	}
	ap.personas[name] = p
	return p
}

// Deciders returns the agents of every live autonomous entity of w.
func (ap *AgentPool) Deciders(w *models.World) map[string]*agent.Heuristic {
	out := make(map[string]*agent.Heuristic)
	for _, e := range w.LiveEntities() {
		if e.IsPlayer() {
			continue
		}
		out[e.ID] = ap.GetOrCreate(w.GameID, e)
	}
	return out
}

// Release forgets the agents of gameID.
func (ap *AgentPool) Release(gameID string) {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	delete(ap.games, gameID)
}

func asDeciders(agents map[string]*agent.Heuristic) map[string]engine.Decider {
	out := make(map[string]engine.Decider, len(agents))
	for id, h := range agents {
		out[id] = h
	}
	return out
}
