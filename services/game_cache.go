package services

import (
	"fmt"
	"sync"

	"catamaze/server/models"
	"catamaze/server/persistence"
)

// gameSlot owns one loaded world. Its mutex serialises every operation on
// that game.
type gameSlot struct {
	mutex sync.Mutex
	world *models.World
}

// GameCache keeps loaded games in memory so independent games can be
// advanced concurrently.
type GameCache struct {
	store      persistence.Storage
	slots      map[string]*gameSlot
	cacheMutex sync.RWMutex
}

func NewGameCache(store persistence.Storage) *GameCache {
	return &GameCache{
		store: store,
		slots: make(map[string]*gameSlot),
	}
}

// get returns the slot of gameID, loading the game from storage on first use.
func (gc *GameCache) get(gameID string) (*gameSlot, error) {
	gc.cacheMutex.RLock()
	slot, exists := gc.slots[gameID]
	gc.cacheMutex.RUnlock()

	if exists {
		return slot, nil
	}
	return gc.load(gameID)
}

func (gc *GameCache) load(gameID string) (*gameSlot, error) {
	gc.cacheMutex.Lock()
	defer gc.cacheMutex.Unlock()

	// Check again if the game was loaded by another goroutine
	if slot, exists := gc.slots[gameID]; exists {
		return slot, nil
	}

	snap, err := gc.store.LoadGame(gameID)
	if err != nil {
		return nil, err
	}
	world, err := models.WorldFromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game %s: %w", gameID, err)
	}

	slot := &gameSlot{world: world}
	gc.slots[gameID] = slot
	return slot, nil
}

// put registers a freshly created world.
func (gc *GameCache) put(w *models.World) {
	gc.cacheMutex.Lock()
	defer gc.cacheMutex.Unlock()

	gc.slots[w.GameID] = &gameSlot{world: w}
}

// With runs fn with exclusive access to the world of gameID.
func (gc *GameCache) With(gameID string, fn func(w *models.World) error) error {
	slot, err := gc.get(gameID)
	if err != nil {
		return err
	}
	slot.mutex.Lock()
	defer slot.mutex.Unlock()

	return fn(slot.world)
}

// Evict drops gameID from memory. The stored copy is untouched.
func (gc *GameCache) Evict(gameID string) {
	gc.cacheMutex.Lock()
	defer gc.cacheMutex.Unlock()

	delete(gc.slots, gameID)
}

// Len returns the number of games held in memory.
func (gc *GameCache) Len() int {
	gc.cacheMutex.RLock()
	defer gc.cacheMutex.RUnlock()

	return len(gc.slots)
}
