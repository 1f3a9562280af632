package handlers

import (
	"log"
	"sync"

	"github.com/zyedidia/generic/mapset"
)

// ClientManager tracks which clients watch which games
type ClientManager struct {
	watchers map[string]mapset.Set[*ClientHandler] // game id to watching clients
	mutex    sync.RWMutex
}

// NewClientManager creates a new client manager
func NewClientManager() *ClientManager {
	return &ClientManager{
		watchers: make(map[string]mapset.Set[*ClientHandler]),
	}
}

// Watch subscribes client to the updates of gameID
func (cm *ClientManager) Watch(gameID string, client *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	set, exists := cm.watchers[gameID]
	if !exists {
		set = mapset.New[*ClientHandler]()
		cm.watchers[gameID] = set
	}
	set.Put(client)
}

// Unwatch removes client from the watchers of gameID
func (cm *ClientManager) Unwatch(gameID string, client *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cm.unwatch(gameID, client)
}

func (cm *ClientManager) unwatch(gameID string, client *ClientHandler) {
	set, exists := cm.watchers[gameID]
	if !exists {
		return
	}
	set.Remove(client)
	if set.Size() == 0 {
		delete(cm.watchers, gameID)
	}
}

// RemoveClient drops every subscription of client
func (cm *ClientManager) RemoveClient(client *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	for gameID := range cm.watchers {
		cm.unwatch(gameID, client)
	}
}

// Watchers returns the number of clients watching gameID
func (cm *ClientManager) Watchers(gameID string) int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	if set, exists := cm.watchers[gameID]; exists {
		return set.Size()
	}
	return 0
}

// BroadcastToWatchers sends msg to every client watching gameID
func (cm *ClientManager) BroadcastToWatchers(gameID string, msg interface{}) {
	cm.mutex.RLock()
	var clients []*ClientHandler
	if set, exists := cm.watchers[gameID]; exists {
		set.Each(func(c *ClientHandler) { clients = append(clients, c) })
	}
	cm.mutex.RUnlock()

	for _, client := range clients {
		if err := client.conn.SendMessage(msg); err != nil {
			log.Printf("Error broadcasting game %s to %s: %v", gameID, client.conn.RemoteAddr(), err)
		}
	}
}
