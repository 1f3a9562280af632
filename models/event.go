package models

// EventType names something that happened during a tick.
type EventType string

const (
	EventMoved          EventType = "moved"
	EventBlocked        EventType = "blocked"
	EventShotHit        EventType = "shot_hit"
	EventShotMiss       EventType = "shot_miss"
	EventOutOfAmmo      EventType = "out_of_ammo"
	EventDied           EventType = "died"
	EventAmmoRecovered  EventType = "ammo_recovered"
	EventDecisionFailed EventType = "decision_failed"
	EventPlayerWon      EventType = "player_won"
	EventPlayerDied     EventType = "player_died"
)

// Event is one entry of a tick's event list.
//
// For shot_hit, EntityID is the shooter and OtherID the target. For died,
// EntityID is the victim and OtherID the shooter.
type Event struct {
	Tick     int       `json:"tick"`
	Type     EventType `json:"type"`
	EntityID string    `json:"entity_id,omitempty"`
	OtherID  string    `json:"other_id,omitempty"`
	Position Position  `json:"position"`
	Value    int       `json:"value,omitempty"`
	NewCell  bool      `json:"new_cell,omitempty"`
	Message  string    `json:"message"`
}

func (e Event) String() string { return e.Message }
