package agent

import "catamaze/server/models"

// Reward weights.
const (
	RewardAlive       = 0.01
	RewardHPGain      = 1.0
	RewardHPLoss      = -2.0
	RewardDeath       = -10.0
	RewardHitEnemy    = 3.0
	RewardKillEnemy   = 5.0
	RewardGotHit      = -2.0
	RewardShootMiss   = -0.1
	RewardAmmoGain    = 0.5
	RewardAmmoRecover = 0.3
	RewardPickupItem  = 1.0
	RewardExploreNew  = 0.5
	RewardRevisit     = -0.05
	RewardWin         = 100.0
	RewardLoss        = -50.0
)

// RewardWeights is a tunable copy of the reward constants.
type RewardWeights struct {
	Alive       float64 `json:"alive"`
	HPGain      float64 `json:"hp_gain"`
	HPLoss      float64 `json:"hp_loss"`
	Death       float64 `json:"death"`
	HitEnemy    float64 `json:"hit_enemy"`
	KillEnemy   float64 `json:"kill_enemy"`
	GotHit      float64 `json:"got_hit"`
	ShootMiss   float64 `json:"shoot_miss"`
	AmmoGain    float64 `json:"ammo_gain"`
	AmmoRecover float64 `json:"ammo_recover"`
	PickupItem  float64 `json:"pickup_item"`
	ExploreNew  float64 `json:"explore_new"`
	Revisit     float64 `json:"revisit"`
	Win         float64 `json:"win"`
	Loss        float64 `json:"loss"`
}

func DefaultRewardWeights() RewardWeights {
	return RewardWeights{
		Alive:       RewardAlive,
		HPGain:      RewardHPGain,
		HPLoss:      RewardHPLoss,
		Death:       RewardDeath,
		HitEnemy:    RewardHitEnemy,
		KillEnemy:   RewardKillEnemy,
		GotHit:      RewardGotHit,
		ShootMiss:   RewardShootMiss,
		AmmoGain:    RewardAmmoGain,
		AmmoRecover: RewardAmmoRecover,
		PickupItem:  RewardPickupItem,
		ExploreNew:  RewardExploreNew,
		Revisit:     RewardRevisit,
		Win:         RewardWin,
		Loss:        RewardLoss,
	}
}

// Outcome is the terminal status of one entity after a tick.
type Outcome struct {
	Done bool
	Won  bool
	Lost bool
}

// OutcomeFor derives the outcome of entity id from w. An agent wins when the
// player dies while it is still alive and loses when it dies or the player
// escapes.
func OutcomeFor(w *models.World, id string) Outcome {
	e, ok := w.Entity(id)
	if !ok {
		return Outcome{}
	}
	var o Outcome
	o.Done = w.GameOver || !e.Alive
	if e.IsPlayer() {
		o.Won = e.Won
		o.Lost = !e.Alive
		return o
	}
	playerWon := w.GameOver && w.WinnerID == models.PlayerID
	playerDead := w.GameOver && !playerWon
	o.Won = e.Alive && playerDead
	o.Lost = !e.Alive || playerWon
	return o
}

// Signals are the facts of one transition the reward is computed from.
type Signals struct {
	Survived      bool `json:"survived"`
	HPDelta       int  `json:"hp_delta"`
	Died          bool `json:"died"`
	Hits          int  `json:"hits"`
	Kills         int  `json:"kills"`
	TimesHit      int  `json:"times_hit"`
	Misses        int  `json:"misses"`
	AmmoGained    int  `json:"ammo_gained"`
	AmmoRecovered int  `json:"ammo_recovered"`
	ItemPickups   int  `json:"item_pickups"`
	NewCells      int  `json:"new_cells"`
	Revisits      int  `json:"revisits"`
	Won           bool `json:"won"`
	Lost          bool `json:"lost"`
}

// Calculate scores s with the default weights.
func Calculate(s Signals) float64 { return DefaultRewardWeights().Calculate(s) }

func (w RewardWeights) Calculate(s Signals) float64 {
	var r float64
	if s.Survived {
		r += w.Alive
	}
	if s.HPDelta > 0 {
		r += w.HPGain * float64(s.HPDelta)
	} else if s.HPDelta < 0 {
		r += w.HPLoss * float64(-s.HPDelta)
	}
	if s.Died {
		r += w.Death
	}
	r += w.HitEnemy * float64(s.Hits)
	r += w.KillEnemy * float64(s.Kills)
	r += w.GotHit * float64(s.TimesHit)
	r += w.ShootMiss * float64(s.Misses)
	r += w.AmmoGain * float64(s.AmmoGained)
	r += w.AmmoRecover * float64(s.AmmoRecovered)
	r += w.PickupItem * float64(s.ItemPickups)
	r += w.ExploreNew * float64(s.NewCells)
	r += w.Revisit * float64(s.Revisits)
	if s.Won {
		r += w.Win
	}
	if s.Lost {
		r += w.Loss
	}
	return r
}

// SignalsFor extracts the signals of entityID from a tick. prev is the
// observation the entity decided on; next is nil when it did not survive the
// tick. A hit that kills counts as a kill only.
func SignalsFor(entityID string, prev, next *models.Observation, events []models.Event, outcome Outcome) Signals {
	s := Signals{
		Survived: !outcome.Done,
		Won:      outcome.Won,
		Lost:     outcome.Lost,
	}

	nextHP, nextAmmo := 0, 0
	if next != nil {
		nextHP, nextAmmo = next.HP, next.Ammo
	}
	if prev != nil {
		s.HPDelta = nextHP - prev.HP
	}

	killed := map[string]bool{}
	for _, ev := range events {
		if ev.Type == models.EventDied && ev.OtherID == entityID {
			killed[ev.EntityID] = true
		}
	}

	for _, ev := range events {
		switch ev.Type {
		case models.EventShotHit:
			if ev.EntityID == entityID {
				if killed[ev.OtherID] {
					s.Kills++
				} else {
					s.Hits++
				}
			}
			if ev.OtherID == entityID {
				s.TimesHit++
			}
		case models.EventShotMiss:
			if ev.EntityID == entityID {
				s.Misses++
			}
		case models.EventDied:
			if ev.EntityID == entityID {
				s.Died = true
			}
		case models.EventAmmoRecovered:
			if ev.EntityID == entityID {
				s.AmmoRecovered++
			}
		case models.EventMoved:
			if ev.EntityID != entityID {
				continue
			}
			if ev.NewCell {
				s.NewCells++
			} else {
				s.Revisits++
			}
		}
	}

	if prev != nil && next != nil {
		spent := 0
		for _, ev := range events {
			if ev.EntityID == entityID && (ev.Type == models.EventShotHit || ev.Type == models.EventShotMiss) {
				spent++
			}
		}
		if gained := nextAmmo - prev.Ammo + spent - s.AmmoRecovered; gained > 0 {
			s.AmmoGained = gained
		}
	}
	return s
}
