// Package agent implements the autonomous entities: an action mask, a
// feature encoder, a persona-weighted heuristic policy and the reward
// function that scores their transitions.
package agent

import (
	"errors"
	"math/rand"

	"catamaze/server/engine"
	"catamaze/server/models"
)

var ErrNoObservation = errors.New("no observation to decide on")

// Options configures a Heuristic agent.
type Options struct {
	Width   int // map width, MapSize when zero
	Height  int
	Rand    *rand.Rand
	Weights *RewardWeights
}

// Heuristic is an autonomous entity driven by a fixed scoring policy.
// It is not safe for concurrent use.
type Heuristic struct {
	id      string
	persona Persona
	mask    Mask
	encoder Encoder
	policy  *Policy
	weights RewardWeights

	lastObs       *models.Observation
	lastAction    models.Action
	lastReward    float64
	episodeReward float64
}

var _ engine.Decider = (*Heuristic)(nil)

func NewHeuristic(id string, persona Persona, opts Options) *Heuristic {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = models.MapSize, models.MapSize
	}
	weights := DefaultRewardWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	return &Heuristic{
		id:      id,
		persona: persona,
		mask:    Mask{Width: opts.Width, Height: opts.Height},
		encoder: Encoder{Width: opts.Width, Height: opts.Height},
		policy:  NewPolicy(opts.Rand),
		weights: weights,
	}
}

func (h *Heuristic) ID() string                { return h.id }
func (h *Heuristic) Persona() Persona          { return h.persona }
func (h *Heuristic) Policy() *Policy           { return h.policy }
func (h *Heuristic) LastAction() models.Action { return h.lastAction }

// Decide picks the next action for obs and remembers the pair for the
// following call to Observe.
func (h *Heuristic) Decide(obs *models.Observation) (models.Action, error) {
	if obs == nil {
		return "", ErrNoObservation
	}
	features := h.encoder.Encode(obs)
	action := h.policy.Select(features, h.mask.Valid(obs), h.persona)

	h.lastObs = obs
	h.lastAction = action
	return action, nil
}

// Observe scores the transition from the last decided observation to next
// and adds it to the episode total. next is nil when the entity died. It
// returns the transition reward and the signals it was computed from.
func (h *Heuristic) Observe(next *models.Observation, events []models.Event, outcome Outcome) (float64, Signals) {
	if h.lastObs == nil {
		return 0, Signals{}
	}
	signals := SignalsFor(h.id, h.lastObs, next, events, outcome)
	reward := h.weights.Calculate(signals)

	h.lastReward = reward
	h.episodeReward += reward
	h.lastObs = next
	if outcome.Done {
		h.lastObs = nil
	}
	return reward, signals
}

func (h *Heuristic) LastReward() float64    { return h.lastReward }
func (h *Heuristic) EpisodeReward() float64 { return h.episodeReward }

// Reset forgets the episode.
func (h *Heuristic) Reset() {
	h.lastObs = nil
	h.lastAction = ""
	h.lastReward = 0
	h.episodeReward = 0
}
