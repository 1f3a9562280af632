package agent

import (
	"math"
	"math/rand"

	"catamaze/server/models"
)

const (
	DefaultEpsilon     = 0.1
	DefaultTemperature = 1.0
	minTemperature     = 0.1
	minScore           = 0.01
)

// Policy scores legal actions from a persona and samples one of them.
type Policy struct {
	epsilon     float64
	temperature float64
	rng         *rand.Rand
}

// NewPolicy creates a policy drawing from rng. A nil rng is seeded from the
// global source.
func NewPolicy(rng *rand.Rand) *Policy {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Policy{epsilon: DefaultEpsilon, temperature: DefaultTemperature, rng: rng}
}

// SetEpsilon sets the uniform exploration rate, clamped to [0, 1].
func (p *Policy) SetEpsilon(eps float64) { p.epsilon = math.Max(0, math.Min(1, eps)) }

// SetTemperature sets the softmax temperature, never below 0.1.
func (p *Policy) SetTemperature(t float64) { p.temperature = math.Max(minTemperature, t) }

func (p *Policy) Epsilon() float64     { return p.epsilon }
func (p *Policy) Temperature() float64 { return p.temperature }

// Scores returns one score per entry of valid, each at least 0.01.
func (p *Policy) Scores(features []float64, valid []models.Action, persona Persona) []float64 {
	hp, ammo := 0.5, 0.5
	if len(features) > SelfOffset+1 {
		hp, ammo = features[SelfOffset], features[SelfOffset+1]
	}
	w := persona.DecisionWeights
	engage := float64(persona.Thresholds.MinHPToAttack) / models.MaxHP

	scores := make([]float64, len(valid))
	for i, a := range valid {
		var s float64
		switch {
		case a.IsMove():
			s = w.Explore
			if hp > 0.6 {
				s += 0.3
			} else {
				s += w.Flee
			}
		case a.IsShoot():
			if ammo > 0 {
				s = w.Attack + persona.Behavior.ShootProbability
			}
			if hp < engage {
				s *= 0.5
			}
		default:
			s = 0.1
			if ammo < 0.3 {
				s += 0.4
			}
		}
		scores[i] = math.Max(s, minScore)
	}
	return scores
}

// Select picks an action among valid. With no legal action it waits.
func (p *Policy) Select(features []float64, valid []models.Action, persona Persona) models.Action {
	if len(valid) == 0 {
		return models.Wait
	}
	if p.rng.Float64() < p.epsilon {
		return valid[p.rng.Intn(len(valid))]
	}

	probs := softmax(p.Scores(features, valid, persona), p.temperature)
	r := p.rng.Float64()
	var acc float64
	for i, pr := range probs {
		acc += pr
		if r < acc {
			return valid[i]
		}
	}
	return valid[len(valid)-1]
}

// Distribution returns the softmax probabilities Select samples from when it
// does not explore.
func (p *Policy) Distribution(features []float64, valid []models.Action, persona Persona) []float64 {
	return softmax(p.Scores(features, valid, persona), p.temperature)
}

func softmax(scores []float64, temperature float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	peak := scores[0]
	for _, s := range scores[1:] {
		peak = math.Max(peak, s)
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp((s - peak) / temperature)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
