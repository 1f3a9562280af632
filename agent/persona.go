package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"catamaze/server/models"
)

var ErrInvalidPersona = errors.New("invalid persona")

// Behavior holds the per-persona action probabilities.
type Behavior struct {
	ShootProbability   float64 `yaml:"shoot_probability" json:"shoot_probability"`
	ChaseProbability   float64 `yaml:"chase_probability" json:"chase_probability"`
	ExploreProbability float64 `yaml:"explore_probability" json:"explore_probability"`
	FleeProbability    float64 `yaml:"flee_probability" json:"flee_probability"`
}

// DecisionWeights are the base scores of each action class.
type DecisionWeights struct {
	Attack  float64 `yaml:"attack" json:"attack"`
	Explore float64 `yaml:"explore" json:"explore"`
	Flee    float64 `yaml:"flee" json:"flee"`
}

type Thresholds struct {
	MinHPToAttack int `yaml:"min_hp_to_attack" json:"min_hp_to_attack"`
}

// Persona is the behaviour profile of an autonomous entity.
type Persona struct {
	Name            string          `yaml:"name" json:"name"`
	Description     string          `yaml:"description" json:"description"`
	Behavior        Behavior        `yaml:"behavior" json:"behavior"`
	DecisionWeights DecisionWeights `yaml:"decision_weights" json:"decision_weights"`
	Thresholds      Thresholds      `yaml:"thresholds" json:"thresholds"`
}

// DefaultPersona is used for unknown persona names and fills any field a
// persona file leaves out.
func DefaultPersona() Persona {
	return Persona{
		Name:        "default",
		Description: "Balanced agent",
		Behavior: Behavior{
			ShootProbability:   0.5,
			ChaseProbability:   0.5,
			ExploreProbability: 0.5,
			FleeProbability:    0.3,
		},
		DecisionWeights: DecisionWeights{Attack: 0.5, Explore: 0.5, Flee: 0.3},
		Thresholds:      Thresholds{MinHPToAttack: 2},
	}
}

var builtinPersonas = map[string]Persona{
	"aggressive": {
		Name:            "aggressive",
		Description:     "Aggressive agent that actively hunts the player",
		Behavior:        Behavior{ShootProbability: 0.7, ChaseProbability: 0.8, ExploreProbability: 0.2, FleeProbability: 0.1},
		DecisionWeights: DecisionWeights{Attack: 0.8, Explore: 0.3, Flee: 0.2},
		Thresholds:      Thresholds{MinHPToAttack: 1},
	},
	"cautious": {
		Name:            "cautious",
		Description:     "Cautious agent that avoids conflict",
		Behavior:        Behavior{ShootProbability: 0.2, ChaseProbability: 0.3, ExploreProbability: 0.7, FleeProbability: 0.6},
		DecisionWeights: DecisionWeights{Attack: 0.3, Explore: 0.6, Flee: 0.7},
		Thresholds:      Thresholds{MinHPToAttack: 3},
	},
	"explorer": {
		Name:            "explorer",
		Description:     "Explorer agent that focuses on map exploration",
		Behavior:        Behavior{ShootProbability: 0.1, ChaseProbability: 0.1, ExploreProbability: 0.9, FleeProbability: 0.3},
		DecisionWeights: DecisionWeights{Attack: 0.2, Explore: 0.9, Flee: 0.4},
		Thresholds:      Thresholds{MinHPToAttack: 3},
	},
}

// BuiltinPersona returns the bundled persona called name.
func BuiltinPersona(name string) (Persona, bool) {
	p, ok := builtinPersonas[name]
	return p, ok
}

// Validate checks that probabilities and weights lie in [0, 1] and the
// engagement threshold in [0, MaxHP].
func (p Persona) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"behavior.shoot_probability", p.Behavior.ShootProbability},
		{"behavior.chase_probability", p.Behavior.ChaseProbability},
		{"behavior.explore_probability", p.Behavior.ExploreProbability},
		{"behavior.flee_probability", p.Behavior.FleeProbability},
		{"decision_weights.attack", p.DecisionWeights.Attack},
		{"decision_weights.explore", p.DecisionWeights.Explore},
		{"decision_weights.flee", p.DecisionWeights.Flee},
	}
	for _, f := range fields {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%w: %s %s = %v outside [0, 1]", ErrInvalidPersona, p.Name, f.name, f.value)
		}
	}
	if t := p.Thresholds.MinHPToAttack; t < 0 || t > models.MaxHP {
		return fmt.Errorf("%w: %s thresholds.min_hp_to_attack = %d outside [0, %d]", ErrInvalidPersona, p.Name, t, models.MaxHP)
	}
	return nil
}

var personaExtensions = []string{".yaml", ".yml", ".json"}

// LoadPersona resolves name from <dir>/<name>.yaml, .yml or .json. Fields a
// file omits keep their default values. Without a file the built-in persona
// of that name is used, and failing that the default one.
func LoadPersona(dir, name string) (Persona, error) {
	if dir != "" {
		for _, ext := range personaExtensions {
			path := filepath.Join(dir, name+ext)
			data, err := os.ReadFile(path)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return Persona{}, fmt.Errorf("failed to read persona file %s: %w", path, err)
			}
			return decodePersona(name, ext, data)
		}
	}

	if p, ok := BuiltinPersona(name); ok {
		return p, nil
	}
	p := DefaultPersona()
	p.Name = name
	return p, nil
}

func decodePersona(name, ext string, data []byte) (Persona, error) {
	p := DefaultPersona()
	if b, ok := BuiltinPersona(name); ok {
		p = b
	}

	var err error
	if ext == ".json" {
		err = json.Unmarshal(data, &p)
	} else {
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return Persona{}, fmt.Errorf("failed to parse persona %s: %w", name, err)
	}
	if p.Name == "" || p.Name == "default" {
		p.Name = name
	}
	if err := p.Validate(); err != nil {
		return Persona{}, err
	}
	return p, nil
}
