package agent

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catamaze/server/models"
)

func features(hp, ammo float64) []float64 {
	f := make([]float64, FeatureDim)
	f[SelfOffset], f[SelfOffset+1] = hp, ammo
	return f
}

func TestPolicy_Scores(t *testing.T) {
	p := NewPolicy(rand.New(rand.NewSource(1)))
	aggressive, _ := BuiltinPersona("aggressive")
	valid := []models.Action{models.MoveUp, models.ShootLeft, models.Wait}

	healthy := p.Scores(features(1, 1), valid, aggressive)
	assert.InDeltaSlice(t, []float64{0.6, 1.5, 0.1}, healthy, 1e-9)

	hurt := p.Scores(features(0.4, 0), valid, aggressive)
	assert.InDeltaSlice(t, []float64{0.5, 0.01, 0.5}, hurt, 1e-9)

	cautious, _ := BuiltinPersona("cautious")
	// Below the engagement threshold shooting is halved.
	low := p.Scores(features(0.4, 1), valid, cautious)
	assert.InDeltaSlice(t, []float64{0.6 + 0.7, (0.3 + 0.2) / 2, 0.1}, low, 1e-9)
}

func TestPolicy_DistributionAndTemperature(t *testing.T) {
	p := NewPolicy(rand.New(rand.NewSource(1)))
	persona, _ := BuiltinPersona("aggressive")
	valid := models.AllActions

	probs := p.Distribution(features(1, 1), valid, persona)
	var sum float64
	for _, pr := range probs {
		assert.Greater(t, pr, 0.0)
		sum += pr
	}
	assert.InDelta(t, 1, sum, 1e-9)

	p.SetTemperature(100)
	flat := p.Distribution(features(1, 1), valid, persona)
	assert.Less(t, flat[4]-flat[8], probs[4]-probs[8])

	p.SetTemperature(0)
	assert.Equal(t, 0.1, p.Temperature())
	p.SetEpsilon(3)
	assert.Equal(t, 1.0, p.Epsilon())
}

func TestPolicy_SeededSelectionIsReproducible(t *testing.T) {
	persona, _ := BuiltinPersona("explorer")
	run := func() []models.Action {
		p := NewPolicy(rand.New(rand.NewSource(42)))
		var out []models.Action
		for i := 0; i < 50; i++ {
			out = append(out, p.Select(features(0.8, 0.6), models.AllActions, persona))
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestPolicy_SelectFollowsDistribution(t *testing.T) {
	p := NewPolicy(rand.New(rand.NewSource(7)))
	p.SetEpsilon(0)
	persona, _ := BuiltinPersona("aggressive")
	valid := []models.Action{models.MoveUp, models.ShootLeft, models.Wait}
	f := features(1, 1)

	want := p.Distribution(f, valid, persona)
	const n = 20000
	counts := map[models.Action]int{}
	for i := 0; i < n; i++ {
		counts[p.Select(f, valid, persona)]++
	}
	for i, a := range valid {
		assert.InDelta(t, want[i], float64(counts[a])/n, 0.02, "action %s", a)
	}
}

func TestPolicy_SelectOnlyReturnsLegalActions(t *testing.T) {
	p := NewPolicy(rand.New(rand.NewSource(3)))
	p.SetEpsilon(0.5)
	persona := DefaultPersona()
	valid := []models.Action{models.MoveDown, models.Wait}
	for i := 0; i < 200; i++ {
		require.Contains(t, valid, p.Select(features(0.2, 0), valid, persona))
	}
	assert.Equal(t, models.Wait, p.Select(nil, nil, persona))
}
