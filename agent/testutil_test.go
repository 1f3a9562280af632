package agent

import "catamaze/server/models"

var openVision = models.Vision{
	".....",
	".....",
	"..@..",
	".....",
	".....",
}

func observation(x, y, hp, ammo int, vision models.Vision) *models.Observation {
	return &models.Observation{
		EntityID: "agent_aggressive_1",
		HP:       hp,
		Ammo:     ammo,
		Position: models.Position{X: x, Y: y},
		Vision:   vision,
		Alive:    hp > 0,
	}
}
