package models

// Reference deployment settings.
const (
	MapSize    = 50
	VisionSize = 5
	SoundRange = 3 // 7x7 neighbourhood

	InitialHP = 5
	MaxHP     = 5

	InitialAmmo       = 3
	MaxAmmo           = 3
	AmmoRecoveryTicks = 2

	BulletDamage = 1
	BulletRange  = 50

	MaxConcurrentGames = 50
)

// PlayerID is the fixed id of the player-controlled entity.
const PlayerID = "player"

// SoundClick is the cue a listener receives when a shot is fired within earshot.
const SoundClick = "*click*"
