package engine

import "catamaze/server/models"

// Rules holds the tunable constants of a game.
type Rules struct {
	MaxHP             int
	MaxAmmo           int
	AmmoRecoveryTicks int
	BulletDamage      int
	BulletRange       int
	VisionSize        int
	SoundRange        int
}

// DefaultRules returns the reference deployment settings.
func DefaultRules() Rules {
	return Rules{
		MaxHP:             models.MaxHP,
		MaxAmmo:           models.MaxAmmo,
		AmmoRecoveryTicks: models.AmmoRecoveryTicks,
		BulletDamage:      models.BulletDamage,
		BulletRange:       models.BulletRange,
		VisionSize:        models.VisionSize,
		SoundRange:        models.SoundRange,
	}
}

// ApplyDamage subtracts amount from hp, never going below zero.
func (r Rules) ApplyDamage(hp, amount int) int {
	hp -= amount
	if hp < 0 {
		return 0
	}
	if hp > r.MaxHP {
		return r.MaxHP
	}
	return hp
}

// IsAlive reports whether hp keeps an entity alive.
func IsAlive(hp int) bool { return hp > 0 }

// CanShoot reports whether ammo allows a shot.
func CanShoot(ammo int) bool { return ammo > 0 }

// ConsumeAmmo spends one round. An empty magazine stays empty.
func ConsumeAmmo(ammo int) int {
	if !CanShoot(ammo) {
		return ammo
	}
	return ammo - 1
}

// RecoverAmmo grants one round once AmmoRecoveryTicks have elapsed since
// lastShot. The reference tick advances by the interval rather than to tick,
// so recovery stays phase-locked to the original shot.
func (r Rules) RecoverAmmo(ammo, tick, lastShot int) (int, int) {
	if ammo >= r.MaxAmmo {
		return ammo, lastShot
	}
	if tick-lastShot < r.AmmoRecoveryTicks {
		return ammo, lastShot
	}
	return ammo + 1, lastShot + r.AmmoRecoveryTicks
}
