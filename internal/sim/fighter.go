package sim

import (
	"github.com/cory-johannsen/motioncombat/internal/game/ai"
	"github.com/cory-johannsen/motioncombat/internal/game/core"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
	"github.com/cory-johannsen/motioncombat/internal/game/reaction"
)

// DefaultHealth is the starting health of a fighter whose spec omits it.
const DefaultHealth = 100.0

// MaxStamina is the stamina ceiling every fighter starts at.
const MaxStamina = 100.0

// FighterSpec describes one combatant entering a world.
type FighterSpec struct {
	Name    string
	Loadout string
	Pose    geom.Transform
	// Health is the starting and maximum health; 0 selects DefaultHealth.
	Health float64
}

// Fighter is one simulated combatant: an actor plus the combat components
// wired to it.
type Fighter struct {
	id        string
	loadout   string
	pose      geom.Transform
	velocity  geom.Vec3
	health    float64
	maxHealth float64
	stamina   float64
	removed   bool

	animator  *Animator
	hits      *HitDetector
	core      *core.Core
	defense   *core.Defense
	responder *reaction.Responder
	exec      *ai.Executor
}

// ID returns the fighter's name.
func (f *Fighter) ID() string { return f.id }

// Transform returns the fighter's pose.
func (f *Fighter) Transform() geom.Transform { return f.pose }

// Valid reports whether the fighter is still standing.
func (f *Fighter) Valid() bool { return f != nil && !f.removed && f.health > 0 }

// Loadout returns the content loadout the fighter was built from.
func (f *Fighter) Loadout() string { return f.loadout }

// Health returns the remaining health.
func (f *Fighter) Health() float64 { return f.health }

// HealthPercent returns health as a percentage of the maximum.
func (f *Fighter) HealthPercent() float64 {
	if f.maxHealth <= 0 {
		return 0
	}
	return max(f.health, 0) / f.maxHealth * 100
}

// Stamina returns the current stamina.
func (f *Fighter) Stamina() float64 { return f.stamina }

// Core returns the fighter's combat core.
func (f *Fighter) Core() *core.Core { return f.core }

// Animator returns the fighter's clip player.
func (f *Fighter) Animator() *Animator { return f.animator }

// Executor returns the fighter's AI executor.
func (f *Fighter) Executor() *ai.Executor { return f.exec }

// damage subtracts amount from health and reports whether the fighter fell.
func (f *Fighter) damage(amount float64) bool {
	if amount <= 0 || !f.Valid() {
		return false
	}
	f.health -= amount
	return f.health <= 0
}

func (f *Fighter) spend(amount float64) {
	f.stamina = max(f.stamina-amount, 0)
}

func (f *Fighter) recover(amount float64) {
	f.stamina = min(f.stamina+amount, MaxStamina)
}

func (f *Fighter) close() {
	if f.exec != nil {
		f.exec.Close()
	}
	if f.core != nil {
		f.core.Close()
	}
	f.removed = true
}
