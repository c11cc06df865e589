package ai

import "math"

// CombatantState captures an opponent's combat-relevant state at planning time.
type CombatantState struct {
	ID            string
	Distance      float64
	HealthPercent float64
	// Attacking is true when this combatant's most recent action targeted self.
	Attacking bool
	Dead      bool
}

// SelfState captures the planning combatant's own state.
type SelfState struct {
	ID                string
	HealthPercent     float64
	Stamina           float64
	ComboOpen         bool
	ParryWindowOpen   bool
	DefenseWindowOpen bool
	// Busy is true while the current action's clip is still playing.
	Busy bool
}

// WorldState is the snapshot passed to the HTN planner for one combatant.
//
// Invariant: Self must not be nil.
type WorldState struct {
	Self       *SelfState
	Combatants []*CombatantState
}

// Enemies returns all living opponents.
//
// Postcondition: returned slice contains no dead combatants and never self.
func (ws *WorldState) Enemies() []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if !c.Dead && c.ID != ws.Self.ID {
			out = append(out, c)
		}
	}
	return out
}

// HasLivingEnemies returns true when at least one living enemy exists.
func (ws *WorldState) HasLivingEnemies() bool {
	return len(ws.Enemies()) > 0
}

// NearestEnemy returns the living enemy with the smallest distance, or nil.
//
// Postcondition: ties broken by order in Combatants.
func (ws *WorldState) NearestEnemy() *CombatantState {
	var best *CombatantState
	bestDist := math.Inf(1)
	for _, e := range ws.Enemies() {
		if e.Distance < bestDist {
			best, bestDist = e, e.Distance
		}
	}
	return best
}

// WeakestEnemy returns the living enemy with the lowest health percentage, or nil.
//
// Postcondition: ties broken by order in Combatants.
func (ws *WorldState) WeakestEnemy() *CombatantState {
	enemies := ws.Enemies()
	if len(enemies) == 0 {
		return nil
	}
	weakest := enemies[0]
	for _, e := range enemies[1:] {
		if e.HealthPercent < weakest.HealthPercent {
			weakest = e
		}
	}
	return weakest
}

// Attacker returns the living enemy currently attacking self, or nil.
func (ws *WorldState) Attacker() *CombatantState {
	for _, e := range ws.Enemies() {
		if e.Attacking {
			return e
		}
	}
	return nil
}

// NearestDistance returns the distance to the nearest living enemy, or -1.
func (ws *WorldState) NearestDistance() float64 {
	if e := ws.NearestEnemy(); e != nil {
		return e.Distance
	}
	return -1
}

// ResolveTarget maps a target token to a combatant ID.
//
// Precondition: ws.Self must not be nil.
// Postcondition: tokens "nearest_enemy", "weakest_enemy", "attacker" and
// "self" are resolved to IDs; unknown tokens are returned as-is; empty
// string returned if the target does not exist.
func (ws *WorldState) ResolveTarget(token string) string {
	var c *CombatantState
	switch token {
	case "nearest_enemy":
		c = ws.NearestEnemy()
	case "weakest_enemy":
		c = ws.WeakestEnemy()
	case "attacker":
		c = ws.Attacker()
	case "self":
		return ws.Self.ID
	default:
		return token
	}
	if c == nil {
		return ""
	}
	return c.ID
}
