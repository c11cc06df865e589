package ai

import (
	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/combo"
	"github.com/cory-johannsen/motioncombat/internal/game/core"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
)

// Vitals reports combatant health and stamina. ok is false for unknown IDs,
// which are then treated as full health and stamina.
type Vitals interface {
	Vitals(id string) (healthPercent, stamina float64, ok bool)
}

// BuildCombatWorldState constructs a WorldState snapshot for the combatant
// owning c.
//
// Precondition: c must not be nil.
// Postcondition: ws.Self.ID == c.Owner().ID(); every target other than self
// that is still valid is represented; a target whose vitals report no health
// is marked Dead; the combatant whose ID
// equals incoming is marked Attacking.
func BuildCombatWorldState(c *core.Core, targets []combatant.Actor, vitals Vitals, incoming string) *WorldState {
	owner := c.Owner()
	self := &SelfState{
		ID:            owner.ID(),
		HealthPercent: 100,
		Stamina:       100,
		ComboOpen:     c.ComboState() == combo.Open,
		Busy:          c.Busy(),
	}
	if vitals != nil {
		if h, s, ok := vitals.Vitals(self.ID); ok {
			self.HealthPercent, self.Stamina = h, s
		}
	}
	if d := c.Defense(); d != nil {
		self.ParryWindowOpen = d.IsParryWindowOpen()
		self.DefenseWindowOpen = d.IsDefenseWindowOpen()
	}

	ws := &WorldState{Self: self}
	from := owner.Transform().Location
	for _, t := range targets {
		if !combatant.IsValid(t) || combatant.SameActor(t, owner) {
			continue
		}
		cs := &CombatantState{
			ID:            t.ID(),
			HealthPercent: 100,
			Distance:      geom.Dist(from, t.Transform().Location),
		}
		if vitals != nil {
			if h, _, ok := vitals.Vitals(cs.ID); ok {
				cs.HealthPercent = h
				cs.Dead = h <= 0
			}
		}
		cs.Attacking = incoming != "" && cs.ID == incoming && !cs.Dead
		ws.Combatants = append(ws.Combatants, cs)
	}
	return ws
}
