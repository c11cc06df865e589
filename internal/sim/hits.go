package sim

import (
	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
	"github.com/cory-johannsen/motioncombat/internal/game/reaction"
	"github.com/cory-johannsen/motioncombat/internal/game/window"
)

// HitDetector sweeps a fighter's active hitbox against the other fighters of
// its world. A hitbox reaches a defender standing in front of the attacker
// within the entry's maximum range plus the hitbox radius.
//
// Invariant: a defender is struck at most once per hitbox window.
type HitDetector struct {
	owner  *Fighter
	active bool
	entry  action.Entry
	hitbox *window.Hitbox
	struck map[string]bool
	// deflected outlives hitbox windows; a parry may land before the
	// swing's hitbox opens.
	deflected map[string]bool
	// ended is called when an active hitbox window closes.
	ended func(attacker *Fighter, struck map[string]bool)
}

func newHitDetector(owner *Fighter) *HitDetector {
	return &HitDetector{owner: owner, struck: map[string]bool{}, deflected: map[string]bool{}}
}

// newSwing forgets deflections from the previous attack.
func (h *HitDetector) newSwing() { h.deflected = map[string]bool{} }

// ResetAlreadyHit forgets which defenders the current swing has struck.
func (h *HitDetector) ResetAlreadyHit() { h.struck = map[string]bool{} }

// Start arms the hitbox for entry.
func (h *HitDetector) Start(entry action.Entry, hitbox *window.Hitbox) {
	h.active, h.entry, h.hitbox = true, entry, hitbox
}

// Stop disarms the hitbox.
func (h *HitDetector) Stop() {
	if !h.active {
		return
	}
	h.active, h.hitbox = false, nil
	if h.ended != nil {
		h.ended(h.owner, h.struck)
	}
}

// Active reports whether a hitbox is armed.
func (h *HitDetector) Active() bool { return h.active }

// Entry returns the entry the armed hitbox belongs to.
func (h *HitDetector) Entry() action.Entry { return h.entry }

// Deflect makes the rest of the current attack pass id by.
func (h *HitDetector) Deflect(id string) { h.deflected[id] = true }

// Sweep returns the fighters the armed hitbox reaches that it has not yet
// struck, marking each as struck.
func (h *HitDetector) Sweep(candidates []*Fighter) []*Fighter {
	if !h.active || h.hitbox == nil || !h.owner.Valid() {
		return nil
	}
	var out []*Fighter
	reach := h.entry.Range.Max + h.hitbox.Radius
	self := h.owner.Transform()
	for _, c := range candidates {
		if c == h.owner || !c.Valid() || h.struck[c.ID()] || h.deflected[c.ID()] {
			continue
		}
		loc := c.Transform().Location
		if geom.Dist2D(self.Location, loc) > reach || self.FacingDot(loc) <= 0 {
			continue
		}
		h.struck[c.ID()] = true
		out = append(out, c)
	}
	return out
}

// Severity thresholds by hitbox damage.
const (
	mediumDamage    = 10.0
	heavyDamage     = 18.0
	knockdownDamage = 25.0
)

// severityFor classifies a strike's damage.
func severityFor(damage float64) reaction.Severity {
	switch {
	case damage >= knockdownDamage:
		return reaction.SeverityKnockdown
	case damage >= heavyDamage:
		return reaction.SeverityHeavy
	case damage >= mediumDamage:
		return reaction.SeverityMedium
	default:
		return reaction.SeverityLight
	}
}

// locatorFor names the bone a strike lands on: heavy attacks come down on
// the head, everything else lands on the torso.
func locatorFor(e action.Entry) string {
	if e.AttackType == action.AttackHeavy {
		return "head"
	}
	return "spine_03"
}
