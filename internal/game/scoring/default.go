package scoring

import (
	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/dice"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
)

// DefaultScorer is the stock scorer for one row variant.
//
// Attack intent matches on direction (Omni matches anything); defense intent
// matches on DefenseIntent. Distance and facing are measured against
// ctx.Other, or for attacks the nearest valid target when Other is unset.
type DefaultScorer struct {
	variant action.Variant
	tuning  Tuning
	src     dice.Source
}

// NewAttackScorer returns the default attack scorer.
//
// Precondition: src must be non-nil.
func NewAttackScorer(t Tuning, src dice.Source) *DefaultScorer {
	return &DefaultScorer{variant: action.VariantAttack, tuning: t, src: src}
}

// NewDefenseScorer returns the default defense scorer.
//
// Precondition: src must be non-nil.
func NewDefenseScorer(t Tuning, src dice.Source) *DefaultScorer {
	return &DefaultScorer{variant: action.VariantDefense, tuning: t, src: src}
}

// IsEligible always returns true.
func (s *DefaultScorer) IsEligible(action.Entry, Context) bool { return true }

// Score returns Explain(e, ctx).Total.
func (s *DefaultScorer) Score(e action.Entry, ctx Context) float64 {
	return s.Explain(e, ctx).Total
}

// Explain computes every term of the score.
//
// Postcondition: Invalid is set and Total is -Inf when Self is invalid, or
// when scoring a defense against an invalid attacker.
func (s *DefaultScorer) Explain(e action.Entry, ctx Context) Breakdown {
	b := Breakdown{Entry: e.Name}
	if !combatant.IsValid(ctx.Self) {
		b.Invalid, b.Total = true, Invalid
		return b
	}
	other := s.reference(ctx)
	if s.variant == action.VariantDefense && !combatant.IsValid(other) {
		b.Invalid, b.Total = true, Invalid
		return b
	}

	if s.intentMatches(e, ctx) {
		b.Intent = s.tuning.IntentMatchBonus
	} else {
		b.Intent = s.tuning.IntentMismatchPenalty
	}

	if combatant.IsValid(other) {
		self := ctx.Self.Transform()
		to := other.Transform().Location
		b.Distance = DistanceTerm(geom.Dist(self.Location, to), e.Range, s.tuning.DistanceWeight)
		b.Facing = FacingTerm(e.Direction, self.FacingDot(to), s.tuning.FacingThreshold, s.tuning.FacingBonus)
	}

	b.Jitter = dice.Jitter(s.src, s.tuning.Jitter)
	b.Total = b.Intent + b.Distance + b.Facing + b.Jitter
	return b
}

func (s *DefaultScorer) intentMatches(e action.Entry, ctx Context) bool {
	if s.variant == action.VariantDefense {
		return e.Intent == ctx.Intent
	}
	return e.Direction.Matches(ctx.Direction)
}

func (s *DefaultScorer) reference(ctx Context) combatant.Actor {
	if combatant.IsValid(ctx.Other) || s.variant == action.VariantDefense {
		return ctx.Other
	}
	return combatant.Nearest(ctx.Self.Transform().Location, ctx.Targets)
}

// RegisterDefaults registers the built-in attack and defense classes.
//
// Precondition: r and src must be non-nil.
// Postcondition: returns error if either class name is already taken.
func RegisterDefaults(r *Registry, t Tuning, src dice.Source) error {
	if _, err := r.Register(ClassDefaultAttack, func() Scorer { return NewAttackScorer(t, src) }); err != nil {
		return err
	}
	_, err := r.Register(ClassDefaultDefense, func() Scorer { return NewDefenseScorer(t, src) })
	return err
}
