// Package scoring implements the contextual scoring used to rank action
// table rows: an intent term, a smooth distance term, a facing term, and a
// small random jitter. Scorers are looked up by class name so each action
// set can name the scoring behavior it wants.
package scoring

import (
	"math"

	"github.com/cory-johannsen/motioncombat/internal/config"
	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
)

// Invalid is the score given to a candidate evaluated against an invalid context.
var Invalid = math.Inf(-1)

// Context is everything a scorer may inspect for one selection request.
type Context struct {
	// Self is the combatant performing the action.
	Self combatant.Actor
	// Other is the opposing combatant: the attacker for defenses, the chosen
	// target for attacks. May be nil.
	Other combatant.Actor
	// Targets is the candidate target pool for attacks. Empty for combo
	// continuations.
	Targets []combatant.Actor
	// Direction is the requested attack direction.
	Direction action.Direction
	// Intent is the requested defensive intent.
	Intent action.DefenseIntent
	// Situation is the caller's state snapshot.
	Situation combatant.Situation
}

// Scorer ranks candidate rows. Implementations may override either method;
// the selector only ever calls IsEligible before Score.
type Scorer interface {
	// Score returns a suitability score; Invalid for an unusable context.
	Score(e action.Entry, ctx Context) float64
	// IsEligible reports whether e may be considered at all.
	IsEligible(e action.Entry, ctx Context) bool
}

// Breakdown records the individual terms of a score for debugging.
type Breakdown struct {
	Entry    string
	Intent   float64
	Distance float64
	Facing   float64
	Jitter   float64
	Script   float64
	Total    float64
	Invalid  bool
}

// Explainer is implemented by scorers that can report a per-term breakdown.
type Explainer interface {
	Explain(e action.Entry, ctx Context) Breakdown
}

// Tuning holds the scoring constants.
type Tuning struct {
	IntentMatchBonus      float64
	IntentMismatchPenalty float64
	DistanceWeight        float64
	FacingBonus           float64
	FacingThreshold       float64
	Jitter                float64
}

// TuningFromConfig extracts scoring constants from combat configuration.
func TuningFromConfig(c config.CombatConfig) Tuning {
	return Tuning{
		IntentMatchBonus:      c.IntentMatchBonus,
		IntentMismatchPenalty: c.IntentMismatchPenalty,
		DistanceWeight:        c.DistanceWeight,
		FacingBonus:           c.FacingBonus,
		FacingThreshold:       c.FacingThreshold,
		Jitter:                c.Jitter,
	}
}

// DefaultTuning returns the stock constants: +50/-25 intent, ±25 distance,
// +10 facing above a 0.25 dot, ±5 jitter.
func DefaultTuning() Tuning {
	return TuningFromConfig(config.DefaultCombat())
}

// DistanceTerm scores how close dist is to the middle of r.
//
// Postcondition: result in [-weight, +weight]; +weight at the midpoint,
// -weight at or beyond the band edges; 0 when the band half-width is <= 1.
func DistanceTerm(dist float64, r action.Range, weight float64) float64 {
	half := r.HalfWidth()
	if half <= 1 {
		return 0
	}
	normalized := math.Max(0, math.Min(1, 1-math.Abs(dist-r.Mid())/half))
	return normalized*2*weight - weight
}

// FacingTerm returns bonus when the row is forward-directed and the facing
// dot product exceeds threshold, 0 otherwise.
func FacingTerm(dir action.Direction, facingDot, threshold, bonus float64) float64 {
	if dir == action.DirectionForward && facingDot > threshold {
		return bonus
	}
	return 0
}
