package scoring

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
)

// ScriptCaller is the interface required to evaluate Lua scoring hooks.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(vmID, hook string, args ...lua.LValue) (lua.LValue, error)
}

// ScriptHooks names the Lua functions a scripted scorer calls. Empty names
// defer entirely to the fallback scorer.
type ScriptHooks struct {
	VM       string
	Score    string
	Eligible string
}

// ScriptedScorer lets designers override scoring in Lua.
//
// The score hook is called as hook(name, category, base, distance, facing, direction)
// where base is the fallback score, distance is -1 with no reference actor,
// and direction is the requested direction name. A numeric return replaces
// the score; anything else keeps base. The eligibility hook is called as
// hook(name, category, distance) and must return a boolean to take effect.
type ScriptedScorer struct {
	caller   ScriptCaller
	hooks    ScriptHooks
	fallback Scorer
}

// NewScriptedScorer wraps fallback with Lua hooks.
//
// Precondition: caller and fallback must be non-nil.
func NewScriptedScorer(caller ScriptCaller, hooks ScriptHooks, fallback Scorer) *ScriptedScorer {
	if caller == nil {
		panic("scoring.NewScriptedScorer: caller must not be nil")
	}
	if fallback == nil {
		panic("scoring.NewScriptedScorer: fallback must not be nil")
	}
	return &ScriptedScorer{caller: caller, hooks: hooks, fallback: fallback}
}

// IsEligible consults the eligibility hook, falling back when it is absent
// or returns a non-boolean.
func (s *ScriptedScorer) IsEligible(e action.Entry, ctx Context) bool {
	if s.hooks.Eligible == "" {
		return s.fallback.IsEligible(e, ctx)
	}
	dist, _ := measure(ctx)
	ret, err := s.caller.CallHook(s.hooks.VM, s.hooks.Eligible,
		lua.LString(e.Name), lua.LString(e.Category), lua.LNumber(dist))
	if err != nil {
		return s.fallback.IsEligible(e, ctx)
	}
	if b, ok := ret.(lua.LBool); ok {
		return bool(b)
	}
	return s.fallback.IsEligible(e, ctx)
}

// Score returns Explain(e, ctx).Total.
func (s *ScriptedScorer) Score(e action.Entry, ctx Context) float64 {
	return s.Explain(e, ctx).Total
}

// Explain scores with the fallback, then lets the score hook replace the total.
//
// Postcondition: an invalid fallback result is never passed to Lua.
func (s *ScriptedScorer) Explain(e action.Entry, ctx Context) Breakdown {
	var b Breakdown
	if ex, ok := s.fallback.(Explainer); ok {
		b = ex.Explain(e, ctx)
	} else {
		b = Breakdown{Entry: e.Name, Total: s.fallback.Score(e, ctx)}
		b.Invalid = math.IsInf(b.Total, -1)
	}
	if b.Invalid || s.hooks.Score == "" {
		return b
	}
	dist, facing := measure(ctx)
	ret, err := s.caller.CallHook(s.hooks.VM, s.hooks.Score,
		lua.LString(e.Name),
		lua.LString(e.Category),
		lua.LNumber(b.Total),
		lua.LNumber(dist),
		lua.LNumber(facing),
		lua.LString(ctx.Direction.String()),
	)
	if err != nil {
		return b
	}
	if n, ok := ret.(lua.LNumber); ok {
		b.Script = float64(n) - b.Total
		b.Total = float64(n)
	}
	return b
}

// measure returns the distance and facing dot to the reference actor, or
// (-1, 0) when there is none.
func measure(ctx Context) (float64, float64) {
	if !combatant.IsValid(ctx.Self) {
		return -1, 0
	}
	other := ctx.Other
	if !combatant.IsValid(other) {
		other = combatant.Nearest(ctx.Self.Transform().Location, ctx.Targets)
	}
	if other == nil {
		return -1, 0
	}
	self := ctx.Self.Transform()
	to := other.Transform().Location
	return geom.Dist(self.Location, to), self.FacingDot(to)
}
