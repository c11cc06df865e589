package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
)

// ScriptCaller is the interface required by the Planner to evaluate Lua preconditions.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(vmID, hook string, args ...lua.LValue) (lua.LValue, error)
}

// Predicate is a built-in method precondition evaluated in Go.
type Predicate func(ws *WorldState, reach float64) bool

// DefaultReach is the distance within which "enemy_in_reach" holds when no
// reach is configured.
const DefaultReach = 200.0

// builtins are consulted before Lua hooks. A method precondition naming one of
// these never reaches the script VM.
var builtins = map[string]Predicate{
	"has_enemy":           func(ws *WorldState, _ float64) bool { return ws.HasLivingEnemies() },
	"incoming_attack":     func(ws *WorldState, _ float64) bool { return ws.Attacker() != nil },
	"combo_open":          func(ws *WorldState, _ float64) bool { return ws.Self.ComboOpen },
	"parry_window_open":   func(ws *WorldState, _ float64) bool { return ws.Self.ParryWindowOpen },
	"defense_window_open": func(ws *WorldState, _ float64) bool { return ws.Self.DefenseWindowOpen },
	"busy":                func(ws *WorldState, _ float64) bool { return ws.Self.Busy },
	"idle":                func(ws *WorldState, _ float64) bool { return !ws.Self.Busy },
	"enemy_in_reach": func(ws *WorldState, reach float64) bool {
		d := ws.NearestDistance()
		return d >= 0 && d <= reach
	},
}

// IsBuiltin reports whether name is a built-in precondition.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// PlannedAction is one primitive action produced by the planner.
type PlannedAction struct {
	Operator   string
	Action     string // one of the Action* constants
	AttackType action.AttackType
	Direction  action.Direction
	Intent     action.DefenseIntent
	Target     string // resolved combatant ID; empty when the target does not exist
}

// Planner evaluates an HTN domain for a single combatant and produces an
// ordered action plan for the current decision tick.
//
// Invariant: domain must not be nil. caller may be nil, in which case
// non-builtin preconditions are false.
type Planner struct {
	domain *Domain
	caller ScriptCaller
	vmID   string
	reach  float64
}

// NewPlanner constructs a Planner.
//
// Precondition: domain must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller, vmID string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	return &Planner{domain: domain, caller: caller, vmID: vmID, reach: DefaultReach}
}

// SetReach sets the distance used by the "enemy_in_reach" precondition.
//
// Precondition: reach > 0.
func (p *Planner) SetReach(reach float64) {
	if reach > 0 {
		p.reach = reach
	}
}

// Domain returns the planner's domain.
func (p *Planner) Domain() *Domain { return p.domain }

// Plan evaluates the HTN domain against state and returns an ordered plan.
//
// Precondition: state and state.Self must not be nil.
// Postcondition: returns non-nil slice (may be empty); never returns error for Lua failures
// (they are treated as precondition-false).
func (p *Planner) Plan(state *WorldState) ([]PlannedAction, error) {
	if state == nil || state.Self == nil {
		return nil, fmt.Errorf("ai.Planner.Plan: state and state.Self must not be nil")
	}

	// Begin with the root task "behave".
	taskQueue := []string{"behave"}
	var result []PlannedAction

	const maxDepth = 32 // guard against infinite loops
	steps := 0

	for len(taskQueue) > 0 && steps < maxDepth {
		steps++
		current := taskQueue[0]
		taskQueue = taskQueue[1:]

		// Primitive operator: resolve and emit.
		if op, ok := p.domain.OperatorByID(current); ok {
			result = append(result, plannedFrom(op, state))
			continue
		}

		method := p.findApplicableMethod(current, state)
		if method == nil {
			continue
		}

		// Prepend subtasks (preserves ordered decomposition).
		next := make([]string, 0, len(method.Subtasks)+len(taskQueue))
		next = append(next, method.Subtasks...)
		taskQueue = append(next, taskQueue...)
	}

	if result == nil {
		result = []PlannedAction{}
	}
	return result, nil
}

// plannedFrom resolves op's enum fields and target. Fields were validated at
// domain load time, so parse errors fall back to the zero value.
func plannedFrom(op *Operator, state *WorldState) PlannedAction {
	pa := PlannedAction{Operator: op.ID, Action: op.Action}
	if op.AttackType != "" {
		pa.AttackType, _ = action.ParseAttackType(op.AttackType)
	}
	if op.Direction != "" {
		pa.Direction, _ = action.ParseDirection(op.Direction)
	}
	if op.Intent != "" {
		pa.Intent, _ = action.ParseDefenseIntent(op.Intent)
	}
	target := op.Target
	if target == "" {
		switch op.Action {
		case ActionPerformDefense:
			target = "attacker"
		case ActionAttack, ActionContinueCombo:
			target = "nearest_enemy"
		}
	}
	if target != "" {
		pa.Target = state.ResolveTarget(target)
	}
	return pa
}

// findApplicableMethod returns the first Method for taskID whose precondition passes,
// or nil if none applies.
//
// Methods are tried in declaration order. An empty Precondition always passes.
func (p *Planner) findApplicableMethod(taskID string, state *WorldState) *Method {
	for _, m := range p.domain.MethodsForTask(taskID) {
		if m.Precondition == "" {
			return m
		}
		if pred, ok := builtins[m.Precondition]; ok {
			if pred(state, p.reach) {
				return m
			}
			continue
		}
		if p.caller == nil {
			continue
		}
		val, _ := p.caller.CallHook(p.vmID, m.Precondition,
			lua.LString(state.Self.ID),
			lua.LNumber(state.NearestDistance()),
			lua.LBool(state.Attacker() != nil),
			lua.LBool(state.Self.ComboOpen),
			lua.LNumber(state.Self.HealthPercent),
			lua.LNumber(state.Self.Stamina),
		)
		if val == lua.LTrue {
			return m
		}
	}
	return nil
}
