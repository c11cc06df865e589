package ai_test

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/ai"
)

// mockScriptCaller returns the given value for any hook call and records the calls.
type mockScriptCaller struct {
	returnVal lua.LValue
	hooks     []string
	args      [][]lua.LValue
}

func (m *mockScriptCaller) CallHook(vmID, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.hooks = append(m.hooks, hook)
	m.args = append(m.args, args)
	if m.returnVal == nil {
		return lua.LNil, nil
	}
	return m.returnVal, nil
}

func duelistDomain() *ai.Domain {
	return &ai.Domain{
		ID: "duelist",
		Tasks: []*ai.Task{
			{ID: "behave"},
			{ID: "defend"},
		},
		Methods: []*ai.Method{
			{TaskID: "behave", ID: "react", Precondition: "incoming_attack", Subtasks: []string{"defend"}},
			{TaskID: "behave", ID: "chain", Precondition: "combo_open", Subtasks: []string{"chain_slash"}},
			{TaskID: "behave", ID: "strike", Precondition: "enemy_in_reach", Subtasks: []string{"slash"}},
			{TaskID: "behave", ID: "taunt", Precondition: "wants_taunt", Subtasks: []string{"heavy"}},
			{TaskID: "behave", ID: "idle_mode", Subtasks: []string{"wait"}},
			{TaskID: "defend", ID: "parry_now", Precondition: "parry_window_open", Subtasks: []string{"parry"}},
			{TaskID: "defend", ID: "block_now", Precondition: "defense_window_open", Subtasks: []string{"block"}},
			{TaskID: "defend", ID: "guard", Subtasks: []string{"raise_guard"}},
		},
		Operators: []*ai.Operator{
			{ID: "slash", Action: ai.ActionAttack, AttackType: "light", Direction: "forward"},
			{ID: "heavy", Action: ai.ActionAttack, AttackType: "heavy"},
			{ID: "chain_slash", Action: ai.ActionContinueCombo, AttackType: "light"},
			{ID: "raise_guard", Action: ai.ActionPerformDefense, Intent: "parry"},
			{ID: "parry", Action: ai.ActionParry},
			{ID: "block", Action: ai.ActionDefend},
			{ID: "wait", Action: ai.ActionPass},
		},
	}
}

func plan(t *testing.T, p *ai.Planner, ws *ai.WorldState) []ai.PlannedAction {
	t.Helper()
	actions, err := p.Plan(ws)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return actions
}

func TestPlanner_Plan_AttacksEnemyInReach(t *testing.T) {
	p := ai.NewPlanner(duelistDomain(), &mockScriptCaller{}, "duelist")
	ws := &ai.WorldState{
		Self:       &ai.SelfState{ID: "hero"},
		Combatants: []*ai.CombatantState{{ID: "foe", Distance: 150}},
	}
	actions := plan(t, p, ws)
	if len(actions) != 1 {
		t.Fatalf("expected one action, got %v", actions)
	}
	got := actions[0]
	if got.Action != ai.ActionAttack || got.AttackType != action.AttackLight || got.Direction != action.DirectionForward {
		t.Fatalf("unexpected action %+v", got)
	}
	if got.Target != "foe" || got.Operator != "slash" {
		t.Fatalf("expected slash at foe, got %+v", got)
	}
}

func TestPlanner_Plan_ReachIsConfigurable(t *testing.T) {
	p := ai.NewPlanner(duelistDomain(), nil, "duelist")
	p.SetReach(100)
	ws := &ai.WorldState{
		Self:       &ai.SelfState{ID: "hero"},
		Combatants: []*ai.CombatantState{{ID: "foe", Distance: 150}},
	}
	actions := plan(t, p, ws)
	if len(actions) != 1 || actions[0].Action != ai.ActionPass {
		t.Fatalf("expected pass when out of reach, got %v", actions)
	}
}

func TestPlanner_Plan_IncomingAttackDecomposesDefense(t *testing.T) {
	p := ai.NewPlanner(duelistDomain(), nil, "duelist")
	cases := []struct {
		name string
		self ai.SelfState
		want string
	}{
		{"parry window", ai.SelfState{ID: "hero", ParryWindowOpen: true}, ai.ActionParry},
		{"defense window", ai.SelfState{ID: "hero", DefenseWindowOpen: true}, ai.ActionDefend},
		{"no window", ai.SelfState{ID: "hero"}, ai.ActionPerformDefense},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			self := tc.self
			ws := &ai.WorldState{
				Self:       &self,
				Combatants: []*ai.CombatantState{{ID: "foe", Distance: 150, Attacking: true}},
			}
			actions := plan(t, p, ws)
			if len(actions) != 1 || actions[0].Action != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, actions)
			}
		})
	}
}

func TestPlanner_Plan_PerformDefenseTargetsAttacker(t *testing.T) {
	p := ai.NewPlanner(duelistDomain(), nil, "duelist")
	ws := &ai.WorldState{
		Self: &ai.SelfState{ID: "hero"},
		Combatants: []*ai.CombatantState{
			{ID: "near", Distance: 50},
			{ID: "archer", Distance: 900, Attacking: true},
		},
	}
	actions := plan(t, p, ws)
	if len(actions) != 1 || actions[0].Target != "archer" || actions[0].Intent != action.IntentParry {
		t.Fatalf("expected parry intent against archer, got %v", actions)
	}
}

func TestPlanner_Plan_ComboOpenChains(t *testing.T) {
	p := ai.NewPlanner(duelistDomain(), nil, "duelist")
	ws := &ai.WorldState{
		Self:       &ai.SelfState{ID: "hero", ComboOpen: true},
		Combatants: []*ai.CombatantState{{ID: "foe", Distance: 150}},
	}
	actions := plan(t, p, ws)
	if len(actions) != 1 || actions[0].Action != ai.ActionContinueCombo {
		t.Fatalf("expected continue_combo, got %v", actions)
	}
}

func TestPlanner_Plan_LuaPreconditionReceivesState(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LTrue}
	p := ai.NewPlanner(duelistDomain(), caller, "duelist")
	ws := &ai.WorldState{
		Self:       &ai.SelfState{ID: "hero", HealthPercent: 75, Stamina: 40},
		Combatants: []*ai.CombatantState{{ID: "foe", Distance: 900}},
	}
	actions := plan(t, p, ws)
	if len(actions) != 1 || actions[0].AttackType != action.AttackHeavy {
		t.Fatalf("expected heavy attack, got %v", actions)
	}
	if len(caller.hooks) != 1 || caller.hooks[0] != "wants_taunt" {
		t.Fatalf("expected only the wants_taunt hook to run, got %v", caller.hooks)
	}
	args := caller.args[0]
	if args[0] != lua.LString("hero") || args[1] != lua.LNumber(900) || args[2] != lua.LFalse {
		t.Fatalf("unexpected hook args %v", args)
	}
	if args[4] != lua.LNumber(75) || args[5] != lua.LNumber(40) {
		t.Fatalf("unexpected vitals args %v", args)
	}
}

func TestPlanner_Plan_NilCallerTreatsHooksAsFalse(t *testing.T) {
	p := ai.NewPlanner(duelistDomain(), nil, "duelist")
	ws := &ai.WorldState{Self: &ai.SelfState{ID: "hero"}}
	actions := plan(t, p, ws)
	if len(actions) != 1 || actions[0].Action != ai.ActionPass {
		t.Fatalf("expected pass, got %v", actions)
	}
}

func TestPlanner_Plan_RejectsNilState(t *testing.T) {
	p := ai.NewPlanner(duelistDomain(), nil, "duelist")
	if _, err := p.Plan(nil); err == nil {
		t.Fatal("expected error for nil state")
	}
	if _, err := p.Plan(&ai.WorldState{}); err == nil {
		t.Fatal("expected error for nil Self")
	}
}

func TestPlanner_Plan_DepthGuardStopsRecursion(t *testing.T) {
	d := &ai.Domain{
		ID:      "loop",
		Tasks:   []*ai.Task{{ID: "behave"}},
		Methods: []*ai.Method{{TaskID: "behave", ID: "again", Subtasks: []string{"behave"}}},
	}
	actions := plan(t, ai.NewPlanner(d, nil, "loop"), &ai.WorldState{Self: &ai.SelfState{ID: "hero"}})
	if len(actions) != 0 {
		t.Fatalf("expected no actions, got %v", actions)
	}
}

func TestIsBuiltin(t *testing.T) {
	if !ai.IsBuiltin("incoming_attack") || ai.IsBuiltin("wants_taunt") {
		t.Fatal("unexpected builtin classification")
	}
}

func TestProperty_Planner_NeverReturnsNilSlice(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var lv lua.LValue = lua.LFalse
		if rapid.Bool().Draw(rt, "precond") {
			lv = lua.LTrue
		}
		p := ai.NewPlanner(duelistDomain(), &mockScriptCaller{returnVal: lv}, "duelist")
		ws := &ai.WorldState{
			Self: &ai.SelfState{
				ID:                "hero",
				ComboOpen:         rapid.Bool().Draw(rt, "combo"),
				ParryWindowOpen:   rapid.Bool().Draw(rt, "parry"),
				DefenseWindowOpen: rapid.Bool().Draw(rt, "defense"),
			},
			Combatants: []*ai.CombatantState{{
				ID:        "foe",
				Distance:  rapid.Float64Range(0, 3000).Draw(rt, "dist"),
				Attacking: rapid.Bool().Draw(rt, "attacking"),
			}},
		}
		actions, err := p.Plan(ws)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if actions == nil {
			rt.Fatal("Plan returned nil slice")
		}
		if len(actions) != 1 {
			rt.Fatalf("expected exactly one action, got %v", actions)
		}
	})
}
