package ai_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/motioncombat/internal/game/ai"
)

func TestDomain_Validate_RejectsEmpty(t *testing.T) {
	d := &ai.Domain{}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for empty Domain")
	}
}

func TestDomain_Validate_AcceptsMinimal(t *testing.T) {
	d := &ai.Domain{
		ID:    "test",
		Tasks: []*ai.Task{{ID: "root"}},
		Methods: []*ai.Method{{
			TaskID:   "root",
			ID:       "m1",
			Subtasks: []string{"op1"},
		}},
		Operators: []*ai.Operator{{ID: "op1", Action: ai.ActionPass}},
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDomain_Validate_OperatorFields(t *testing.T) {
	cases := []struct {
		name string
		op   ai.Operator
		ok   bool
	}{
		{"attack with type", ai.Operator{ID: "o", Action: ai.ActionAttack, AttackType: "light"}, true},
		{"attack without type", ai.Operator{ID: "o", Action: ai.ActionAttack}, false},
		{"combo without type", ai.Operator{ID: "o", Action: ai.ActionContinueCombo}, false},
		{"unknown action", ai.Operator{ID: "o", Action: "flee"}, false},
		{"bad attack type", ai.Operator{ID: "o", Action: ai.ActionAttack, AttackType: "huge"}, false},
		{"bad direction", ai.Operator{ID: "o", Action: ai.ActionAttack, AttackType: "heavy", Direction: "up"}, false},
		{"bad intent", ai.Operator{ID: "o", Action: ai.ActionPerformDefense, Intent: "dodge"}, false},
		{"parry intent", ai.Operator{ID: "o", Action: ai.ActionPerformDefense, Intent: "parry"}, true},
		{"parry", ai.Operator{ID: "o", Action: ai.ActionParry}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op := tc.op
			d := &ai.Domain{
				ID:        "d",
				Tasks:     []*ai.Task{{ID: "behave"}},
				Methods:   []*ai.Method{{TaskID: "behave", ID: "m", Subtasks: []string{"o"}}},
				Operators: []*ai.Operator{&op},
			}
			err := d.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDomain_Validate_UnknownSubtask(t *testing.T) {
	d := &ai.Domain{
		ID:      "d",
		Tasks:   []*ai.Task{{ID: "behave"}},
		Methods: []*ai.Method{{TaskID: "behave", ID: "m", Subtasks: []string{"missing"}}},
	}
	err := d.Validate()
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected unknown subtask error, got %v", err)
	}
}

func TestDomain_OperatorByID_Found(t *testing.T) {
	d := &ai.Domain{
		Operators: []*ai.Operator{{ID: "slash", Action: ai.ActionAttack, AttackType: "light", Target: "nearest_enemy"}},
	}
	op, ok := d.OperatorByID("slash")
	if !ok || op.Action != ai.ActionAttack {
		t.Fatal("expected to find operator")
	}
}

func TestDomain_OperatorByID_NotFound(t *testing.T) {
	d := &ai.Domain{}
	if _, ok := d.OperatorByID("missing"); ok {
		t.Fatal("expected not found")
	}
}

func TestDomain_MethodsForTask_ReturnsOrdered(t *testing.T) {
	d := &ai.Domain{
		Methods: []*ai.Method{
			{TaskID: "fight", ID: "m1", Subtasks: []string{"op1"}},
			{TaskID: "fight", ID: "m2", Subtasks: []string{"op2"}},
			{TaskID: "other", ID: "m3", Subtasks: []string{"op3"}},
		},
	}
	methods := d.MethodsForTask("fight")
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(methods))
	}
	if methods[0].ID != "m1" || methods[1].ID != "m2" {
		t.Fatalf("expected methods in declaration order [m1, m2], got [%s, %s]", methods[0].ID, methods[1].ID)
	}
}

const duelistYAML = `
domain:
  id: duelist
  description: Test
  tasks:
    - id: behave
      description: root
  methods:
    - task: behave
      id: strike
      precondition: enemy_in_reach
      subtasks: [slash]
    - task: behave
      id: default
      subtasks: [idle]
  operators:
    - id: slash
      action: attack
      attack_type: light
      direction: forward
    - id: idle
      action: pass
`

func TestLoadDomains_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "duelist.yaml"), []byte(duelistYAML), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600); err != nil {
		t.Fatal(err)
	}
	domains, err := ai.LoadDomains(dir)
	if err != nil {
		t.Fatalf("LoadDomains: %v", err)
	}
	if len(domains) != 1 || domains[0].ID != "duelist" {
		t.Fatalf("unexpected domains: %v", domains)
	}
	op, ok := domains[0].OperatorByID("slash")
	if !ok || op.AttackType != "light" || op.Direction != "forward" {
		t.Fatalf("unexpected operator: %+v", op)
	}
}

func TestLoadDomains_RejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(duelistYAML), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := ai.LoadDomains(dir); err == nil {
		t.Fatal("expected duplicate domain error")
	}
}

func TestLoadDomainBytes_RejectsUnknownField(t *testing.T) {
	data := strings.Replace(duelistYAML, "description: Test", "descripton: Test", 1)
	if _, err := ai.LoadDomainBytes([]byte(data)); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestLoadDomainBytes_MissingDomainKey(t *testing.T) {
	if _, err := ai.LoadDomainBytes([]byte("other: 1\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestProperty_Domain_OperatorByID_ConsistentLookup(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		ops := make([]*ai.Operator, n)
		ids := make([]string, n)
		for i := range ops {
			id := fmt.Sprintf("op%d", i)
			ids[i] = id
			ops[i] = &ai.Operator{ID: id, Action: ai.ActionPass}
		}
		d := &ai.Domain{Operators: ops}

		for _, id := range ids {
			op, ok := d.OperatorByID(id)
			if !ok {
				rt.Fatalf("OperatorByID(%q) returned not found, expected found", id)
			}
			if op.ID != id {
				rt.Fatalf("OperatorByID(%q) returned op with ID %q", id, op.ID)
			}
		}

		unknown := rapid.StringMatching(`[a-z_]{1,10}`).Draw(rt, "unknown")
		if _, ok := d.OperatorByID(unknown); ok {
			rt.Fatalf("OperatorByID(%q) returned found, expected not found", unknown)
		}
	})
}
