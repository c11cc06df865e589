// Package ai implements the Hierarchical Task Network (HTN) planner that
// drives computer-controlled combatants.
//
// HTN planning decomposes abstract tasks into primitive operators via ordered methods.
// Method preconditions are built-in world-state predicates or Lua hooks;
// operators map to attack, combo and defense requests on a combatant's core.
package ai

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
)

// Operator actions.
const (
	ActionAttack         = "attack"
	ActionContinueCombo  = "continue_combo"
	ActionPerformDefense = "perform_defense"
	ActionDefend         = "defend"
	ActionParry          = "parry"
	ActionPass           = "pass"
)

var validActions = map[string]struct{}{
	ActionAttack: {}, ActionContinueCombo: {}, ActionPerformDefense: {},
	ActionDefend: {}, ActionParry: {}, ActionPass: {},
}

// Task is an abstract goal that can be decomposed by methods.
//
// Precondition: ID must be non-empty.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
//
// Precondition: TaskID, ID, and Subtasks must be non-empty.
// Precondition: Precondition is a Lua function name; empty means always applicable.
type Method struct {
	TaskID       string   `yaml:"task"`
	ID           string   `yaml:"id"`
	Precondition string   `yaml:"precondition"` // Lua function name; empty = always applicable
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive action that maps directly to a core request.
//
// Precondition: ID and Action must be non-empty.
// Precondition: AttackType, Direction and Intent, when set, must parse as
// their action enums.
type Operator struct {
	ID         string `yaml:"id"`
	Action     string `yaml:"action"`                // one of the Action* constants
	AttackType string `yaml:"attack_type,omitempty"` // attack, continue_combo
	Direction  string `yaml:"direction,omitempty"`   // attack, continue_combo; default omni
	Intent     string `yaml:"intent,omitempty"`      // perform_defense; default defense
	Target     string `yaml:"target,omitempty"`      // "nearest_enemy", "weakest_enemy", "attacker", "self", or literal ID
}

// validate checks the operator's action and enum fields.
func (op *Operator) validate() error {
	if _, ok := validActions[op.Action]; !ok {
		return fmt.Errorf("operator %q: unknown action %q", op.ID, op.Action)
	}
	if op.AttackType != "" {
		if _, err := action.ParseAttackType(op.AttackType); err != nil {
			return fmt.Errorf("operator %q: %w", op.ID, err)
		}
	} else if op.Action == ActionAttack || op.Action == ActionContinueCombo {
		return fmt.Errorf("operator %q: action %q requires attack_type", op.ID, op.Action)
	}
	if op.Direction != "" {
		if _, err := action.ParseDirection(op.Direction); err != nil {
			return fmt.Errorf("operator %q: %w", op.ID, err)
		}
	}
	if op.Intent != "" {
		if _, err := action.ParseDefenseIntent(op.Intent); err != nil {
			return fmt.Errorf("operator %q: %w", op.ID, err)
		}
	}
	return nil
}

// Domain holds the full HTN domain loaded from a YAML file.
//
// Invariant: all Task, Method, and Operator IDs are unique within their slice.
type Domain struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Tasks       []*Task     `yaml:"tasks"`
	Methods     []*Method   `yaml:"methods"`
	Operators   []*Operator `yaml:"operators"`
}

// Validate checks all required fields and cross-field constraints.
//
// Postcondition: nil return guarantees non-empty ID, at least one Task with non-empty ID,
// all Method TaskIDs and IDs non-empty with non-empty Subtasks, all Operator IDs and Actions
// non-empty, no duplicate IDs within any slice, and all cross-references are valid.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("ai.Domain: ID must not be empty")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("ai.Domain %q: must have at least one task", d.ID)
	}
	for _, t := range d.Tasks {
		if t.ID == "" {
			return fmt.Errorf("ai.Domain %q: task has empty ID", d.ID)
		}
	}
	for _, m := range d.Methods {
		if m.TaskID == "" || m.ID == "" {
			return fmt.Errorf("ai.Domain %q: method missing TaskID or ID", d.ID)
		}
		if len(m.Subtasks) == 0 {
			return fmt.Errorf("ai.Domain %q method %q: subtasks must not be empty", d.ID, m.ID)
		}
	}
	for _, op := range d.Operators {
		if op.ID == "" || op.Action == "" {
			return fmt.Errorf("ai.Domain %q: operator missing ID or Action", d.ID)
		}
		if err := op.validate(); err != nil {
			return fmt.Errorf("ai.Domain %q: %w", d.ID, err)
		}
	}

	// Check for duplicate Task IDs
	taskIDs := make(map[string]struct{}, len(d.Tasks))
	for _, t := range d.Tasks {
		if _, dup := taskIDs[t.ID]; dup {
			return fmt.Errorf("ai.Domain %q: duplicate task ID %q", d.ID, t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}

	// Check for duplicate Method IDs
	methodIDs := make(map[string]struct{}, len(d.Methods))
	for _, m := range d.Methods {
		if _, dup := methodIDs[m.ID]; dup {
			return fmt.Errorf("ai.Domain %q: duplicate method ID %q", d.ID, m.ID)
		}
		methodIDs[m.ID] = struct{}{}
	}

	// Check for duplicate Operator IDs
	operatorIDs := make(map[string]struct{}, len(d.Operators))
	for _, op := range d.Operators {
		if _, dup := operatorIDs[op.ID]; dup {
			return fmt.Errorf("ai.Domain %q: duplicate operator ID %q", d.ID, op.ID)
		}
		operatorIDs[op.ID] = struct{}{}
	}

	// Check method TaskID references
	for _, m := range d.Methods {
		if _, ok := taskIDs[m.TaskID]; !ok {
			return fmt.Errorf("ai.Domain %q method %q: TaskID %q references unknown task", d.ID, m.ID, m.TaskID)
		}
	}

	// Build combined set of valid subtask targets (task IDs + operator IDs)
	validSubtasks := make(map[string]struct{}, len(d.Tasks)+len(d.Operators))
	for id := range taskIDs {
		validSubtasks[id] = struct{}{}
	}
	for id := range operatorIDs {
		validSubtasks[id] = struct{}{}
	}
	for _, m := range d.Methods {
		for _, sub := range m.Subtasks {
			if _, ok := validSubtasks[sub]; !ok {
				return fmt.Errorf("ai.Domain %q method %q: subtask %q is neither a task nor an operator", d.ID, m.ID, sub)
			}
		}
	}

	return nil
}

// OperatorByID returns the operator with the given ID, or false if not found.
func (d *Domain) OperatorByID(id string) (*Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return nil, false
}

// MethodsForTask returns all methods that decompose taskID, in declaration order.
func (d *Domain) MethodsForTask(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

// yamlDomainFile wraps the YAML top-level key.
type yamlDomainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomainBytes parses and validates a single domain document.
//
// Postcondition: unknown keys are rejected.
func LoadDomainBytes(data []byte) (*Domain, error) {
	var f yamlDomainFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing domain: %w", err)
	}
	if f.Domain == nil {
		return nil, errors.New("missing top-level 'domain' key")
	}
	if err := f.Domain.Validate(); err != nil {
		return nil, err
	}
	return f.Domain, nil
}

// LoadDomains reads all *.yaml files from dir and returns parsed Domains.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate,
// or if two files declare the same domain ID.
// Postcondition: returns (nil, nil) if dir contains no .yaml files; callers should treat empty results as a configuration error if domains are required.
func LoadDomains(dir string) ([]*Domain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDomains: reading %q: %w", dir, err)
	}
	var domains []*Domain
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: reading %s: %w", e.Name(), err)
		}
		d, err := LoadDomainBytes(data)
		if err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: %s: %w", e.Name(), err)
		}
		if prev, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("ai.LoadDomains: domain %q declared in both %s and %s", d.ID, prev, e.Name())
		}
		seen[d.ID] = e.Name()
		domains = append(domains, d)
	}
	return domains, nil
}
