// Package action defines the designer-authored rows that the selector
// chooses between, and the ordered tables that hold them.
package action

import (
	"errors"
	"fmt"
	"time"
)

// DefaultDefenseRange is applied to defense rows that omit a range.
var DefaultDefenseRange = Range{Min: 0, Max: 1000}

// Range is a valid distance band in world units.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Mid returns the centre of the band.
func (r Range) Mid() float64 { return (r.Min + r.Max) / 2 }

// HalfWidth returns half the band width.
func (r Range) HalfWidth() float64 { return (r.Max - r.Min) / 2 }

// Entry is one selectable row in an action table.
//
// Attack rows use AttackType and AllowedNext; defense rows use Intent.
// Entries are values: tables hand out copies and never mutate them.
type Entry struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Variant  Variant `yaml:"variant"`

	AttackType AttackType    `yaml:"attack_type"`
	Intent     DefenseIntent `yaml:"intent"`
	Direction  Direction     `yaml:"direction"`
	Range      Range         `yaml:"range"`

	// ActionTag is an opaque label forwarded to listeners of action events.
	ActionTag string        `yaml:"action_tag"`
	Clip      string        `yaml:"clip"`
	Section   string        `yaml:"section"`
	BlendIn   time.Duration `yaml:"blend_in"`
	BlendOut  time.Duration `yaml:"blend_out"`
	Weight    float64       `yaml:"weight"`

	// AllowedNext lists the names of attacks this one may chain into.
	AllowedNext []string `yaml:"allowed_next,omitempty"`

	RequiredTags TagSet `yaml:"required_tags,omitempty"`
	ExcludedTags TagSet `yaml:"excluded_tags,omitempty"`
}

// IsAttack reports whether e is an attack row.
func (e Entry) IsAttack() bool { return e.Variant == VariantAttack }

// IsDefense reports whether e is a defense row.
func (e Entry) IsDefense() bool { return e.Variant == VariantDefense }

// TagsSatisfied reports whether situation carries every required tag of e
// and none of its excluded tags.
func (e Entry) TagsSatisfied(situation TagSet) bool {
	return situation.HasAll(e.RequiredTags) && !situation.HasAny(e.ExcludedTags)
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	c := e
	if e.AllowedNext != nil {
		c.AllowedNext = append([]string(nil), e.AllowedNext...)
	}
	return c
}

// ApplyDefaults fills in fields a designer may omit.
//
// Postcondition: Weight > 0 when it was 0; defense rows with an empty range
// use DefaultDefenseRange.
func (e *Entry) ApplyDefaults() {
	if e.Weight == 0 {
		e.Weight = 1
	}
	if e.Variant == VariantDefense && e.Range == (Range{}) {
		e.Range = DefaultDefenseRange
	}
}

// Validate checks required fields and cross-field constraints.
//
// Postcondition: nil return guarantees a non-empty Name and Clip, a
// non-inverted non-negative Range, a non-negative Weight, and no continuation
// list on defense rows.
func (e Entry) Validate() error {
	if e.Name == "" {
		return errors.New("action.Entry: name must not be empty")
	}
	if e.Clip == "" {
		return fmt.Errorf("action.Entry %q: clip must not be empty", e.Name)
	}
	if e.Range.Min < 0 {
		return fmt.Errorf("action.Entry %q: range.min must be >= 0, got %g", e.Name, e.Range.Min)
	}
	if e.Range.Max < e.Range.Min {
		return fmt.Errorf("action.Entry %q: range.max %g is below range.min %g", e.Name, e.Range.Max, e.Range.Min)
	}
	if e.Weight < 0 {
		return fmt.Errorf("action.Entry %q: weight must be >= 0, got %g", e.Name, e.Weight)
	}
	if e.Variant == VariantDefense && len(e.AllowedNext) > 0 {
		return fmt.Errorf("action.Entry %q: defense rows cannot declare allowed_next", e.Name)
	}
	return nil
}
