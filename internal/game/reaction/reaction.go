// Package reaction resolves which hit-reaction clip a struck combatant plays.
package reaction

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity classifies the strength of an impact.
type Severity int

const (
	SeverityLight Severity = iota
	SeverityMedium
	SeverityHeavy
	SeverityKnockback
	SeverityKnockdown
)

var severityNames = []string{"light", "medium", "heavy", "knockback", "knockdown"}

func (s Severity) String() string { return enumName(severityNames, int(s)) }

// ParseSeverity converts a case-insensitive name to a Severity.
func ParseSeverity(s string) (Severity, error) {
	i, err := parseEnum("severity", severityNames, s)
	return Severity(i), err
}

// UnmarshalYAML decodes a Severity from its name.
func (s *Severity) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := ParseSeverity(n.Value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML encodes a Severity as its name.
func (s Severity) MarshalYAML() (any, error) { return s.String(), nil }

// Direction is the side of the struck combatant the impact came from.
// DirectionNone on a row means the row applies to any direction.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionForward
	DirectionBack
	DirectionLeft
	DirectionRight
)

var directionNames = []string{"none", "forward", "back", "left", "right"}

func (d Direction) String() string { return enumName(directionNames, int(d)) }

// ParseDirection converts a case-insensitive name to a Direction.
// An empty string parses as DirectionNone.
func ParseDirection(s string) (Direction, error) {
	if s == "" {
		return DirectionNone, nil
	}
	i, err := parseEnum("hit direction", directionNames, s)
	return Direction(i), err
}

// UnmarshalYAML decodes a Direction from its name.
func (d *Direction) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := ParseDirection(n.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML encodes a Direction as its name.
func (d Direction) MarshalYAML() (any, error) { return d.String(), nil }

// Region is a coarse body area a locator maps onto.
type Region string

const (
	RegionNone     Region = ""
	RegionHead     Region = "head"
	RegionTorso    Region = "torso"
	RegionArmLeft  Region = "arm_left"
	RegionArmRight Region = "arm_right"
	RegionLegLeft  Region = "leg_left"
	RegionLegRight Region = "leg_right"
)

var knownRegions = map[Region]struct{}{
	RegionNone: {}, RegionHead: {}, RegionTorso: {},
	RegionArmLeft: {}, RegionArmRight: {}, RegionLegLeft: {}, RegionLegRight: {},
}

// Reaction is one row of a hit-reaction table.
type Reaction struct {
	Name      string    `yaml:"name"`
	Locator   string    `yaml:"locator,omitempty"`
	Region    Region    `yaml:"region,omitempty"`
	Direction Direction `yaml:"direction,omitempty"`
	Severity  Severity  `yaml:"severity"`
	Clip      string    `yaml:"clip"`
	Section   string    `yaml:"section,omitempty"`
	PlayRate  float64   `yaml:"play_rate,omitempty"`
}

// Validate reports whether the row is usable.
//
// Postcondition: returns nil iff Name and Clip are set, Region is known, and PlayRate >= 0.
func (r Reaction) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("reaction: row missing name")
	}
	if r.Clip == "" {
		return fmt.Errorf("reaction %q: missing clip", r.Name)
	}
	if _, ok := knownRegions[r.Region]; !ok {
		return fmt.Errorf("reaction %q: unknown region %q", r.Name, r.Region)
	}
	if r.PlayRate < 0 {
		return fmt.Errorf("reaction %q: play_rate must be >= 0, got %g", r.Name, r.PlayRate)
	}
	return nil
}

// Rate returns the play rate, treating zero as 1.
func (r Reaction) Rate() float64 {
	if r.PlayRate == 0 {
		return 1
	}
	return r.PlayRate
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func parseEnum(kind string, names []string, s string) (int, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("reaction: unknown %s %q", kind, s)
}
