package action

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Variant distinguishes attack rows from defense rows.
type Variant int

const (
	VariantAttack Variant = iota
	VariantDefense
)

var variantNames = []string{"attack", "defense"}

func (v Variant) String() string { return enumName(variantNames, int(v)) }

// ParseVariant converts a case-insensitive name to a Variant.
func ParseVariant(s string) (Variant, error) {
	i, err := parseEnum("variant", variantNames, s)
	return Variant(i), err
}

// UnmarshalYAML decodes a Variant from its name.
func (v *Variant) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := ParseVariant(n.Value)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML encodes a Variant as its name.
func (v Variant) MarshalYAML() (any, error) { return v.String(), nil }

// AttackType is the requested kind of attack.
type AttackType int

const (
	AttackLight AttackType = iota
	AttackHeavy
	AttackSpecial
	AttackCharged
	AttackAerial
)

var attackTypeNames = []string{"light", "heavy", "special", "charged", "aerial"}

func (a AttackType) String() string { return enumName(attackTypeNames, int(a)) }

// ParseAttackType converts a case-insensitive name to an AttackType.
func ParseAttackType(s string) (AttackType, error) {
	i, err := parseEnum("attack type", attackTypeNames, s)
	return AttackType(i), err
}

// UnmarshalYAML decodes an AttackType from its name.
func (a *AttackType) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := ParseAttackType(n.Value)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalYAML encodes an AttackType as its name.
func (a AttackType) MarshalYAML() (any, error) { return a.String(), nil }

// Direction is the direction of an attack relative to the attacker, or the
// direction a defense is valid against.
type Direction int

const (
	DirectionOmni Direction = iota
	DirectionForward
	DirectionBackward
	DirectionLeft
	DirectionRight
)

var directionNames = []string{"omni", "forward", "backward", "left", "right"}

func (d Direction) String() string { return enumName(directionNames, int(d)) }

// ParseDirection converts a case-insensitive name to a Direction.
func ParseDirection(s string) (Direction, error) {
	i, err := parseEnum("direction", directionNames, s)
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

// Matches reports whether a row authored for d satisfies a request for want.
// Omni on either side matches everything.
func (d Direction) Matches(want Direction) bool {
	return d == DirectionOmni || want == DirectionOmni || d == want
}

// DefenseIntent is the kind of defensive action requested.
type DefenseIntent int

const (
	IntentDefense DefenseIntent = iota
	IntentParry
)

var intentNames = []string{"defense", "parry"}

func (i DefenseIntent) String() string { return enumName(intentNames, int(i)) }

// ParseDefenseIntent converts a case-insensitive name to a DefenseIntent.
func ParseDefenseIntent(s string) (DefenseIntent, error) {
	i, err := parseEnum("defense intent", intentNames, s)
	return DefenseIntent(i), err
}

// UnmarshalYAML decodes a DefenseIntent from its name.
func (i *DefenseIntent) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := ParseDefenseIntent(n.Value)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// MarshalYAML encodes a DefenseIntent as its name.
func (i DefenseIntent) MarshalYAML() (any, error) { return i.String(), nil }

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func parseEnum(kind string, names []string, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("action: unknown %s %q (want one of %s)", kind, s, strings.Join(names, ", "))
}
