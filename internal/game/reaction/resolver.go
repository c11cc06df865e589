package reaction

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/motioncombat/internal/game/geom"
)

// Table is an ordered, read-only list of reaction rows.
type Table struct {
	name string
	rows []Reaction
}

// NewTable validates rows and returns a Table holding a copy of them.
//
// Precondition: name must be non-empty.
// Postcondition: returns error on an invalid row or a duplicate row name.
func NewTable(name string, rows []Reaction) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("reaction: table name must not be empty")
	}
	seen := make(map[string]struct{}, len(rows))
	cp := make([]Reaction, 0, len(rows))
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("table %q: duplicate reaction %q", name, r.Name)
		}
		seen[r.Name] = struct{}{}
		cp = append(cp, r)
	}
	return &Table{name: name, rows: cp}, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns a copy of the rows in table order.
func (t *Table) Rows() []Reaction {
	out := make([]Reaction, len(t.rows))
	copy(out, t.rows)
	return out
}

// Find picks the reaction for a strike on locator from direction at severity.
//
// Tiers, highest priority first:
//  1. row locator equals locator (case-insensitive) with the same severity; the
//     first such row ends the scan.
//  2. row region equals MapRegion(locator) with the same severity.
//  3. row with no locator and no region whose direction is dir or none.
//  4. row with no locator, no region and no direction.
//
// Tiers 2-4 keep scanning, so the last matching row of each tier wins.
//
// Postcondition: ok is false iff no row matched any tier.
func (t *Table) Find(locator string, dir Direction, sev Severity) (Reaction, bool) {
	if t == nil {
		return Reaction{}, false
	}
	region := MapRegion(locator)
	var regionHit, dirHit, sevHit *Reaction
	for i := range t.rows {
		r := &t.rows[i]
		if r.Severity != sev {
			continue
		}
		if locator != "" && r.Locator != "" && strings.EqualFold(r.Locator, locator) {
			return *r, true
		}
		if region != RegionNone && r.Region == region {
			regionHit = r
		}
		if r.Locator == "" && r.Region == RegionNone {
			if r.Direction == dir || r.Direction == DirectionNone {
				dirHit = r
			}
			if r.Direction == DirectionNone {
				sevHit = r
			}
		}
	}
	for _, hit := range []*Reaction{regionHit, dirHit, sevHit} {
		if hit != nil {
			return *hit, true
		}
	}
	return Reaction{}, false
}

type regionRule struct {
	region  Region
	needles []string
}

// Rules are tested in order; the first needle found wins.
var regionRules = []regionRule{
	{RegionHead, []string{"head", "neck"}},
	{RegionTorso, []string{"spine", "pelvis", "root"}},
	{RegionArmLeft, []string{"upperarm_l", "lowerarm_l", "hand_l", "shoulder_l"}},
	{RegionArmRight, []string{"upperarm_r", "lowerarm_r", "hand_r", "shoulder_r"}},
	{RegionLegLeft, []string{"thigh_l", "calf_l", "foot_l", "ball_l"}},
	{RegionLegRight, []string{"thigh_r", "calf_r", "foot_r", "ball_r"}},
}

// MapRegion maps a skeletal locator name onto a coarse body region by
// lowercase substring match. Unrecognized or empty locators map to RegionNone.
func MapRegion(locator string) Region {
	if locator == "" {
		return RegionNone
	}
	l := strings.ToLower(locator)
	for _, rule := range regionRules {
		for _, n := range rule.needles {
			if strings.Contains(l, n) {
				return rule.region
			}
		}
	}
	return RegionNone
}

// HitDirection classifies the side of target that impact came from, using
// only the horizontal plane.
//
// Postcondition: returns DirectionForward when impact coincides with the
// target location.
func HitDirection(target geom.Transform, impact geom.Vec3) Direction {
	to := impact.Sub(target.Location)
	to.Z = 0
	to = to.Normalize()
	fwd := target.Forward().Dot(to)
	right := target.Right().Dot(to)
	if math.Abs(fwd) >= math.Abs(right) {
		if fwd >= 0 {
			return DirectionForward
		}
		return DirectionBack
	}
	if right >= 0 {
		return DirectionRight
	}
	return DirectionLeft
}
