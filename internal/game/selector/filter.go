// Package selector narrows action table rows to eligible candidates and
// picks the best-scoring one.
package selector

import (
	"github.com/cory-johannsen/motioncombat/internal/game/action"
)

// ByAttackType returns the rows whose attack type equals t, in order.
func ByAttackType(rows []action.Entry, t action.AttackType) []action.Entry {
	var out []action.Entry
	for _, r := range rows {
		if r.IsAttack() && r.AttackType == t {
			out = append(out, r)
		}
	}
	return out
}

// ByNames returns the rows whose name appears in names, in row order.
func ByNames(rows []action.Entry, names []string) []action.Entry {
	if len(names) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}
	var out []action.Entry
	for _, r := range rows {
		if _, ok := allowed[r.Name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// ByTags returns the rows whose required and excluded labels are satisfied by situation.
func ByTags(rows []action.Entry, situation action.TagSet) []action.Entry {
	var out []action.Entry
	for _, r := range rows {
		if r.TagsSatisfied(situation) {
			out = append(out, r)
		}
	}
	return out
}
