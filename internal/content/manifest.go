// Package content loads designer-authored combat data from a content
// directory and watches it for changes.
//
// Layout:
//
//	tables/     action tables (action.LoadTables)
//	sets.yaml   action sets, scripted scorer classes, combatant loadouts
//	reactions/  hit reaction tables
//	clips/      clip window timelines
//	ai/         HTN domains
package content

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/motioncombat/internal/game/scoring"
)

// SetDef binds an action table to a scorer class under a set key.
type SetDef struct {
	Key    string `yaml:"key"`
	Table  string `yaml:"table"`
	Scorer string `yaml:"scorer"`
}

// ScorerDef declares a Lua-scripted scorer class layered over a built-in one.
//
// Precondition: Base is scoring.ClassDefaultAttack or scoring.ClassDefaultDefense.
type ScorerDef struct {
	Name     string `yaml:"name"`
	Base     string `yaml:"base"`
	VM       string `yaml:"vm"`
	Score    string `yaml:"score,omitempty"`
	Eligible string `yaml:"eligible,omitempty"`
}

// Loadout names the content a combatant is assembled from.
type Loadout struct {
	Name      string   `yaml:"name"`
	Attacks   []string `yaml:"attacks"`
	Defenses  []string `yaml:"defenses,omitempty"`
	Reactions string   `yaml:"reactions,omitempty"`
	AI        string   `yaml:"ai,omitempty"`
}

// Manifest is the parsed sets.yaml document.
type Manifest struct {
	Scorers     []ScorerDef `yaml:"scorers,omitempty"`
	AttackSets  []SetDef    `yaml:"attack_sets"`
	DefenseSets []SetDef    `yaml:"defense_sets,omitempty"`
	Loadouts    []Loadout   `yaml:"loadouts,omitempty"`
}

// ParseManifest decodes a manifest document, rejecting unknown keys.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("content: parsing manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("content: reading manifest: %w", err)
	}
	return ParseManifest(data)
}

// Loadout returns the loadout named name.
func (m Manifest) Loadout(name string) (Loadout, bool) {
	for _, l := range m.Loadouts {
		if l.Name == name {
			return l, true
		}
	}
	return Loadout{}, false
}

// validate checks internal consistency. Table, reaction and AI references are
// checked by Bundle once the rest of the content is loaded.
func (m Manifest) validate() error {
	scorers := map[string]struct{}{
		scoring.ClassDefaultAttack:  {},
		scoring.ClassDefaultDefense: {},
	}
	for _, s := range m.Scorers {
		if s.Name == "" || s.VM == "" {
			return fmt.Errorf("content: scorer %q must have name and vm", s.Name)
		}
		if s.Base != scoring.ClassDefaultAttack && s.Base != scoring.ClassDefaultDefense {
			return fmt.Errorf("content: scorer %q has unknown base %q", s.Name, s.Base)
		}
		if _, dup := scorers[s.Name]; dup {
			return fmt.Errorf("content: duplicate scorer class %q", s.Name)
		}
		scorers[s.Name] = struct{}{}
	}

	attacks, err := setKeys("attack", m.AttackSets, scorers)
	if err != nil {
		return err
	}
	defenses, err := setKeys("defense", m.DefenseSets, scorers)
	if err != nil {
		return err
	}

	names := make(map[string]struct{}, len(m.Loadouts))
	for _, l := range m.Loadouts {
		if l.Name == "" {
			return fmt.Errorf("content: loadout missing name")
		}
		if _, dup := names[l.Name]; dup {
			return fmt.Errorf("content: duplicate loadout %q", l.Name)
		}
		names[l.Name] = struct{}{}
		if len(l.Attacks) == 0 {
			return fmt.Errorf("content: loadout %q has no attack sets", l.Name)
		}
		for _, k := range l.Attacks {
			if _, ok := attacks[k]; !ok {
				return fmt.Errorf("content: loadout %q references unknown attack set %q", l.Name, k)
			}
		}
		for _, k := range l.Defenses {
			if _, ok := defenses[k]; !ok {
				return fmt.Errorf("content: loadout %q references unknown defense set %q", l.Name, k)
			}
		}
	}
	return nil
}

func setKeys(kind string, defs []SetDef, scorers map[string]struct{}) (map[string]struct{}, error) {
	keys := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if d.Key == "" || d.Table == "" {
			return nil, fmt.Errorf("content: %s set %q must have key and table", kind, d.Key)
		}
		if _, dup := keys[d.Key]; dup {
			return nil, fmt.Errorf("content: duplicate %s set %q", kind, d.Key)
		}
		if _, ok := scorers[d.Scorer]; !ok {
			return nil, fmt.Errorf("content: %s set %q uses unknown scorer %q", kind, d.Key, d.Scorer)
		}
		keys[d.Key] = struct{}{}
	}
	return keys, nil
}
