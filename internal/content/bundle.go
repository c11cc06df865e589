package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/ai"
	"github.com/cory-johannsen/motioncombat/internal/game/core"
	"github.com/cory-johannsen/motioncombat/internal/game/dice"
	"github.com/cory-johannsen/motioncombat/internal/game/reaction"
	"github.com/cory-johannsen/motioncombat/internal/game/scoring"
	"github.com/cory-johannsen/motioncombat/internal/game/window"
)

// Subdirectory and file names under the content root.
const (
	TablesDir    = "tables"
	ReactionsDir = "reactions"
	ClipsDir     = "clips"
	AIDir        = "ai"
	ManifestFile = "sets.yaml"
)

// Bundle is one consistent snapshot of a content directory.
//
// Invariant: every set references a loaded table of the matching variant and
// every loadout references loaded reaction tables and AI domains.
type Bundle struct {
	Dir       string
	Manifest  Manifest
	Tables    map[string]*action.Table
	Reactions map[string]*reaction.Table
	Clips     *window.Library
	Domains   map[string]*ai.Domain
}

// Load reads the content directory rooted at dir. tables/ and sets.yaml are
// required; reactions/, clips/ and ai/ are optional.
//
// Postcondition: returns a validated Bundle or a non-nil error.
func Load(dir string) (*Bundle, error) {
	tables, err := action.LoadTables(filepath.Join(dir, TablesDir))
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	manifest, err := LoadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		Dir:       dir,
		Manifest:  manifest,
		Tables:    make(map[string]*action.Table, len(tables)),
		Reactions: make(map[string]*reaction.Table),
		Domains:   make(map[string]*ai.Domain),
	}
	for _, t := range tables {
		b.Tables[t.Name()] = t
	}

	if ok, err := optionalDir(filepath.Join(dir, ReactionsDir)); err != nil {
		return nil, err
	} else if ok {
		rts, err := reaction.LoadTables(filepath.Join(dir, ReactionsDir))
		if err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
		for _, t := range rts {
			b.Reactions[t.Name()] = t
		}
	}

	if ok, err := optionalDir(filepath.Join(dir, ClipsDir)); err != nil {
		return nil, err
	} else if ok {
		if b.Clips, err = window.LoadClips(filepath.Join(dir, ClipsDir)); err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
	} else {
		b.Clips, _ = window.NewLibrary()
	}

	if ok, err := optionalDir(filepath.Join(dir, AIDir)); err != nil {
		return nil, err
	} else if ok {
		domains, err := ai.LoadDomains(filepath.Join(dir, AIDir))
		if err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
		for _, d := range domains {
			b.Domains[d.ID] = d
		}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func optionalDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("content: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("content: %s is not a directory", path)
	}
	return true, nil
}

// Validate checks cross references between the manifest and loaded content.
func (b *Bundle) Validate() error {
	if err := b.checkSets(b.Manifest.AttackSets, action.VariantAttack); err != nil {
		return err
	}
	if err := b.checkSets(b.Manifest.DefenseSets, action.VariantDefense); err != nil {
		return err
	}
	for _, l := range b.Manifest.Loadouts {
		if l.Reactions != "" {
			if _, ok := b.Reactions[l.Reactions]; !ok {
				return fmt.Errorf("content: loadout %q references unknown reaction table %q", l.Name, l.Reactions)
			}
		}
		if l.AI != "" {
			if _, ok := b.Domains[l.AI]; !ok {
				return fmt.Errorf("content: loadout %q references unknown AI domain %q", l.Name, l.AI)
			}
		}
	}
	if b.Clips != nil && len(b.Clips.Names()) > 0 {
		for _, t := range b.Tables {
			for _, e := range t.Rows() {
				if _, ok := b.Clips.Clip(e.Clip); !ok {
					return fmt.Errorf("content: table %q entry %q uses unknown clip %q", t.Name(), e.Name, e.Clip)
				}
			}
		}
	}
	return nil
}

func (b *Bundle) checkSets(defs []SetDef, want action.Variant) error {
	for _, d := range defs {
		t, ok := b.Tables[d.Table]
		if !ok {
			return fmt.Errorf("content: set %q references unknown table %q", d.Key, d.Table)
		}
		if t.Variant() != want {
			return fmt.Errorf("content: set %q table %q is a %s table, want %s", d.Key, d.Table, t.Variant(), want)
		}
	}
	return nil
}

// ReplaceTables swaps in tables loaded from another source, such as the
// database, and revalidates the bundle.
//
// Postcondition: on error the bundle is unchanged.
func (b *Bundle) ReplaceTables(tables []*action.Table) error {
	prev := b.Tables
	b.Tables = make(map[string]*action.Table, len(tables))
	for _, t := range tables {
		b.Tables[t.Name()] = t
	}
	if err := b.Validate(); err != nil {
		b.Tables = prev
		return err
	}
	return nil
}

// ReplaceReactions swaps in reaction tables loaded from another source.
//
// Postcondition: on error the bundle is unchanged.
func (b *Bundle) ReplaceReactions(tables []*reaction.Table) error {
	prev := b.Reactions
	b.Reactions = make(map[string]*reaction.Table, len(tables))
	for _, t := range tables {
		b.Reactions[t.Name()] = t
	}
	if err := b.Validate(); err != nil {
		b.Reactions = prev
		return err
	}
	return nil
}

// TableNames returns the loaded table names in sorted order.
func (b *Bundle) TableNames() []string {
	out := make([]string, 0, len(b.Tables))
	for n := range b.Tables {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Catalogs builds fresh attack and defense catalogs for the named loadout.
func (b *Bundle) Catalogs(loadout string) (attacks, defenses *core.Catalog, err error) {
	l, ok := b.Manifest.Loadout(loadout)
	if !ok {
		return nil, nil, fmt.Errorf("content: unknown loadout %q", loadout)
	}
	if attacks, err = b.catalog(b.Manifest.AttackSets, l.Attacks); err != nil {
		return nil, nil, err
	}
	if defenses, err = b.catalog(b.Manifest.DefenseSets, l.Defenses); err != nil {
		return nil, nil, err
	}
	return attacks, defenses, nil
}

func (b *Bundle) catalog(defs []SetDef, keys []string) (*core.Catalog, error) {
	byKey := make(map[string]SetDef, len(defs))
	for _, d := range defs {
		byKey[d.Key] = d
	}
	sets := make([]core.ActionSet, 0, len(keys))
	for _, k := range keys {
		d := byKey[k]
		sets = append(sets, core.ActionSet{Key: d.Key, Table: b.Tables[d.Table], ScorerClass: d.Scorer})
	}
	return core.NewCatalog(sets...)
}

// RegisterScorers registers every scripted scorer class in the manifest,
// replacing classes of the same name so that a reload invalidates pooled choosers.
//
// Precondition: reg, caller and src must be non-nil.
func (b *Bundle) RegisterScorers(reg *scoring.Registry, caller scoring.ScriptCaller, t scoring.Tuning, src dice.Source) error {
	for _, d := range b.Manifest.Scorers {
		def := d
		base := func() scoring.Scorer { return scoring.NewAttackScorer(t, src) }
		if def.Base == scoring.ClassDefaultDefense {
			base = func() scoring.Scorer { return scoring.NewDefenseScorer(t, src) }
		}
		hooks := scoring.ScriptHooks{VM: def.VM, Score: def.Score, Eligible: def.Eligible}
		if _, err := reg.Replace(def.Name, func() scoring.Scorer {
			return scoring.NewScriptedScorer(caller, hooks, base())
		}); err != nil {
			return fmt.Errorf("content: registering scorer %q: %w", def.Name, err)
		}
	}
	return nil
}

// Reaction returns the reaction table for the named loadout, or nil.
func (b *Bundle) Reaction(loadout string) *reaction.Table {
	l, ok := b.Manifest.Loadout(loadout)
	if !ok || l.Reactions == "" {
		return nil
	}
	return b.Reactions[l.Reactions]
}

// Domain returns the AI domain for the named loadout, or nil.
func (b *Bundle) Domain(loadout string) *ai.Domain {
	l, ok := b.Manifest.Loadout(loadout)
	if !ok || l.AI == "" {
		return nil
	}
	return b.Domains[l.AI]
}
